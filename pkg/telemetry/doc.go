// Package telemetry provides observability instrumentation for Driftless.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry), and metrics (Prometheus) into a unified system for
// monitoring template rendering and task gating.
//
// # Architecture
//
// The telemetry system is built on three pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for the render workload
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "driftless"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Engine integration
//
// Metrics implements template.Observer, so render counts, durations, error
// kinds, and cache hit rates flow straight from the engine:
//
//	eng := template.New(
//	    template.WithObserver(tel.Metrics),
//	    template.WithLogger(tel.Logger.Zerolog()),
//	)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context
// propagation:
//
//	logger := tel.Logger.NewComponentLogger("renderer")
//	logger = logger.WithRunID("run-123").WithTemplate("nginx.conf.tmpl")
//	logger.Info("Rendering configuration")
//	logger.WithError(err).Error("Render failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into render flow and performance:
//
//	ctx, span := tel.Tracer.StartRenderSpan(ctx, "nginx.conf.tmpl")
//	defer span.End()
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// TraceRender and TraceCondition wrap these patterns for the common case.
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Prometheus metric families, under the configured namespace:
//
//	template_renders_total{status}
//	template_render_duration_seconds{status}
//	condition_evaluations_total{status}
//	condition_evaluation_duration_seconds{status}
//	template_errors_total{kind}
//	template_cache_lookups_total{result}
package telemetry
