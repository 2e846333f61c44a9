package telemetry_test

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/driftless-hq/driftless/pkg/telemetry"
	"github.com/driftless-hq/driftless/pkg/template"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	// Create configuration
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "driftless"
	cfg.ServiceVersion = "1.0.0"

	// Initialize telemetry
	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	// Start metrics server (non-blocking)
	if err := tel.StartMetricsServer(); err != nil {
		panic(err)
	}

	// Add telemetry to context
	ctx := tel.WithContext(context.Background())

	// Use telemetry
	logger := telemetry.FromContext(ctx)
	logger.Info("Agent started")

	// Output can vary, so we don't specify output for this example
}

// Example_engineIntegration demonstrates attaching metrics and logging to a
// template engine.
func Example_engineIntegration() {
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	eng := template.New(
		template.WithObserver(tel.Metrics),
		template.WithLogger(tel.Logger.Zerolog()),
	)

	ctx := template.NewContext().SetVar("name", template.StringValue("web01"))
	out, err := eng.Render("host {{ name }}", ctx)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)

	// Output:
	// host web01
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Logging.Output = "stdout"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	// Component-specific logger
	logger := tel.Logger.NewComponentLogger("renderer")

	// Add context fields
	logger = logger.WithFields(map[string]interface{}{
		"run_id":   "run-123",
		"template": "nginx.conf.tmpl",
	})

	// Log at different levels
	logger.Debug("Rendering configuration template")
	logger.Info("Configuration rendered")

	// Log with error
	err := fmt.Errorf("undefined variable")
	logger.WithError(err).Error("Render failed")

	// Output varies, no output specified
}

// Example_distributedTracing demonstrates distributed tracing usage.
func Example_distributedTracing() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	// Start a render span
	ctx, span := tel.Tracer.StartRenderSpan(ctx, "nginx.conf.tmpl")
	defer span.End()

	span.SetAttributes(attribute.Int("template.expressions", 4))

	// Wrap a condition in its own span
	ran, err := telemetry.TraceCondition(ctx, "count >= 5", func(ctx context.Context) (bool, error) {
		eng := template.New()
		tctx := template.NewContext().SetVar("count", template.Int(7))
		return eng.EvaluateCondition("count >= 5", tctx)
	})
	if err != nil {
		panic(err)
	}
	fmt.Println("condition:", ran)

	// Output:
	// condition: true
}

// Example_instrumentedOperation demonstrates the combined instrumentation
// helper.
func Example_instrumentedOperation() {
	cfg := telemetry.DefaultConfig()
	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	ic := telemetry.StartOperation(ctx, "task.render_fields",
		attribute.String("task.name", "deploy nginx config"),
	)
	ic.Logger.Debug("Rendering task fields")

	// ... do the work ...
	var workErr error
	ic.End(workErr)

	fmt.Println("elapsed under a second:", ic.Timer.Duration().Seconds() < 1)

	// Output:
	// elapsed under a second: true
}
