package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/driftless-hq/driftless/pkg/template"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"bad exporter", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "zipkin" }, true},
		{"bad sampling rate", func(c *Config) { c.Tracing.SamplingRate = 1.5 }, true},
		{"metrics without address", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.ListenAddress = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMetrics_ObserverCounts(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Enabled = true
	m, err := NewMetrics(cfg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RenderCompleted(time.Millisecond, nil)
	m.RenderCompleted(time.Millisecond, nil)
	m.RenderCompleted(time.Millisecond, &template.Error{Kind: template.KindName, Message: "x"})
	m.ConditionEvaluated(time.Millisecond, nil)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("renders success = %v", got)
	}
	if got := testutil.ToFloat64(m.rendersTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("renders error = %v", got)
	}
	if got := testutil.ToFloat64(m.errorsByKind.WithLabelValues("name")); got != 1 {
		t.Errorf("errors by kind = %v", got)
	}
	if got := testutil.ToFloat64(m.conditionsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("conditions success = %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v", got)
	}
}

func TestMetrics_NonEngineErrorKind(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Enabled = true
	m, err := NewMetrics(cfg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.RenderCompleted(time.Millisecond, errors.New("plain failure"))
	if got := testutil.ToFloat64(m.errorsByKind.WithLabelValues("other")); got != 1 {
		t.Errorf("other errors = %v", got)
	}
}

func TestMetrics_DisabledIsNoOp(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	// Must not panic.
	m.RenderCompleted(time.Millisecond, nil)
	m.ConditionEvaluated(time.Millisecond, nil)
	m.CacheLookup(true)
}
