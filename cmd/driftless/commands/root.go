package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/driftless-hq/driftless/pkg/facts"
	"github.com/driftless-hq/driftless/pkg/tasks"
	"github.com/driftless-hq/driftless/pkg/telemetry"
	"github.com/driftless-hq/driftless/pkg/template"
)

var (
	// Global flags
	varsFiles     []string
	setVars       []string
	envFile       string
	strict        bool
	metricsListen string
	traceExporter string
	traceEndpoint string
)

// agentVersion is the version passed down from main, reported as the
// driftless_version fact.
var agentVersion = "dev"

// tel carries the process-wide telemetry stack. It is set up in the root
// command's PersistentPreRunE, after flags are parsed, and stays nil when
// neither metrics nor tracing is requested.
var tel *telemetry.Telemetry

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	agentVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	if tel != nil {
		// Shut down outside the command context so pending spans still
		// export after a cancelled run.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tel.Shutdown(shutdownCtx); serr != nil {
			log.Warn().Err(serr).Msg("telemetry shutdown failed")
		}
	}
	return err
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "driftless",
		Short: "Driftless - Configuration Templating Engine",
		Long: `Driftless renders Jinja-style configuration templates and evaluates
when-style conditions for task gating.

Features:
  - {{ expression }} templates with filters and functions
  - Typed values (none, bool, int, float, string, list, map)
  - Layered variable scopes with facts and environment
  - Classified errors for skip/fail decisions`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupTelemetry(); err != nil {
				return err
			}
			if tel != nil {
				cmd.SetContext(tel.WithContext(cmd.Context()))
			}
			return nil
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringSliceVarP(&varsFiles, "vars-file", "f", nil, "YAML file(s) of variables, later files override earlier")
	rootCmd.PersistentFlags().StringArrayVarP(&setVars, "set", "s", nil, "set a variable as name=value (value parsed as YAML)")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", "", ".env file merged into the env scope")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail on unresolved variables instead of rendering none")
	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", "", "expose Prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().StringVar(&traceExporter, "trace-exporter", "", "enable tracing with this exporter (stdout or otlp)")
	rootCmd.PersistentFlags().StringVar(&traceEndpoint, "trace-endpoint", "localhost:4317", "OTLP collector endpoint for --trace-exporter=otlp")

	// Add subcommands
	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newEvalCommand())
	rootCmd.AddCommand(newBuiltinsCommand())

	return rootCmd
}

// setupTelemetry builds the metrics and tracing stack from the persistent
// flags. With neither flag set it leaves tel nil and the commands run
// uninstrumented.
func setupTelemetry() error {
	if metricsListen == "" && traceExporter == "" {
		return nil
	}
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = agentVersion
	if metricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddress = metricsListen
	}
	if traceExporter != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Exporter = traceExporter
		cfg.Tracing.Endpoint = traceEndpoint
	}
	t, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	if err := t.StartMetricsServer(); err != nil {
		log.Warn().Err(err).Msg("metrics server failed to start")
	}
	tel = t
	return nil
}

// newEngine builds the engine the subcommands share.
func newEngine() *template.Engine {
	opts := []template.Option{template.WithLogger(log.Logger)}
	if strict {
		opts = append(opts, template.WithStrictVariables())
	}
	if tel != nil {
		opts = append(opts, template.WithObserver(tel.Metrics))
	}
	return template.New(opts...)
}

// buildContext assembles the template context from flags, local facts, and
// the process environment. Values from --env-file are merged over the
// process environment.
func buildContext() (*template.Context, error) {
	builder := tasks.NewContextBuilder().
		Facts(facts.Collect(agentVersion)).
		Env(facts.Environ())

	if envFile != "" {
		env, err := facts.LoadEnvFile(envFile)
		if err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
		builder.Env(env)
	}

	for _, path := range varsFiles {
		vars, err := loadVarsFile(path)
		if err != nil {
			return nil, err
		}
		builder.Vars(vars)
	}

	for _, kv := range setVars {
		name, raw, err := splitSetVar(kv)
		if err != nil {
			return nil, err
		}
		builder.Var(name, parseScalar(raw))
	}

	return builder.Build(), nil
}

func loadVarsFile(path string) (map[string]template.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vars file: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing vars file %s: %w", path, err)
	}
	vars := make(map[string]template.Value, len(raw))
	for name, v := range raw {
		vars[name] = template.FromAny(v)
	}
	return vars, nil
}

func splitSetVar(kv string) (string, string, error) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			if i == 0 {
				break
			}
			return kv[:i], kv[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid --set %q, want name=value", kv)
}

// parseScalar interprets a --set value as YAML so numbers, booleans, and
// lists come through typed; anything unparsable stays a string.
func parseScalar(raw string) template.Value {
	var v interface{}
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return template.StringValue(raw)
	}
	return template.FromAny(v)
}
