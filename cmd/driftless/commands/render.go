package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/driftless-hq/driftless/pkg/telemetry"
	"github.com/driftless-hq/driftless/pkg/template"
)

func newRenderCommand() *cobra.Command {
	var (
		inline    string
		output    string
		recursive bool
		passes    int
	)

	cmd := &cobra.Command{
		Use:   "render [template-file]",
		Short: "Render a template file or inline string",
		Long: `Render a template against variables, facts, and the environment.

The template is read from the given file, from --template, or from stdin
when neither is provided. Output goes to stdout unless --output names a
file.`,
		Example: `  # Render a file with variables
  driftless render nginx.conf.tmpl --vars-file vars.yml

  # Render an inline template
  driftless render --template '{{ name | upper }}' --set name=alice

  # Expand variables that themselves contain templates
  driftless render site.tmpl -f vars.yml --recursive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := readTemplate(args, inline)
			if err != nil {
				return err
			}

			ctx, err := buildContext()
			if err != nil {
				return err
			}

			log.Debug().Str("template", name).Bool("recursive", recursive).Msg("Rendering template")

			eng := newEngine()
			var out string
			err = telemetry.TraceRender(cmd.Context(), name, func(context.Context) error {
				var rerr error
				if recursive {
					out, rerr = eng.RenderRecursive(src, ctx, passes)
				} else {
					out, rerr = eng.Render(src, ctx)
				}
				return rerr
			})
			if err != nil {
				return fmt.Errorf("rendering %s: %w", name, err)
			}

			return writeOutput(output, out)
		},
	}

	cmd.Flags().StringVarP(&inline, "template", "t", "", "inline template string instead of a file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "re-render until no expressions remain")
	cmd.Flags().IntVar(&passes, "max-passes", template.DefaultRecursivePasses, "pass limit for --recursive")

	return cmd
}

func readTemplate(args []string, inline string) (src, name string, err error) {
	switch {
	case inline != "":
		if len(args) > 0 {
			return "", "", fmt.Errorf("pass either a template file or --template, not both")
		}
		return inline, "inline", nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading template: %w", err)
		}
		return string(data), args[0], nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
}

func writeOutput(path, out string) error {
	if path == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
