package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/driftless-hq/driftless/pkg/telemetry"
)

func newEvalCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "eval <condition>",
		Short: "Evaluate a when-style condition",
		Long: `Evaluate a condition expression against variables, facts, and the
environment, printing true or false. The exit code is 0 when the
condition holds and 1 when it does not, so eval composes with shell
logic.

Conditions may embed {{ }} expressions, which are rendered first:
both "count >= 5" and "{{ count }} >= 5" work.`,
		Example: `  # Gate on a variable
  driftless eval 'count >= 5' --set count=7

  # Guard against a missing variable
  driftless eval 'api_key is not defined'

  # Use in shell logic
  driftless eval 'env.CI is defined' && echo "running in CI"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := buildContext()
			if err != nil {
				return err
			}

			eng := newEngine()
			ok, err := telemetry.TraceCondition(cmd.Context(), args[0], func(context.Context) (bool, error) {
				return eng.EvaluateCondition(args[0], ctx)
			})
			if err != nil {
				return fmt.Errorf("evaluating condition: %w", err)
			}

			log.Debug().Str("condition", args[0]).Bool("result", ok).Msg("Condition evaluated")

			if !quiet {
				fmt.Println(ok)
			}
			if !ok {
				// Distinguish "false" from an evaluation failure
				cmd.SilenceUsage = true
				cmd.SilenceErrors = true
				return errConditionFalse
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress output, use exit code only")

	return cmd
}

// errConditionFalse makes the command exit nonzero without printing an error.
var errConditionFalse = fmt.Errorf("condition is false")
