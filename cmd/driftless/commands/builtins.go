package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/driftless-hq/driftless/pkg/template"
)

func newBuiltinsCommand() *cobra.Command {
	var (
		category    string
		filtersOnly bool
		funcsOnly   bool
		showArgs    bool
	)

	cmd := &cobra.Command{
		Use:   "builtins",
		Short: "List the built-in filters and functions",
		Long: `List every built-in filter and function with its signature, category,
and description, from the registry metadata.`,
		Example: `  # Everything
  driftless builtins

  # Just the string filters, with per-argument documentation
  driftless builtins --filters --category string --args`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := template.NewBuiltinRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()

			if !funcsOnly {
				fmt.Fprintln(w, "FILTER\tCATEGORY\tDESCRIPTION")
				for _, e := range reg.Filters() {
					if category != "" && e.Category != category {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Signature(), e.Category, e.Description)
					if showArgs {
						printArgs(w, e.Args)
					}
				}
			}
			if !filtersOnly {
				if !funcsOnly {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, "FUNCTION\tCATEGORY\tDESCRIPTION")
				for _, e := range reg.Functions() {
					if category != "" && e.Category != category {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Signature(), e.Category, e.Description)
					if showArgs {
						printArgs(w, e.Args)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show entries in this category")
	cmd.Flags().BoolVar(&filtersOnly, "filters", false, "only show filters")
	cmd.Flags().BoolVar(&funcsOnly, "functions", false, "only show functions")
	cmd.Flags().BoolVar(&showArgs, "args", false, "show per-argument documentation")

	return cmd
}

func printArgs(w *tabwriter.Writer, args []template.ArgSpec) {
	for _, a := range args {
		fmt.Fprintf(w, "  %s\t\t%s\n", a.Name, a.Description)
	}
}
