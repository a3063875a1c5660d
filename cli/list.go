package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newListCommand builds the `list` subcommand, printing the name and
// description of every public pipeline. No configuration is composed for a
// listing; the pipeline function receives an empty mapping.
func newListCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available pipelines within the project.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipelines, err := appCtx.findPipelines(cmd.Context(), nil)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(pipelines))
			for name, pipeline := range pipelines {
				if pipeline.Public {
					names = append(names, name)
				}
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pipelines available.")
				return nil
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range names {
				description := pipelines[name].Description
				if description == "" {
					description = "No description provided"
				}
				fmt.Fprintf(w, "%s\t%s\n", name, description)
			}
			return w.Flush()
		},
	}
}
