package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRunCommand builds the `run` subcommand: compose the configuration,
// look up the named pipeline and execute it with the configuration as its
// inputs. Everything after the pipeline name is forwarded verbatim to the
// override parser.
func newRunCommand(appCtx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run PIPELINE [PARAMS...]",
		Short: "Execute a specific PIPELINE from the project.",
		Long: "Execute a specific PIPELINE from the project subjected to the provided PARAMS.\n\n" +
			"PARAMS are dotlist overrides of the form `key.path=value`; prefix a key with '+' " +
			"to insert one that is not present in the configuration sources.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, params := args[0], args[1:]

			config, err := appCtx.loadConfig(cmd.Context(), params)
			if err != nil {
				return err
			}
			pipelines, err := appCtx.findPipelines(cmd.Context(), config)
			if err != nil {
				return err
			}

			pipeline, ok := pipelines[name]
			if !ok {
				return &ExitError{Code: ExitUsageError, Message: fmt.Sprintf("pipeline %q not found", name)}
			}
			if !pipeline.Public {
				return &ExitError{Code: ExitUsageError, Message: fmt.Sprintf("pipeline %q is private and cannot be executed from the command line", name)}
			}

			if _, err := pipeline.Runner.Run(cmd.Context(), config); err != nil {
				return fmt.Errorf("pipeline %q: %w", name, err)
			}
			return nil
		},
	}
}
