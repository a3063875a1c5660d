package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vk/pipecomposer"
	"github.com/vk/pipecomposer/compose"
	"github.com/vk/pipecomposer/internal/ctxlog"
)

// Exit codes reported by Execute.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Option configures the generated command tree.
type Option func(*options)

type options struct {
	out     io.Writer
	help    string
	plugins []*cobra.Command
}

// WithOutput redirects command output, which otherwise goes to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithHelp replaces the root command's default help text.
func WithHelp(help string) Option {
	return func(o *options) { o.help = help }
}

// WithPlugins nests additional integrator commands under a `plugins`
// subcommand.
func WithPlugins(cmds ...*cobra.Command) Option {
	return func(o *options) { o.plugins = append(o.plugins, cmds...) }
}

// New builds the CLI application for a composer. Build a fresh command tree
// per invocation: the returned command memoizes the composed configuration
// for the lifetime of one Execute, never across processes.
func New(name string, composer *pipecomposer.Composer, opts ...Option) *cobra.Command {
	o := options{out: os.Stdout, help: "Pipeline composer application command line."}
	for _, opt := range opts {
		opt(&o)
	}

	appCtx := &appContext{name: name, composer: composer}

	root := &cobra.Command{
		Use:           name,
		Short:         o.help,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := newLogger(appCtx.debug, appCtx.logFormat, cmd.ErrOrStderr())
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		},
	}
	root.SetOut(o.out)

	defaultLocation := composer.ConfigFile()
	root.PersistentFlags().StringVar(&appCtx.configFile, "config-file", defaultLocation,
		"Location of the YAML configuration file or directory for the project pipelines.")
	root.PersistentFlags().BoolVarP(&appCtx.searchGitRoot, "search-git-root", "g", false,
		"Search for the configuration relative to the git root. Only used for relative locations.")
	root.PersistentFlags().BoolVarP(&appCtx.searchRecursive, "search-recursive", "r", false,
		"Search for the configuration recursively in parent directories. Only used for relative locations.")
	root.PersistentFlags().BoolVarP(&appCtx.debug, "debug", "d", false,
		"Enable debug logging.")
	root.PersistentFlags().StringVar(&appCtx.logFormat, "log-format", "text",
		"Log output format. Options: 'text' or 'json'.")

	root.AddCommand(newListCommand(appCtx))
	root.AddCommand(newRunCommand(appCtx))

	if len(o.plugins) > 0 {
		plugins := &cobra.Command{
			Use:   "plugins",
			Short: "Registered plugin sub-commands.",
		}
		plugins.AddCommand(o.plugins...)
		root.AddCommand(plugins)
	}

	return root
}

// Execute runs a command tree built by New and maps any error onto the exit
// codes above, printing the message to stderr.
func Execute(root *cobra.Command) int {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// exitCodeFor translates the engine's error taxonomy into process exit
// codes. Malformed input from the user is a usage error; a composition that
// fails deterministically against its sources is a configuration error.
func exitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var parseErr *compose.ParseError
	if errors.As(err, &parseErr) {
		return ExitUsageError
	}

	configErrors := []any{
		new(*compose.NotFoundError),
		new(*compose.InvalidFormatError),
		new(*compose.DuplicateKeyError),
		new(*compose.MissingKeyError),
		new(*compose.MissingFieldError),
		new(*compose.TypeMismatchError),
		new(*compose.UnknownFieldError),
	}
	for _, target := range configErrors {
		if errors.As(err, target) {
			return ExitConfigError
		}
	}

	return ExitRuntimeError
}
