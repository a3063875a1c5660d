// Package pipecomposer composes runtime configuration for pipeline-execution
// applications from on-disk YAML sources, command-line overrides and an
// optional typed schema, and hands the result to the integrator's pipelines.
package pipecomposer

import (
	"context"
	"errors"

	"github.com/vk/pipecomposer/compose"
	"github.com/vk/pipecomposer/internal/ctxlog"
)

// Composer orchestrates configuration composition: resolve a location, load
// its tree, merge schema defaults, apply overrides, validate. A Composer is
// immutable after New and holds no reference to the trees it returns.
type Composer struct {
	pipelines  PipelineFunc
	configFile string
	schema     *compose.Schema
	unknown    compose.UnknownFieldMode
	resolver   compose.Resolver
}

// Option configures a Composer at construction time.
type Option func(*Composer)

// WithConfigFile sets the default configuration location (file or directory,
// absolute or relative); LoadOptions.Filepath overrides it per call.
func WithConfigFile(path string) Option {
	return func(c *Composer) { c.configFile = path }
}

// WithSchema attaches a typed schema that composed configurations are
// validated and completed against.
func WithSchema(s *compose.Schema) Option {
	return func(c *Composer) { c.schema = s }
}

// WithStrictSchema makes validation reject tree keys the schema does not
// declare. Without it undeclared keys are ignored.
func WithStrictSchema() Option {
	return func(c *Composer) { c.unknown = compose.RejectUnknownFields }
}

// withWorkingDir pins the resolver's working directory; tests use this.
func withWorkingDir(dir string) Option {
	return func(c *Composer) { c.resolver.Cwd = dir }
}

// New creates a Composer around the integrator's pipeline function.
func New(pipelines PipelineFunc, opts ...Option) (*Composer, error) {
	if pipelines == nil {
		return nil, errors.New("pipecomposer: pipeline function must not be nil")
	}
	c := &Composer{pipelines: pipelines}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ConfigFile returns the configured default location, which may be empty.
func (c *Composer) ConfigFile() string {
	return c.configFile
}

// LoadOptions carries the per-invocation inputs of LoadConfig.
type LoadOptions struct {
	// Filepath overrides the composer's configured location for this call.
	Filepath string
	// Params are raw dotlist override strings, forwarded unmodified from
	// the CLI collaborator.
	Params []string
	// SearchGitRoot and SearchRecursive enable the extra resolution
	// strategies for relative locations.
	SearchGitRoot   bool
	SearchRecursive bool
}

// LoadConfig composes the configuration for one run and returns it as a
// plain mapping. With no location configured at all it starts from an empty
// tree, so overrides alone still work. Each call is single-shot; callers
// wanting memoization wrap the result themselves.
func (c *Composer) LoadConfig(ctx context.Context, opts LoadOptions) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	location := c.configFile
	if opts.Filepath != "" {
		location = opts.Filepath
	}

	resolved, err := c.resolver.Resolve(ctx, location, compose.ResolveOptions{
		SearchGitRoot:   opts.SearchGitRoot,
		SearchRecursive: opts.SearchRecursive,
	})
	if err != nil {
		return nil, err
	}

	tree := map[string]any{}
	if resolved != nil {
		if tree, err = compose.Load(ctx, resolved.Path); err != nil {
			return nil, err
		}
	}

	if c.schema != nil {
		defaults, err := c.schema.DefaultsTree()
		if err != nil {
			return nil, err
		}
		tree = compose.Merge(defaults, tree)
	}

	overrides, err := compose.ParseOverrides(opts.Params)
	if err != nil {
		return nil, err
	}
	if tree, err = compose.Apply(tree, overrides); err != nil {
		return nil, err
	}

	if c.schema == nil {
		logger.Debug("Configuration composed.", "keys", len(tree))
		return tree, nil
	}

	instance, err := c.schema.Validate(ctx, tree, c.unknown)
	if err != nil {
		return nil, err
	}
	config, err := instance.AsMap()
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration composed and validated.", "fields", len(config))
	return config, nil
}

// FindPipelines invokes the integrator's pipeline function with a composed
// configuration. A nil config is passed through as an empty mapping.
func (c *Composer) FindPipelines(ctx context.Context, config map[string]any) (map[string]*Pipeline, error) {
	if config == nil {
		config = map[string]any{}
	}
	return c.pipelines(ctx, config)
}
