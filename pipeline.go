package pipecomposer

import "context"

// Runner executes a pipeline with the given inputs. Execution itself lives
// in the integrator's engine; this library only carries the handle.
type Runner interface {
	Run(ctx context.Context, inputs map[string]any) (map[string]any, error)
}

// RunnerFunc adapts a plain function into a Runner.
type RunnerFunc func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Run implements the Runner interface.
func (f RunnerFunc) Run(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	return f(ctx, inputs)
}

// Pipeline is a predefined execution pipeline exposed through the composer.
type Pipeline struct {
	// Runner executes the pipeline. Required.
	Runner Runner
	// Description is shown by the CLI's list command.
	Description string
	// Tags are free-form labels for the integrator's own bookkeeping.
	Tags []string
	// Public pipelines are accessible from the CLI. Private ones can still
	// be used programmatically.
	Public bool
}

// PipelineFunc builds the integrator's pipelines from a composed
// configuration. The engine hands the configuration over verbatim and has
// no knowledge of what the function does with it.
type PipelineFunc func(ctx context.Context, config map[string]any) (map[string]*Pipeline, error)
