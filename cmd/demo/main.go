// Demo is a minimal integrator of the pipecomposer library: it declares a
// schema and two pipelines and hands everything to the generated CLI.
//
// Usage:
//
//	demo list
//	demo --config-file config run greet greeting=hi
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/pipecomposer"
	"github.com/vk/pipecomposer/cli"
	"github.com/vk/pipecomposer/compose"
)

func main() {
	os.Exit(run())
}

func run() int {
	schema := compose.NewSchema(
		compose.Optional("greeting", cty.String, cty.StringVal("hello")),
		compose.Optional("names", cty.List(cty.String), cty.ListVal([]cty.Value{cty.StringVal("world")})),
	)

	composer, err := pipecomposer.New(buildPipelines, pipecomposer.WithSchema(schema))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitRuntimeError
	}

	return cli.Execute(cli.New("demo", composer))
}

// buildPipelines is the integrator-supplied pipeline function.
func buildPipelines(ctx context.Context, config map[string]any) (map[string]*pipecomposer.Pipeline, error) {
	return map[string]*pipecomposer.Pipeline{
		"greet": {
			Runner:      pipecomposer.RunnerFunc(greet),
			Description: "Print a greeting for every configured name.",
			Tags:        []string{"demo"},
			Public:      true,
		},
		"noop": {
			Runner: pipecomposer.RunnerFunc(func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
				return nil, nil
			}),
			Description: "Internal pipeline, hidden from the CLI.",
			Public:      false,
		},
	}, nil
}

func greet(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	greeting, _ := inputs["greeting"].(string)
	names, _ := inputs["names"].([]any)
	for _, name := range names {
		fmt.Printf("%s, %v!\n", greeting, name)
	}
	return map[string]any{"greeted": len(names)}, nil
}
