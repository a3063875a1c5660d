package cli

import (
	"context"

	"github.com/vk/pipecomposer"
)

// appContext carries the resolved global flags and memoizes the composed
// configuration for the lifetime of one command invocation. It provides no
// cross-invocation caching; composition is single-shot by design.
type appContext struct {
	name     string
	composer *pipecomposer.Composer

	configFile      string
	searchGitRoot   bool
	searchRecursive bool
	debug           bool
	logFormat       string

	cachedConfig map[string]any
	configLoaded bool
}

// loadConfig delegates configuration composition to the composer, loading at
// most once per invocation.
func (a *appContext) loadConfig(ctx context.Context, params []string) (map[string]any, error) {
	if a.configLoaded {
		return a.cachedConfig, nil
	}
	config, err := a.composer.LoadConfig(ctx, pipecomposer.LoadOptions{
		Filepath:        a.configFile,
		Params:          params,
		SearchGitRoot:   a.searchGitRoot,
		SearchRecursive: a.searchRecursive,
	})
	if err != nil {
		return nil, err
	}
	a.cachedConfig = config
	a.configLoaded = true
	return config, nil
}

// findPipelines delegates the pipeline search to the composer.
func (a *appContext) findPipelines(ctx context.Context, config map[string]any) (map[string]*pipecomposer.Pipeline, error) {
	return a.composer.FindPipelines(ctx, config)
}
