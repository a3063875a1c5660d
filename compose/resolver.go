package compose

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vk/pipecomposer/internal/ctxlog"
	"github.com/vk/pipecomposer/internal/fsutil"
)

// Strategy identifies which resolution strategy produced a ResolvedPath.
type Strategy string

const (
	// StrategyAbsolute means the location was given as an absolute path.
	StrategyAbsolute Strategy = "absolute"
	// StrategyLocal means the location was found relative to the working directory.
	StrategyLocal Strategy = "local"
	// StrategyGitRoot means the location was found relative to the git root.
	StrategyGitRoot Strategy = "git-root"
	// StrategyRecursive means the location was found in an ancestor directory.
	StrategyRecursive Strategy = "recursive"
)

// ResolvedPath is an absolute, existing filesystem location together with
// the strategy that produced it.
type ResolvedPath struct {
	Path     string
	Strategy Strategy
}

// ResolveOptions enables the optional relative-path search strategies.
type ResolveOptions struct {
	// SearchGitRoot probes the location relative to the nearest git root.
	SearchGitRoot bool
	// SearchRecursive probes the location in each ancestor of the working
	// directory in turn.
	SearchRecursive bool
}

// Resolver turns a requested configuration location into a single absolute
// filesystem path. The zero value resolves against the process working
// directory; set Cwd to resolve against another base (tests do this).
type Resolver struct {
	Cwd string
}

// strategyFunc is one resolution attempt. It returns the resolved path and
// true on success; the resolver short-circuits on the first success.
type strategyFunc func(location string) (*ResolvedPath, bool, error)

// Resolve maps a requested location to an existing absolute path.
//
// An empty location means "no configuration" and resolves to (nil, nil).
// An absolute location must exist, or Resolve fails with NotFoundError; the
// search options do not apply. A relative location is probed against the
// working directory first, then against the git root and the working
// directory's ancestors according to opts. When every enabled strategy is
// exhausted, Resolve fails with a NotFoundError naming the original,
// un-resolved location.
func (r *Resolver) Resolve(ctx context.Context, location string, opts ResolveOptions) (*ResolvedPath, error) {
	logger := ctxlog.FromContext(ctx)

	if location == "" {
		logger.Debug("No configuration location requested.")
		return nil, nil
	}

	if filepath.IsAbs(location) {
		if !fsutil.Exists(location) {
			return nil, &NotFoundError{Location: location, Reason: "absolute path does not exist"}
		}
		resolved := &ResolvedPath{Path: filepath.Clean(location), Strategy: StrategyAbsolute}
		logger.Debug("Configuration location resolved.", "path", resolved.Path, "strategy", resolved.Strategy)
		return resolved, nil
	}

	cwd, err := r.workingDir()
	if err != nil {
		return nil, err
	}

	strategies := []strategyFunc{r.localStrategy(cwd)}
	if opts.SearchGitRoot {
		strategies = append(strategies, r.gitRootStrategy(cwd))
	}
	if opts.SearchRecursive {
		strategies = append(strategies, r.recursiveStrategy(cwd))
	}

	for _, attempt := range strategies {
		resolved, ok, err := attempt(location)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Debug("Configuration location resolved.", "path", resolved.Path, "strategy", resolved.Strategy)
			return resolved, nil
		}
	}

	return nil, &NotFoundError{
		Location: location,
		Reason:   "not found in the working directory, git root, or any searched ancestor; consider an absolute path",
	}
}

// workingDir returns the injected working directory, or the process one.
func (r *Resolver) workingDir() (string, error) {
	if r.Cwd != "" {
		return r.Cwd, nil
	}
	return os.Getwd()
}

// localStrategy probes the location relative to the working directory.
func (r *Resolver) localStrategy(cwd string) strategyFunc {
	return func(location string) (*ResolvedPath, bool, error) {
		candidate := filepath.Join(cwd, location)
		if !fsutil.Exists(candidate) {
			return nil, false, nil
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return nil, false, err
		}
		return &ResolvedPath{Path: abs, Strategy: StrategyLocal}, true, nil
	}
}

// gitRootStrategy probes the location relative to the nearest git root.
// Not being inside a version-controlled tree is a soft failure: the
// strategy simply reports no match.
func (r *Resolver) gitRootStrategy(cwd string) strategyFunc {
	return func(location string) (*ResolvedPath, bool, error) {
		root, ok := fsutil.FindGitRoot(cwd)
		if !ok {
			return nil, false, nil
		}
		candidate := filepath.Join(root, location)
		if !fsutil.Exists(candidate) {
			return nil, false, nil
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return nil, false, err
		}
		return &ResolvedPath{Path: abs, Strategy: StrategyGitRoot}, true, nil
	}
}

// recursiveStrategy probes the location in the working directory and each of
// its ancestors in turn, stopping at the filesystem root.
func (r *Resolver) recursiveStrategy(cwd string) strategyFunc {
	return func(location string) (*ResolvedPath, bool, error) {
		dir := filepath.Clean(cwd)
		for dir != filepath.Dir(dir) {
			candidate := filepath.Join(dir, location)
			if fsutil.Exists(candidate) {
				abs, err := filepath.Abs(candidate)
				if err != nil {
					return nil, false, err
				}
				return &ResolvedPath{Path: abs, Strategy: StrategyRecursive}, true, nil
			}
			dir = filepath.Dir(dir)
		}
		return nil, false, nil
	}
}
