package compose

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vk/pipecomposer/internal/ctxlog"
)

// Load materializes a configuration tree from a resolved path.
//
// A file is parsed as a single YAML document and its top-level mapping
// becomes the tree; a non-mapping document fails with InvalidFormatError
// (use LoadDocument to read such a file as-is). A directory is walked
// recursively: each subdirectory becomes a nested mapping keyed by its base
// name, and each .yaml/.yml file becomes an entry keyed by its name with
// the extension stripped. Two sibling entries deriving the same key fail
// with DuplicateKeyError.
func Load(ctx context.Context, resolvedPath string) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(resolvedPath)
	if err != nil {
		return nil, &NotFoundError{Location: resolvedPath, Reason: "path vanished between resolution and loading"}
	}

	if info.IsDir() {
		logger.Debug("Loading configuration directory tree.", "path", resolvedPath)
		return loadDir(ctx, os.DirFS(resolvedPath), ".", resolvedPath)
	}

	logger.Debug("Loading configuration file.", "path", resolvedPath)
	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, &InvalidFormatError{Path: resolvedPath, Err: err}
	}
	value, err := parseFileValue(raw, resolvedPath)
	if err != nil {
		return nil, err
	}
	switch tree := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return tree, nil
	default:
		return nil, &InvalidFormatError{Path: resolvedPath, Err: errors.New("top-level document is not a mapping")}
	}
}

// LoadDocument reads a single configuration file and returns its document
// as-is: mapping, sequence, or scalar. It is the entry point for callers
// that do not need the mapping contract Load enforces.
func LoadDocument(ctx context.Context, resolvedPath string) (any, error) {
	ctxlog.FromContext(ctx).Debug("Loading configuration document.", "path", resolvedPath)
	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, &InvalidFormatError{Path: resolvedPath, Err: err}
	}
	return parseFileValue(raw, resolvedPath)
}

// LoadTree runs the directory-tree algorithm over an abstract filesystem.
// Tests hand it an in-memory fstest.MapFS; Load hands it an os.DirFS.
func LoadTree(ctx context.Context, fsys fs.FS) (map[string]any, error) {
	return loadDir(ctx, fsys, ".", ".")
}

// loadDir recursively assembles the nested mapping for one directory.
// Entries are visited in lexicographic order by name; display is the
// user-facing location of dir, used in error messages.
func loadDir(ctx context.Context, fsys fs.FS, dir, display string) (map[string]any, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, &InvalidFormatError{Path: display, Err: err}
	}

	tree := make(map[string]any, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		var key string
		var value any
		if entry.IsDir() {
			key = name
			value, err = loadDir(ctx, fsys, path.Join(dir, name), filepath.Join(display, name))
			if err != nil {
				return nil, err
			}
		} else {
			ext := path.Ext(name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			key = strings.TrimSuffix(name, ext)
			raw, err := fs.ReadFile(fsys, path.Join(dir, name))
			if err != nil {
				return nil, &InvalidFormatError{Path: filepath.Join(display, name), Err: err}
			}
			value, err = parseFileValue(raw, filepath.Join(display, name))
			if err != nil {
				return nil, err
			}
		}

		if _, taken := tree[key]; taken {
			return nil, &DuplicateKeyError{Key: key, Dir: display}
		}
		tree[key] = value
	}

	return tree, nil
}

// parseFileValue parses one file's raw content into its configuration value.
//
// The structured parse expects a top-level mapping. Two designed recoveries
// apply. When the structured parse yields a mapping with exactly one key
// whose value is null, the raw content is re-read as a plain YAML document
// and, if that re-read produces a scalar, the scalar wins; some config
// syntaxes represent a bare scalar document ambiguously as a single
// null-valued key. When the structured parse fails because the top-level
// object is not a mapping, the plain re-read result is used directly. Any
// other parse failure is fatal.
func parseFileValue(raw []byte, display string) (any, error) {
	var mapping map[string]any
	err := yaml.Unmarshal(raw, &mapping)
	if err == nil {
		if scalar, ok := unwrapSingleNullKey(raw, mapping); ok {
			return scalar, nil
		}
		if mapping == nil {
			return nil, nil
		}
		return mapping, nil
	}

	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		return nil, &InvalidFormatError{Path: display, Err: err}
	}

	var plain any
	if plainErr := yaml.Unmarshal(raw, &plain); plainErr != nil {
		return nil, &InvalidFormatError{Path: display, Err: err}
	}
	return plain, nil
}

// unwrapSingleNullKey applies the single-key-null recovery. It reports the
// recovered scalar and true only when mapping has exactly one key bound to
// null and the plain re-read of raw is a scalar. The heuristic is knowingly
// narrow: a genuine one-field mapping with a null value re-reads as the
// same mapping and is left alone.
func unwrapSingleNullKey(raw []byte, mapping map[string]any) (any, bool) {
	if len(mapping) != 1 {
		return nil, false
	}
	for _, v := range mapping {
		if v != nil {
			return nil, false
		}
	}

	var plain any
	if err := yaml.Unmarshal(raw, &plain); err != nil {
		return nil, false
	}
	switch plain.(type) {
	case map[string]any, []any, nil:
		return nil, false
	default:
		return plain, true
	}
}
