// Package fsutil provides file system utility functions.
package fsutil

import (
	"os"
	"path/filepath"
)

// Exists reports whether path exists as a file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FindGitRoot walks upward from start looking for the nearest ancestor
// directory containing version-control metadata (a .git entry, which may be
// a directory or, for worktrees and submodules, a file). It returns the
// containing directory and true, or "" and false when start is not inside a
// version-controlled tree.
func FindGitRoot(start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		if Exists(filepath.Join(dir, ".git")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
