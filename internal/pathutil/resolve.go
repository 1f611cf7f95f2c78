// Package pathutil provides path resolution utilities shared by the core
// subsystems and the CLI.
package pathutil

import (
	"os"
	"path/filepath"
)

// ResolveAbsolutePath converts a path to a canonical absolute path.
// Symlinks are resolved in the existing portion of the path, then any
// non-existent components are appended unchanged. This handles targets
// inside symlinked user folders that do not exist yet.
//
// Navigation history and the file operation engine both canonicalize
// through this function so the same location is always recorded the same
// way regardless of entry point.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// Fast path if the full path exists
	resolved, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		return resolved, nil
	}

	// Path doesn't fully exist - find the deepest existing ancestor,
	// resolve symlinks there, then append the rest
	current := absPath
	var remainder []string

	for {
		if _, err := os.Stat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				resolved = current // fallback if resolution fails
			}
			// Append the non-existent remainder (collected bottom-up)
			for i := len(remainder) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, remainder[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root without finding an existing dir
			return absPath, nil
		}
		remainder = append(remainder, filepath.Base(current))
		current = parent
	}
}
