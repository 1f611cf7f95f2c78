// Package localfs provides unified local filesystem operations for the
// browser core: directory listing, tree walking, hidden-file detection,
// and script launch preparation. Consolidating them here keeps CLI and UI
// behavior identical.
package localfs

import (
	"path/filepath"
	"strings"
)

// IsHidden returns true if the file or directory at the given path is
// hidden. On Unix this checks whether the base name starts with a dot.
func IsHidden(path string) bool {
	return IsHiddenName(filepath.Base(path))
}

// IsHiddenName returns true if the given filename (not path) represents a
// hidden file. Special entries "." and ".." are not considered hidden.
func IsHiddenName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}
