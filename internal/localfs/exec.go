package localfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureExecutable makes a script executable before launch when its
// extension is in the configured list. The extension list is passed in
// explicitly by the caller; nothing here reads global configuration.
//
// Files that are already executable are left untouched. Files whose
// extension is not listed are also left untouched and reported as such, so
// callers can decide whether to refuse the launch.
func EnsureExecutable(path string, extensions []string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}

	if info.Mode()&0111 != 0 {
		return true, nil
	}

	ext := filepath.Ext(path)
	listed := false
	for _, e := range extensions {
		if e == ext {
			listed = true
			break
		}
	}
	if !listed {
		return false, nil
	}

	// Add execute where read is already granted
	mode := info.Mode().Perm()
	newMode := mode | ((mode & 0444) >> 2)
	if err := os.Chmod(path, newMode); err != nil {
		return false, fmt.Errorf("failed to make %s executable: %w", path, err)
	}
	return true, nil
}
