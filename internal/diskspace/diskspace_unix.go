//go:build !windows

package diskspace

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// CheckAvailableSpace checks if there is sufficient disk space for an
// operation on the filesystem where targetPath will be created.
//
// safetyMargin is a multiplier applied to requiredBytes (e.g. 1.05 for a
// 5% buffer). Returns an InsufficientSpaceError when space is short.
func CheckAvailableSpace(targetPath string, requiredBytes int64, safetyMargin float64) error {
	// The containing directory must exist for statfs
	dir := filepath.Dir(targetPath)

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		// If we can't stat the filesystem we can't reliably check; let
		// the operation proceed and fail naturally. Covers network and
		// virtual filesystems.
		return nil
	}

	// Bavail = blocks available to unprivileged users
	availableBytes := int64(stat.Bavail) * int64(stat.Bsize)

	requiredWithMargin := int64(float64(requiredBytes) * safetyMargin)

	if availableBytes < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           targetPath,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: availableBytes,
		}
	}

	return nil
}

// GetAvailableSpace returns the available space in bytes for the
// filesystem containing the given path. Returns 0 if unable to determine.
func GetAvailableSpace(path string) int64 {
	dir := filepath.Dir(path)

	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0
	}

	return int64(stat.Bavail) * int64(stat.Bsize)
}
