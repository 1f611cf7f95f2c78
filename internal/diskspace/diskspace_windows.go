//go:build windows

package diskspace

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// CheckAvailableSpace checks if there is sufficient disk space for an
// operation on the volume where targetPath will be created.
//
// safetyMargin is a multiplier applied to requiredBytes (e.g. 1.05 for a
// 5% buffer). Returns an InsufficientSpaceError when space is short.
func CheckAvailableSpace(targetPath string, requiredBytes int64, safetyMargin float64) error {
	dir := filepath.Dir(targetPath)

	var freeBytesAvailable uint64
	dirPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return nil
	}
	if err := windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, nil, nil); err != nil {
		// If we can't query the volume we can't reliably check; let the
		// operation proceed and fail naturally.
		return nil
	}

	availableBytes := int64(freeBytesAvailable)
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

// GetAvailableSpace returns the available space in bytes for the volume
// containing the given path. Returns 0 if unable to determine.
func GetAvailableSpace(path string) int64 {
	dir := filepath.Dir(path)

	var freeBytesAvailable uint64
	dirPtr, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0
	}
	if err := windows.GetDiskFreeSpaceEx(dirPtr, &freeBytesAvailable, nil, nil); err != nil {
		return 0
	}
	return int64(freeBytesAvailable)
}
