//go:build windows

package fileops

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

func isCrossDevice(err error) bool {
	return errors.Is(err, windows.ERROR_NOT_SAME_DEVICE)
}

// SameVolume compares volume names; good enough for drive-letter moves.
func SameVolume(a, b string) (bool, error) {
	return strings.EqualFold(filepath.VolumeName(a), filepath.VolumeName(b)), nil
}
