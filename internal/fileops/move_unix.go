//go:build !windows

package fileops

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isCrossDevice reports whether err is the kernel refusing a rename across
// filesystem boundaries.
func isCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}

// SameVolume reports whether two existing paths live on the same
// filesystem, i.e. whether a move between them can be an atomic rename.
func SameVolume(a, b string) (bool, error) {
	var sa, sb unix.Stat_t
	if err := unix.Stat(a, &sa); err != nil {
		return false, classify("stat", a, err)
	}
	if err := unix.Stat(b, &sb); err != nil {
		return false, classify("stat", b, err)
	}
	return sa.Dev == sb.Dev, nil
}
