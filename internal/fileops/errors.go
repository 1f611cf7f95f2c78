package fileops

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel error kinds for batch failures. Callers match with errors.Is.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrCrossDeviceMove  = errors.New("cross-device move failed")
	ErrFilesystemIO     = errors.New("filesystem I/O error")
)

// OpError is a classified failure naming the affected path. The first
// OpError in a batch aborts the remaining work; completed transfers stay
// in place.
type OpError struct {
	Op   string // "copy", "move", "scan", "remove"
	Path string
	Kind error // one of the sentinels above
	Err  error // underlying cause
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel kind and the underlying cause so
// errors.Is matches either.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify wraps err as an OpError with the matching sentinel kind.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return err // already classified deeper in the tree
	}

	kind := ErrFilesystemIO
	switch {
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	case errors.Is(err, fs.ErrExist):
		kind = ErrAlreadyExists
	case isCrossDevice(err):
		kind = ErrCrossDeviceMove
	}

	return &OpError{Op: op, Path: path, Kind: kind, Err: err}
}
