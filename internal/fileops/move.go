package fileops

import (
	"context"
	"os"
)

// MovePath relocates src to dst. Same-volume moves are a single atomic
// rename; cross-device moves fall back to copy-then-delete-source. This is
// the shared move primitive: the engine's move batches and the trash
// manager's relocations both go through it.
//
// The fallback is not atomic. On a fallback failure the copied portion at
// dst is removed, but src is only deleted after the copy fully succeeds,
// so the source is never lost.
func MovePath(src, dst string) error {
	return movePath(context.Background(), src, dst, func(string) error { return nil })
}

func movePath(ctx context.Context, src, dst string, onFile func(path string) error) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return classify("move", src, err)
	}

	// Different volume: copy the full tree, then remove the source
	if copyErr := copyPath(ctx, src, dst, onFile); copyErr != nil {
		os.RemoveAll(dst)
		return copyErr
	}
	if rmErr := os.RemoveAll(src); rmErr != nil {
		return classify("move", src, rmErr)
	}
	return nil
}
