package fileops

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/localfs"
)

// copyFile duplicates content and metadata (permission bits, timestamps)
// of a regular file. The destination is truncated if it already exists.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return classify("copy", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return classify("copy", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return classify("copy", dst, err)
	}

	buf := make([]byte, constants.CopyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		os.Remove(dst) // drop the partial file
		return classify("copy", dst, err)
	}
	if err := out.Close(); err != nil {
		return classify("copy", dst, err)
	}

	// Permission bits may have been narrowed by umask on create
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return classify("copy", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return classify("copy", dst, err)
	}
	return nil
}

// copyTree copies the subtree rooted at src into dst. It serves both the
// fresh clone (dst absent) and the merge (dst present) cases: missing
// destination directories are created, same-named files are overwritten,
// and destination entries with no source counterpart are left untouched.
//
// onFile is invoked after each regular file lands; it can abort the walk
// by returning an error (used for cancellation between units).
func copyTree(ctx context.Context, src, dst string, onFile func(path string) error) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return classify("copy", src, err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return classify("copy", dst, err)
	}

	walkOpts := localfs.WalkOptions{IncludeHidden: true}
	err = localfs.Walk(src, walkOpts, func(entry localfs.FileEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, entry.Path)
		if err != nil {
			return classify("copy", entry.Path, err)
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		if entry.IsDir {
			if err := os.MkdirAll(target, entry.Mode.Perm()); err != nil {
				return classify("copy", target, err)
			}
			return nil
		}

		if err := copyFile(entry.Path, target); err != nil {
			return err
		}
		return onFile(entry.Path)
	})
	if err != nil {
		return err
	}

	// Restore the root directory's timestamp last so file creation inside
	// it doesn't bump it
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return classify("copy", dst, err)
	}
	return nil
}

// copyPath copies a file or a whole subtree to dst, used by the
// cross-device move fallback.
func copyPath(ctx context.Context, src, dst string, onFile func(path string) error) error {
	info, err := os.Stat(src)
	if err != nil {
		return classify("copy", src, err)
	}
	if info.IsDir() {
		return copyTree(ctx, src, dst, onFile)
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return onFile(src)
}
