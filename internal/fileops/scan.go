package fileops

import (
	"context"
	"os"

	"github.com/navegante/navegante/internal/localfs"
)

// scanResult is the outcome of the non-mutating pre-scan pass.
type scanResult struct {
	// units holds, per source (same order as Request.Sources), the number
	// of progress units that source contributes: its regular file count,
	// or 1 for a plain file or an empty directory.
	units []int

	// totalUnits is the progress denominator, always >= 1.
	totalUnits int

	// totalBytes is the summed size of all regular files, used for the
	// destination free-space precheck.
	totalBytes int64
}

// preScan enumerates every source recursively and fixes the progress
// denominator before any data moves. Directories are walked fully; hidden
// entries are always included since the batch transfers them regardless of
// display settings.
func preScan(ctx context.Context, sources []string) (*scanResult, error) {
	res := &scanResult{units: make([]int, len(sources))}

	walkOpts := localfs.WalkOptions{IncludeHidden: true}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(src)
		if err != nil {
			return nil, classify("scan", src, err)
		}

		if !info.IsDir() {
			res.units[i] = 1
			res.totalBytes += info.Size()
			continue
		}

		count := 0
		err = localfs.WalkFiles(src, walkOpts, func(entry localfs.FileEntry) error {
			count++
			res.totalBytes += entry.Size
			return ctx.Err()
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, classify("scan", src, err)
		}

		// An empty directory is still one transferable unit so the
		// progress denominator never hits zero and the bar can complete.
		if count == 0 {
			count = 1
		}
		res.units[i] = count
	}

	for _, u := range res.units {
		res.totalUnits += u
	}
	if res.totalUnits == 0 {
		res.totalUnits = 1
	}

	return res, nil
}
