package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/navegante/navegante/internal/fileops"
)

// BatchUI renders one progress bar per source of a multi-source batch.
// Bars appear once the operation's pre-scan has fixed the per-source file
// counts.
type BatchUI struct {
	progress   *mpb.Progress
	sources    []string
	bars       []*mpb.Bar
	isTerminal bool
}

// NewBatchUI creates the UI for a batch over the given sources.
func NewBatchUI(sources []string) *BatchUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		enableWindowsANSI(os.Stderr)
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(80),
		)
	} else {
		// Non-TTY: disable bars, fall back to plain per-source lines
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &BatchUI{
		progress:   p,
		sources:    sources,
		isTerminal: isTerminal,
	}
}

// IsTerminal returns true if output is to a terminal (bars are active).
func (u *BatchUI) IsTerminal() bool {
	return u.isTerminal
}

// Writer returns an io.Writer that safely outputs above the progress bars.
func (u *BatchUI) Writer() io.Writer {
	if u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

// Follow drives the bars from the operation's event stream and returns the
// operation's outcome after all bars have rendered their final state.
func (u *BatchUI) Follow(op *fileops.Operation) error {
	var units []int
	var offsets []int

	for ev := range op.Events() {
		if u.bars == nil {
			// First event: per-source totals are now known
			units = op.SourceUnits()
			if len(units) != len(u.sources) {
				units = make([]int, len(u.sources))
			}
			offsets = make([]int, len(u.sources))
			sum := 0
			for i, n := range units {
				offsets[i] = sum
				sum += n
			}
			u.addBars(units)
		}

		if ev.State.Terminal() {
			u.settle(ev, units, offsets)
			break
		}

		i := ev.Progress.SourceIndex
		if i < 0 || i >= len(u.bars) {
			continue
		}
		// Earlier sources are fully transferred once a later one starts
		for j := 0; j < i; j++ {
			u.bars[j].SetCurrent(int64(units[j]))
		}
		u.bars[i].SetCurrent(int64(ev.Progress.FilesDone - offsets[i]))
	}

	u.progress.Wait()
	return op.Wait()
}

func (u *BatchUI) addBars(units []int) {
	u.bars = make([]*mpb.Bar, len(u.sources))
	for i, src := range u.sources {
		name := truncatePath(src, 2)
		u.bars[i] = u.progress.New(int64(units[i]),
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("[%d/%d] %s", i+1, len(u.sources), name), decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.CountersNoUnit("%d / %d", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
			),
		)
		if !u.isTerminal {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: %d file(s)\n", i+1, len(u.sources), name, units[i])
		}
	}
}

// settle brings every bar to its final state for the terminal event.
func (u *BatchUI) settle(ev fileops.Event, units, offsets []int) {
	switch ev.State {
	case fileops.StateCompleted:
		for i, bar := range u.bars {
			bar.SetCurrent(int64(units[i]))
			bar.SetTotal(int64(units[i]), true)
		}
	default:
		// Failed or cancelled: freeze finished bars, abort the rest
		for i, bar := range u.bars {
			done := ev.Progress.FilesDone - offsets[i]
			if done >= units[i] {
				bar.SetCurrent(int64(units[i]))
				bar.SetTotal(int64(units[i]), true)
			} else {
				bar.Abort(false)
			}
		}
	}
}

// truncatePath keeps the last n components of a path for display.
func truncatePath(path string, n int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= n {
		return path
	}
	return filepath.Join(append([]string{"..."}, parts[len(parts)-n:]...)...)
}
