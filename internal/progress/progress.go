package progress

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/navegante/navegante/internal/fileops"
)

// CLIProgress implements progress reporting using a single progress bar.
type CLIProgress struct {
	bar *progressbar.ProgressBar
}

// NewCLIProgress creates a new CLI progress reporter.
func NewCLIProgress() *CLIProgress {
	return &CLIProgress{}
}

// Start initializes the progress bar with the total file count.
func (p *CLIProgress) Start(total int64, description string) {
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// FollowOperation drives a reporter from an operation's event stream until
// the terminal event, then returns the operation's outcome.
func FollowOperation(op *fileops.Operation, r Reporter, description string) error {
	started := false
	for ev := range op.Events() {
		if !started {
			r.Start(int64(ev.Progress.FilesTotal), description)
			started = true
		}
		r.Update(int64(ev.Progress.FilesDone))
		if ev.Progress.CurrentItem != "" && !ev.State.Terminal() {
			r.SetDescription(fmt.Sprintf("%s %s", description, filepath.Base(ev.Progress.CurrentItem)))
		}
		if ev.State.Terminal() {
			if ev.State == fileops.StateCompleted {
				r.Update(int64(ev.Progress.FilesTotal))
			}
			r.Finish()
			r.Error(ev.Err)
		}
	}
	return op.Wait()
}
