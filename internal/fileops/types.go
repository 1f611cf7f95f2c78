// Package fileops implements the asynchronous file operation engine:
// copy/move batches with pre-scanned progress reporting, directory-merge
// semantics, cooperative cancellation, and per-destination serialization.
package fileops

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind selects the batch operation.
type Kind string

const (
	Copy Kind = "copy"
	Move Kind = "move"
)

// Request describes one submitted batch. Sources are processed in order.
type Request struct {
	Kind    Kind
	Sources []string // absolute paths, non-empty
	Dest    string   // absolute path of an existing directory
}

// Validate checks request invariants at submission time.
func (r Request) Validate() error {
	if r.Kind != Copy && r.Kind != Move {
		return fmt.Errorf("unknown operation kind %q", r.Kind)
	}
	if len(r.Sources) == 0 {
		return fmt.Errorf("no sources given")
	}
	for _, src := range r.Sources {
		if !filepath.IsAbs(src) {
			return fmt.Errorf("source %q is not absolute", src)
		}
	}
	if !filepath.IsAbs(r.Dest) {
		return fmt.Errorf("destination %q is not absolute", r.Dest)
	}
	info, err := os.Stat(r.Dest)
	if err != nil {
		return fmt.Errorf("destination %s: %w", r.Dest, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("destination %s is not a directory", r.Dest)
	}
	return nil
}

// Progress is a point-in-time snapshot of a running batch. Percent is
// monotonically non-decreasing within one operation.
type Progress struct {
	Percent     int    // 0-100, floor(FilesDone*100/FilesTotal)
	CurrentItem string // path of the unit that just completed
	FilesDone   int
	FilesTotal  int // fixed once pre-scan completes, >= 1
	SourceIndex int // index into the request's sources
}

// State is the lifecycle state carried on events.
type State string

const (
	StateRunning   State = "running"   // progress update, more events follow
	StateCompleted State = "completed" // terminal: batch fully transferred
	StateFailed    State = "failed"    // terminal: aborted on first error
	StateCancelled State = "cancelled" // terminal: stopped between units
)

// Terminal reports whether s ends the event stream.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Event is delivered on an operation's channel: zero or more StateRunning
// events followed by exactly one terminal event, after which the channel
// is closed.
type Event struct {
	State    State
	Progress Progress
	Err      error // set for StateFailed
}
