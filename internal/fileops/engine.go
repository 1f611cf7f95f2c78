package fileops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/diskspace"
	"github.com/navegante/navegante/internal/events"
	"github.com/navegante/navegante/internal/logging"
)

// ErrCancelled is returned from Operation.Wait when the batch was stopped
// by the caller. It is a distinct outcome, not a failure.
var ErrCancelled = errors.New("operation cancelled")

// Engine executes copy/move batches. Each Submit runs on its own worker
// goroutine; operations sharing a destination directory are serialized for
// their transfer phase so concurrent batches cannot interleave writes into
// the same directory.
type Engine struct {
	logger *logging.Logger
	bus    *events.EventBus // optional process-wide feed

	mu        sync.Mutex
	destLocks map[string]*sync.Mutex
}

// NewEngine creates an engine. bus may be nil when no process-wide event
// feed is wanted; per-operation channels always work.
func NewEngine(logger *logging.Logger, bus *events.EventBus) *Engine {
	return &Engine{
		logger:    logger,
		bus:       bus,
		destLocks: make(map[string]*sync.Mutex),
	}
}

// Operation is the handle returned by Submit.
type Operation struct {
	ID      string
	Kind    Kind
	Dest    string
	created time.Time

	eventsCh chan Event
	cancel   context.CancelFunc

	done chan struct{}
	mu   sync.Mutex
	err  error // terminal error: nil, ErrCancelled, or the batch failure

	lastProgress Progress
	sourceUnits  []int // per-source unit counts, set once pre-scan finishes
}

// SourceUnits returns the pre-scanned unit count per source, in request
// order. Empty until the first progress event arrives.
func (o *Operation) SourceUnits() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.sourceUnits...)
}

// Events returns the operation's event stream: zero or more StateRunning
// events followed by exactly one terminal event, then the channel closes.
// Events are delivered in emission order; percent never decreases.
func (o *Operation) Events() <-chan Event {
	return o.eventsCh
}

// Cancel requests cooperative cancellation. The worker stops between
// processing units and emits StateCancelled with the completed count.
func (o *Operation) Cancel() {
	o.cancel()
}

// Wait blocks until the operation reaches a terminal state and returns
// nil for Completed, ErrCancelled for Cancelled, or the batch failure.
func (o *Operation) Wait() error {
	<-o.done
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Submit validates the request and starts its worker. The returned handle
// is live immediately; the first events may arrive before Submit returns
// to the caller's goroutine.
func (e *Engine) Submit(req Request) (*Operation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := &Operation{
		ID:       uuid.NewString(),
		Kind:     req.Kind,
		Dest:     filepath.Clean(req.Dest),
		created:  time.Now(),
		eventsCh: make(chan Event, constants.ProgressChannelBuffer),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	e.logger.Info().
		Str("op", op.ID).
		Str("kind", string(req.Kind)).
		Int("sources", len(req.Sources)).
		Str("dest", op.Dest).
		Msg("operation submitted")
	e.publish(events.EventOpSubmitted, op, Progress{}, nil)

	go e.run(ctx, op, req)
	return op, nil
}

// destLock returns the mutex serializing transfers into dest.
func (e *Engine) destLock(dest string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.destLocks[dest]
	if !ok {
		lock = &sync.Mutex{}
		e.destLocks[dest] = lock
	}
	return lock
}

// run is the worker: pre-scan, then transfer, then exactly one terminal
// event.
func (e *Engine) run(ctx context.Context, op *Operation, req Request) {
	defer close(op.eventsCh)
	defer close(op.done)

	scan, err := preScan(ctx, req.Sources)
	if err != nil {
		e.finish(op, err)
		return
	}

	// Copies need the full byte count available at the destination before
	// any data moves; moves may be pure renames so they skip the check.
	if req.Kind == Copy {
		probe := filepath.Join(op.Dest, "probe")
		if err := diskspace.CheckAvailableSpace(probe, scan.totalBytes, constants.DiskSpaceSafetyMargin); err != nil {
			e.finish(op, err)
			return
		}
	}

	lock := e.destLock(op.Dest)
	lock.Lock()
	defer lock.Unlock()

	op.mu.Lock()
	op.sourceUnits = append([]int(nil), scan.units...)
	op.mu.Unlock()

	tr := &tracker{op: op, engine: e, total: scan.totalUnits}

	for i, src := range req.Sources {
		if ctx.Err() != nil {
			e.finish(op, ctx.Err())
			return
		}

		tr.source = i
		var err error
		switch req.Kind {
		case Copy:
			err = e.copySource(ctx, src, op.Dest, scan.units[i], tr)
		case Move:
			err = e.moveSource(ctx, src, op.Dest, scan.units[i], tr)
		}
		if err != nil {
			e.finish(op, err)
			return
		}
	}

	e.finish(op, nil)
}

// copySource transfers one source entry: plain file, fresh subtree clone,
// or non-destructive merge into an existing same-named directory.
func (e *Engine) copySource(ctx context.Context, src, dest string, units int, tr *tracker) error {
	info, err := os.Stat(src)
	if err != nil {
		// Source vanished between pre-scan and transfer
		return classify("copy", src, err)
	}

	target := filepath.Join(dest, filepath.Base(src))

	if !info.IsDir() {
		if err := copyFile(src, target); err != nil {
			return err
		}
		return tr.fileDone(src)
	}

	// Fresh clone and merge share one walk: existing destination entries
	// without a source counterpart are never touched
	copied := 0
	err = copyTree(ctx, src, target, func(path string) error {
		copied++
		return tr.fileDone(path)
	})
	if err != nil {
		return err
	}
	if copied == 0 {
		// Empty directory: credit its single pre-scanned unit
		return tr.advance(src, units)
	}
	return nil
}

// moveSource relocates one source entry. A same-volume rename credits the
// whole subtree at once; the cross-device fallback reports per file.
func (e *Engine) moveSource(ctx context.Context, src, dest string, units int, tr *tracker) error {
	target := filepath.Join(dest, filepath.Base(src))

	moved := 0
	err := movePath(ctx, src, target, func(path string) error {
		moved++
		return tr.fileDone(path)
	})
	if err != nil {
		return err
	}
	if moved == 0 {
		// Rename path: no per-file callbacks fired
		return tr.advance(src, units)
	}
	if moved < units {
		// Fallback copied fewer files than pre-scanned (e.g. empty dir
		// counted as one unit); keep the denominator honest
		return tr.advance(src, units-moved)
	}
	return nil
}

// finish emits the terminal event and resolves Wait.
func (e *Engine) finish(op *Operation, err error) {
	op.mu.Lock()
	done := op.lastProgress
	op.mu.Unlock()

	switch {
	case err == nil:
		done.Percent = 100
		op.setErr(nil)
		op.eventsCh <- Event{State: StateCompleted, Progress: done}
		e.publish(events.EventOpCompleted, op, done, nil)
		e.logger.Info().Str("op", op.ID).Int("files", done.FilesDone).Msg("operation completed")

	case errors.Is(err, context.Canceled):
		op.setErr(ErrCancelled)
		op.eventsCh <- Event{State: StateCancelled, Progress: done}
		e.publish(events.EventOpCancelled, op, done, nil)
		e.logger.Info().Str("op", op.ID).Int("files_done", done.FilesDone).Msg("operation cancelled")

	default:
		op.setErr(err)
		op.eventsCh <- Event{State: StateFailed, Progress: done, Err: err}
		e.publish(events.EventOpFailed, op, done, err)
		e.logger.Error().Str("op", op.ID).Err(err).Msg("operation failed")
	}
}

func (o *Operation) setErr(err error) {
	o.mu.Lock()
	o.err = err
	o.mu.Unlock()
}

// publish mirrors lifecycle events onto the optional process-wide bus.
func (e *Engine) publish(t events.EventType, op *Operation, p Progress, err error) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.OperationEvent{
		BaseEvent:   events.BaseEvent{EventType: t, Time: time.Now()},
		OperationID: op.ID,
		Kind:        string(op.Kind),
		CurrentItem: p.CurrentItem,
		Percent:     p.Percent,
		FilesDone:   p.FilesDone,
		FilesTotal:  p.FilesTotal,
		Error:       err,
	})
}
