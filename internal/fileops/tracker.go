package fileops

import (
	"time"

	"github.com/navegante/navegante/internal/events"
)

// tracker accumulates progress for one operation and enforces the
// monotonic, 0-100 percent invariant.
type tracker struct {
	op          *Operation
	engine      *Engine
	total       int
	done        int
	lastPercent int
	source      int // index of the source currently transferring
}

// fileDone credits one completed file.
func (t *tracker) fileDone(path string) error {
	return t.advance(path, 1)
}

// advance credits n completed units and emits a progress event.
func (t *tracker) advance(path string, n int) error {
	t.done += n

	percent := t.done * 100 / t.total
	if percent > 100 {
		percent = 100
	}
	if percent < t.lastPercent {
		percent = t.lastPercent
	}
	t.lastPercent = percent

	p := Progress{
		Percent:     percent,
		CurrentItem: path,
		FilesDone:   t.done,
		FilesTotal:  t.total,
		SourceIndex: t.source,
	}

	t.op.mu.Lock()
	t.op.lastProgress = p
	t.op.mu.Unlock()

	t.op.emitProgress(p)
	if t.engine.bus != nil {
		t.engine.bus.Publish(events.OperationEvent{
			BaseEvent:   events.BaseEvent{EventType: events.EventOpProgress, Time: time.Now()},
			OperationID: t.op.ID,
			Kind:        string(t.op.Kind),
			CurrentItem: p.CurrentItem,
			Percent:     p.Percent,
			FilesDone:   p.FilesDone,
			FilesTotal:  p.FilesTotal,
		})
	}
	return nil
}

// emitProgress delivers a StateRunning event without ever blocking the
// worker and without ever taking the channel's last free slot: that slot
// is reserved for the terminal event so consumers that only call Wait
// cannot wedge the worker.
func (o *Operation) emitProgress(p Progress) {
	if len(o.eventsCh) >= cap(o.eventsCh)-1 {
		return // consumer far behind; this snapshot is superseded anyway
	}
	o.eventsCh <- Event{State: StateRunning, Progress: p}
}
