// Package watcher reports changes under the directory a view is showing,
// so listings refresh without polling.
package watcher

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/events"
	"github.com/navegante/navegante/internal/logging"
)

// Watcher watches one directory at a time and fans change notifications out
// to subscribers. Switching directories drops the previous watch.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *logging.Logger
	bus    *events.EventBus

	mu          sync.Mutex
	dir         string
	subscribers map[chan events.DirChangedEvent]struct{}
	closed      bool
}

// New creates a watcher and starts its dispatch loop. bus may be nil.
func New(logger *logging.Logger, bus *events.EventBus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w := &Watcher{
		fsw:         fsw,
		logger:      logger,
		bus:         bus,
		subscribers: make(map[chan events.DirChangedEvent]struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watched directory. The previous directory, if any, is
// no longer watched.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		if err := w.fsw.Remove(w.dir); err != nil {
			w.logger.Debugf("Failed to drop watch on %s: %v", w.dir, err)
		}
	}
	if err := w.fsw.Add(dir); err != nil {
		w.dir = ""
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

// Dir returns the currently watched directory.
func (w *Watcher) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Subscribe returns a channel of change notifications. A slow subscriber
// loses notifications rather than stalling the dispatch loop.
func (w *Watcher) Subscribe() chan events.DirChangedEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan events.DirChangedEvent, constants.WatcherEventBuffer)
	if w.closed {
		close(ch)
		return ch
	}
	w.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscription channel.
func (w *Watcher) Unsubscribe(ch chan events.DirChangedEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subscribers[ch]; ok {
		delete(w.subscribers, ch)
		close(ch)
	}
}

// Close stops the watcher and closes all subscription channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for ch := range w.subscribers {
		close(ch)
	}
	w.subscribers = nil
	w.mu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.dispatch(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("Filesystem watch error: %v", err)
		}
	}
}

func (w *Watcher) dispatch(ev fsnotify.Event) {
	w.mu.Lock()
	dir := w.dir
	subs := make([]chan events.DirChangedEvent, 0, len(w.subscribers))
	for ch := range w.subscribers {
		subs = append(subs, ch)
	}
	w.mu.Unlock()

	change := events.DirChangedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventDirChanged, Time: time.Now()},
		Dir:       dir,
		Path:      ev.Name,
		Op:        opString(ev.Op),
	}

	for _, ch := range subs {
		select {
		case ch <- change:
		default:
		}
	}
	if w.bus != nil {
		w.bus.Publish(change)
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	}
	return strings.ToLower(op.String())
}
