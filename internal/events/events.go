// Package events provides a process-wide event bus for UI layers that want
// a single feed of file operation, trash, and device activity in addition
// to the per-operation channels exposed by the fileops engine.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/navegante/navegante/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	// File operation lifecycle
	EventOpSubmitted EventType = "op_submitted" // Operation accepted by the engine
	EventOpProgress  EventType = "op_progress"  // Per-file progress update
	EventOpCompleted EventType = "op_completed" // Batch fully transferred
	EventOpFailed    EventType = "op_failed"    // Batch aborted on first error
	EventOpCancelled EventType = "op_cancelled" // Cancelled by the caller

	// Trash store
	EventTrashed        EventType = "trashed"         // Item moved into the trash store
	EventTrashRestored  EventType = "trash_restored"  // Item restored to its original path
	EventTrashPurged    EventType = "trash_purged"    // Item permanently deleted
	EventTrashListError EventType = "trash_list_err"  // Listing degraded (orphaned metadata)

	// Devices
	EventDeviceMounted   EventType = "device_mounted"
	EventDeviceUnmounted EventType = "device_unmounted"

	// Directory watcher
	EventDirChanged EventType = "dir_changed" // Watched directory content changed
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// OperationEvent describes file operation lifecycle and progress.
type OperationEvent struct {
	BaseEvent
	OperationID string // Engine-assigned operation ID
	Kind        string // "copy" or "move"
	CurrentItem string // Path being processed
	Percent     int    // 0-100
	FilesDone   int
	FilesTotal  int
	Error       error // Set for EventOpFailed
}

// TrashEvent describes trash store mutations.
type TrashEvent struct {
	BaseEvent
	StoredName   string // Name inside the trash content directory
	OriginalPath string // Path at time of deletion (may be empty for orphans)
	Error        error
}

// DeviceEvent describes mount state changes.
type DeviceEvent struct {
	BaseEvent
	DevicePath string
	Mountpoint string
	Error      error
}

// DirChangedEvent describes a change under a watched directory.
type DirChangedEvent struct {
	BaseEvent
	Dir  string // Watched directory
	Path string // Changed entry
	Op   string // "create", "write", "remove", "rename", "chmod"
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers. Publishing never blocks: a
// subscriber with a full buffer loses the event and the drop is counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to
// full subscriber buffers.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
