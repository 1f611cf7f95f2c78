package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/navegante/navegante/internal/events"
	"github.com/navegante/navegante/internal/logging"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(logging.NewDefaultCLILogger(), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

// waitFor drains ch until an event for path arrives or the deadline passes.
func waitFor(t *testing.T, ch chan events.DirChangedEvent, path string) events.DirChangedEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatal("Subscription closed while waiting")
			}
			if ev.Path == path {
				return ev
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for change on %s", path)
		}
	}
}

func TestWatchReportsCreate(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	ch := w.Subscribe()
	target := filepath.Join(dir, "new.txt")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ev := waitFor(t, ch, target)
	if ev.Op != "create" {
		t.Errorf("Op = %s, want create", ev.Op)
	}
	if ev.Dir != dir {
		t.Errorf("Dir = %s, want %s", ev.Dir, dir)
	}
}

func TestWatchReportsRemove(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "doomed.txt")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	ch := w.Subscribe()
	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}

	ev := waitFor(t, ch, target)
	if ev.Op != "remove" {
		t.Errorf("Op = %s, want remove", ev.Op)
	}
}

func TestSwitchingDirectoryDropsOldWatch(t *testing.T) {
	w := newTestWatcher(t)
	oldDir := t.TempDir()
	newDir := t.TempDir()

	if err := w.Watch(oldDir); err != nil {
		t.Fatal(err)
	}
	if err := w.Watch(newDir); err != nil {
		t.Fatal(err)
	}
	if w.Dir() != newDir {
		t.Errorf("Dir = %s, want %s", w.Dir(), newDir)
	}

	ch := w.Subscribe()

	// Changes in the old directory are no longer reported
	if err := os.WriteFile(filepath.Join(oldDir, "stale.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(newDir, "fresh.txt")
	if err := os.WriteFile(target, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ev := waitFor(t, ch, target)
	if ev.Dir != newDir {
		t.Errorf("Dir = %s, want %s", ev.Dir, newDir)
	}

	// Nothing from the old directory should be queued
	select {
	case ev := <-ch:
		if filepath.Dir(ev.Path) == oldDir {
			t.Errorf("Got event from dropped watch: %+v", ev)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	w := newTestWatcher(t)
	ch := w.Subscribe()
	w.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("Unsubscribed channel should be closed")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	w := newTestWatcher(t)
	ch := w.Subscribe()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("Close should close subscription channels")
	}

	if ch2 := w.Subscribe(); ch2 != nil {
		if _, ok := <-ch2; ok {
			t.Error("Subscription after close should be a closed channel")
		}
	}
}
