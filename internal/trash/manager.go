// Package trash implements a per-user trash store in the XDG layout: stored
// content under <root>/files and one metadata record per item under
// <root>/info. Items keep their original name where possible; collisions get
// a numeric suffix before the extension.
package trash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/events"
	"github.com/navegante/navegante/internal/fileops"
	"github.com/navegante/navegante/internal/logging"
)

var (
	// ErrNotInTrash means no stored item carries the requested name.
	ErrNotInTrash = errors.New("not in trash")
	// ErrMetadataMissing means the item exists but its record is gone, so
	// the original path is unknown and the item cannot be restored.
	ErrMetadataMissing = errors.New("trash metadata missing")
	// ErrOriginalExists means restoring would overwrite a path that has
	// been recreated since deletion.
	ErrOriginalExists = errors.New("original path already exists")
)

// Entry describes one stored item.
type Entry struct {
	Name         string    // Name inside the content directory
	OriginalPath string    // Where the item lived before deletion
	DeletedAt    time.Time // Zero when the record had no usable date
	IsDir        bool
	SizeBytes    int64 // File size; 0 for directories
	Orphaned     bool  // Content present but metadata record missing
}

// Result reports the outcome of trashing one path from a batch.
type Result struct {
	Path       string // Requested path
	StoredName string // Name assigned inside the store, empty on failure
	Err        error
}

// Manager owns one trash store rooted at a fixed directory.
type Manager struct {
	root   string
	logger *logging.Logger
	bus    *events.EventBus

	mu sync.Mutex // serializes store mutations
}

// DefaultRoot returns the per-user trash location, ~/.local/share/Trash.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", constants.TrashDirName), nil
}

// NewManager creates a manager for the store at root. The store directories
// are created on first mutation, not here. bus may be nil.
func NewManager(root string, logger *logging.Logger, bus *events.EventBus) *Manager {
	return &Manager{root: root, logger: logger, bus: bus}
}

// Root returns the store root directory.
func (m *Manager) Root() string { return m.root }

func (m *Manager) filesDir() string { return filepath.Join(m.root, constants.TrashFilesDir) }
func (m *Manager) infoDir() string  { return filepath.Join(m.root, constants.TrashInfoDir) }

func (m *Manager) ensureDirs() error {
	for _, dir := range []string{m.filesDir(), m.infoDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory %s: %w", dir, err)
		}
	}
	return nil
}

// storedName picks a free name in the content directory. The first item
// keeps its own name; later same-named items get "name.2", "name.3", with
// the extension preserved ("a.txt" collides to "a.2.txt").
func (m *Manager) storedName(name string) string {
	if !m.nameTaken(name) {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s.%d%s", base, i, ext)
		if !m.nameTaken(candidate) {
			return candidate
		}
	}
}

// nameTaken checks both directories so a stale metadata record also blocks
// the name.
func (m *Manager) nameTaken(name string) bool {
	if _, err := os.Lstat(filepath.Join(m.filesDir(), name)); err == nil {
		return true
	}
	if _, err := os.Lstat(filepath.Join(m.infoDir(), name+constants.TrashInfoSuffix)); err == nil {
		return true
	}
	return false
}

// MoveToTrash moves each path into the store. Failures are per-path: one
// bad path does not stop the rest of the batch, and the returned slice has
// one result per requested path in order.
func (m *Manager) MoveToTrash(paths []string) []Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		stored, err := m.trashOne(path)
		if err != nil {
			m.logger.Errorf("Failed to trash %s: %v", path, err)
		} else {
			m.logger.Infof("Trashed %s as %s", path, stored)
			m.publish(events.EventTrashed, stored, path, nil)
		}
		results = append(results, Result{Path: path, StoredName: stored, Err: err})
	}
	return results
}

func (m *Manager) trashOne(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return "", fmt.Errorf("cannot trash %s: %w", abs, err)
	}
	if err := m.ensureDirs(); err != nil {
		return "", err
	}

	stored := m.storedName(filepath.Base(abs))
	target := filepath.Join(m.filesDir(), stored)

	// Move first, then record. A move that fails leaves the store
	// untouched; a record that fails is rolled back so the item is never
	// stranded without its original path.
	if err := fileops.MovePath(abs, target); err != nil {
		return "", fmt.Errorf("failed to move %s to trash: %w", abs, err)
	}
	infoPath := filepath.Join(m.infoDir(), stored+constants.TrashInfoSuffix)
	if err := writeInfoFile(infoPath, abs, time.Now()); err != nil {
		if rbErr := fileops.MovePath(target, abs); rbErr != nil {
			m.logger.Errorf("Rollback of %s failed: %v", target, rbErr)
		}
		return "", fmt.Errorf("failed to record trash metadata for %s: %w", abs, err)
	}

	return stored, nil
}

// List reads the store from disk. Content that has lost its metadata record
// is still listed, flagged as orphaned, with an empty original path. A
// missing store means an empty trash, not an error.
func (m *Manager) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(m.filesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read trash contents: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := Entry{Name: de.Name(), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil && !de.IsDir() {
			entry.SizeBytes = info.Size()
		}

		infoPath := filepath.Join(m.infoDir(), de.Name()+constants.TrashInfoSuffix)
		original, deletedAt, err := readInfoFile(infoPath)
		if err != nil {
			entry.Orphaned = true
			m.logger.Warnf("Trash item %s has no usable metadata: %v", de.Name(), err)
			m.publish(events.EventTrashListError, de.Name(), "", err)
		} else {
			entry.OriginalPath = original
			entry.DeletedAt = deletedAt
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].DeletedAt.Equal(entries[j].DeletedAt) {
			return entries[i].DeletedAt.After(entries[j].DeletedAt)
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Restore moves a stored item back to its original path. Without a metadata
// record the original path is unknown and the restore fails. When the
// original path exists again the restore fails with ErrOriginalExists
// unless overwrite is set, in which case the existing path is replaced.
func (m *Manager) Restore(name string, overwrite bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := filepath.Join(m.filesDir(), name)
	if _, err := os.Lstat(stored); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotInTrash, name)
	}

	infoPath := filepath.Join(m.infoDir(), name+constants.TrashInfoSuffix)
	original, _, err := readInfoFile(infoPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrMetadataMissing, name)
	}

	if _, err := os.Lstat(original); err == nil {
		if !overwrite {
			return original, fmt.Errorf("%w: %s", ErrOriginalExists, original)
		}
		if err := os.RemoveAll(original); err != nil {
			return original, fmt.Errorf("failed to replace %s: %w", original, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(original), 0755); err != nil {
		return original, fmt.Errorf("failed to recreate parent of %s: %w", original, err)
	}
	if err := fileops.MovePath(stored, original); err != nil {
		return original, fmt.Errorf("failed to restore %s: %w", name, err)
	}
	if err := os.Remove(infoPath); err != nil {
		m.logger.Warnf("Restored %s but could not remove its metadata: %v", name, err)
	}

	m.logger.Infof("Restored %s to %s", name, original)
	m.publish(events.EventTrashRestored, name, original, nil)
	return original, nil
}

// PurgeForever permanently deletes a stored item and its metadata record.
// There is no way back from this.
func (m *Manager) PurgeForever(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := filepath.Join(m.filesDir(), name)
	if _, err := os.Lstat(stored); err != nil {
		return fmt.Errorf("%w: %s", ErrNotInTrash, name)
	}

	if err := os.RemoveAll(stored); err != nil {
		return fmt.Errorf("failed to purge %s: %w", name, err)
	}
	infoPath := filepath.Join(m.infoDir(), name+constants.TrashInfoSuffix)
	if err := os.Remove(infoPath); err != nil && !os.IsNotExist(err) {
		m.logger.Warnf("Purged %s but could not remove its metadata: %v", name, err)
	}

	m.logger.Infof("Purged %s", name)
	m.publish(events.EventTrashPurged, name, "", nil)
	return nil
}

func (m *Manager) publish(t events.EventType, stored, original string, err error) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.TrashEvent{
		BaseEvent:    events.BaseEvent{EventType: t, Time: time.Now()},
		StoredName:   stored,
		OriginalPath: original,
		Error:        err,
	})
}
