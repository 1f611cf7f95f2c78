package trash

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/logging"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "Trash"), logging.NewDefaultCLILogger(), nil)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func trashOne(t *testing.T, m *Manager, path string) string {
	t.Helper()
	results := m.MoveToTrash([]string{path})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("MoveToTrash(%s) failed: %v", path, results[0].Err)
	}
	return results[0].StoredName
}

func TestMoveToTrashFile(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, src, "hello")

	stored := trashOne(t, m, src)
	if stored != "doc.txt" {
		t.Errorf("StoredName = %s, want doc.txt", stored)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Source should be gone after trashing")
	}
	b, err := os.ReadFile(filepath.Join(m.Root(), constants.TrashFilesDir, "doc.txt"))
	if err != nil || string(b) != "hello" {
		t.Errorf("Stored content wrong: %q, %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(m.Root(), constants.TrashInfoDir, "doc.txt"+constants.TrashInfoSuffix)); err != nil {
		t.Errorf("Metadata record missing: %v", err)
	}
}

func TestMoveToTrashDirectory(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	dir := filepath.Join(srcRoot, "project")
	writeFile(t, filepath.Join(dir, "sub", "file.txt"), "x")

	stored := trashOne(t, m, dir)

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Directory should be gone after trashing")
	}
	inner := filepath.Join(m.Root(), constants.TrashFilesDir, stored, "sub", "file.txt")
	if _, err := os.Stat(inner); err != nil {
		t.Errorf("Directory content not preserved in store: %v", err)
	}
}

func TestMoveToTrashBatchIsPerPath(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	good := filepath.Join(srcRoot, "good.txt")
	writeFile(t, good, "ok")
	missing := filepath.Join(srcRoot, "missing.txt")
	also := filepath.Join(srcRoot, "also.txt")
	writeFile(t, also, "ok")

	results := m.MoveToTrash([]string{good, missing, also})
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("First path should succeed: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("Missing path should fail")
	}
	if results[2].Err != nil {
		t.Errorf("Failure must not stop the batch: %v", results[2].Err)
	}
}

func TestStoredNameCollisions(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()

	names := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		src := filepath.Join(srcRoot, "report.txt")
		writeFile(t, src, "v")
		names = append(names, trashOne(t, m, src))
	}

	want := []string{"report.txt", "report.2.txt", "report.3.txt"}
	for i, got := range names {
		if got != want[i] {
			t.Errorf("Stored name %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestStoredNameCollisionNoExtension(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()

	var names []string
	for i := 0; i < 2; i++ {
		src := filepath.Join(srcRoot, "notes")
		writeFile(t, src, "v")
		names = append(names, trashOne(t, m, src))
	}
	if names[0] != "notes" || names[1] != "notes.2" {
		t.Errorf("Stored names = %v, want [notes notes.2]", names)
	}
}

func TestListEmptyStore(t *testing.T) {
	m := newTestManager(t)
	entries, err := m.List()
	if err != nil {
		t.Fatalf("List on missing store should not fail: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty list, got %d entries", len(entries))
	}
}

func TestListEntries(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "doc.txt")
	writeFile(t, src, "payload")
	trashOne(t, m, src)

	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Name != "doc.txt" {
		t.Errorf("Name = %s", e.Name)
	}
	if e.OriginalPath != src {
		t.Errorf("OriginalPath = %s, want %s", e.OriginalPath, src)
	}
	if e.Orphaned {
		t.Error("Entry should not be orphaned")
	}
	if e.DeletedAt.IsZero() {
		t.Error("DeletedAt should be recorded")
	}
	if e.SizeBytes != int64(len("payload")) {
		t.Errorf("SizeBytes = %d", e.SizeBytes)
	}
}

func TestListFlagsOrphans(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "doc.txt")
	writeFile(t, src, "x")
	stored := trashOne(t, m, src)

	// Simulate an externally deleted metadata record
	infoPath := filepath.Join(m.Root(), constants.TrashInfoDir, stored+constants.TrashInfoSuffix)
	if err := os.Remove(infoPath); err != nil {
		t.Fatal(err)
	}

	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Orphaned content must still be listed, got %d entries", len(entries))
	}
	if !entries[0].Orphaned {
		t.Error("Entry should be flagged as orphaned")
	}
	if entries[0].OriginalPath != "" {
		t.Errorf("Orphan has no known original path, got %s", entries[0].OriginalPath)
	}
}

func TestRestore(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "doc.txt")
	writeFile(t, src, "payload")
	stored := trashOne(t, m, src)

	restoredTo, err := m.Restore(stored, false)
	if err != nil {
		t.Fatal(err)
	}
	if restoredTo != src {
		t.Errorf("Restored to %s, want %s", restoredTo, src)
	}
	b, err := os.ReadFile(src)
	if err != nil || string(b) != "payload" {
		t.Errorf("Restored content wrong: %q, %v", b, err)
	}

	// Store is clean afterwards
	entries, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Store should be empty after restore, got %d entries", len(entries))
	}
}

func TestRestoreRecreatesParent(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "deep", "nested", "doc.txt")
	writeFile(t, src, "x")
	stored := trashOne(t, m, src)

	// Parent directories vanish after trashing
	if err := os.RemoveAll(filepath.Join(srcRoot, "deep")); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Restore(stored, false); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("Restore should recreate missing parents: %v", err)
	}
}

func TestRestoreRefusesExistingOriginal(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "doc.txt")
	writeFile(t, src, "old")
	stored := trashOne(t, m, src)

	// The path comes back with different content
	writeFile(t, src, "new")

	if _, err := m.Restore(stored, false); !errors.Is(err, ErrOriginalExists) {
		t.Fatalf("Expected ErrOriginalExists, got %v", err)
	}
	// Refusal leaves both sides alone
	if b, _ := os.ReadFile(src); string(b) != "new" {
		t.Error("Existing path must not be touched on refusal")
	}

	restoredTo, err := m.Restore(stored, true)
	if err != nil {
		t.Fatalf("Restore with overwrite failed: %v", err)
	}
	if b, _ := os.ReadFile(restoredTo); string(b) != "old" {
		t.Error("Overwrite restore should replace the recreated path")
	}
}

func TestRestoreOrphanFails(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	src := filepath.Join(srcRoot, "doc.txt")
	writeFile(t, src, "x")
	stored := trashOne(t, m, src)

	infoPath := filepath.Join(m.Root(), constants.TrashInfoDir, stored+constants.TrashInfoSuffix)
	if err := os.Remove(infoPath); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Restore(stored, false); !errors.Is(err, ErrMetadataMissing) {
		t.Errorf("Expected ErrMetadataMissing, got %v", err)
	}
	// The content stays in the store
	if _, err := os.Stat(filepath.Join(m.Root(), constants.TrashFilesDir, stored)); err != nil {
		t.Errorf("Orphan must remain in store: %v", err)
	}
}

func TestRestoreUnknownName(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Restore("ghost.txt", false); !errors.Is(err, ErrNotInTrash) {
		t.Errorf("Expected ErrNotInTrash, got %v", err)
	}
}

func TestPurgeForever(t *testing.T) {
	m := newTestManager(t)
	srcRoot := t.TempDir()
	dir := filepath.Join(srcRoot, "project")
	writeFile(t, filepath.Join(dir, "file.txt"), "x")
	stored := trashOne(t, m, dir)

	if err := m.PurgeForever(stored); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(m.Root(), constants.TrashFilesDir, stored)); !os.IsNotExist(err) {
		t.Error("Purged content should be gone")
	}
	infoPath := filepath.Join(m.Root(), constants.TrashInfoDir, stored+constants.TrashInfoSuffix)
	if _, err := os.Stat(infoPath); !os.IsNotExist(err) {
		t.Error("Purged metadata should be gone")
	}

	if err := m.PurgeForever(stored); !errors.Is(err, ErrNotInTrash) {
		t.Errorf("Second purge should report ErrNotInTrash, got %v", err)
	}
}

func TestInfoFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "x.trashinfo")

	original := "/home/user/My Documents/résumé (final).txt"
	deletedAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

	if err := writeInfoFile(infoPath, original, deletedAt); err != nil {
		t.Fatal(err)
	}
	gotPath, gotTime, err := readInfoFile(infoPath)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != original {
		t.Errorf("Path round trip: %q != %q", gotPath, original)
	}
	if !gotTime.Equal(deletedAt) {
		t.Errorf("DeletionDate round trip: %v != %v", gotTime, deletedAt)
	}

	// Raw record stays percent-encoded with separators intact
	raw, err := os.ReadFile(infoPath)
	if err != nil {
		t.Fatal(err)
	}
	if !containsLine(string(raw), "Path=/home/user/My%20Documents/r%C3%A9sum%C3%A9%20%28final%29.txt") {
		t.Errorf("Unexpected record encoding:\n%s", raw)
	}
}

func TestReadInfoFileMissingPath(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "bad.trashinfo")
	if err := os.WriteFile(infoPath, []byte("[Trash Info]\nDeletionDate=2025-01-01T00:00:00\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := readInfoFile(infoPath); err == nil {
		t.Error("Record without Path should be rejected")
	}
}

func containsLine(s, line string) bool {
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] != '\n' {
			i++
		}
		if s[:i] == line {
			return true
		}
		if i == len(s) {
			break
		}
		s = s[i+1:]
	}
	return false
}
