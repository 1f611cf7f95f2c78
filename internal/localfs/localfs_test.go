package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"normal", false},
		{"/path/to/.hidden", true},
		{"/path/to/visible.txt", false},
		{"..", false}, // Special case: parent dir reference
		{".", false},  // Special case: current dir reference
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsHidden(tt.path)
			if result != tt.expected {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

func TestListDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{"visible.txt", ".hidden", "another.txt", ".gitignore"}
	for _, f := range testFiles {
		if err := os.WriteFile(filepath.Join(tmpDir, f), []byte("test"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("excludes hidden by default", func(t *testing.T) {
		entries, err := ListDirectory(tmpDir, ListOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 3 { // visible.txt, another.txt, subdir
			t.Errorf("Expected 3 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if IsHiddenName(e.Name) {
				t.Errorf("Hidden entry %s should have been filtered", e.Name)
			}
		}
	})

	t.Run("includes hidden when requested", func(t *testing.T) {
		entries, err := ListDirectory(tmpDir, ListOptions{IncludeHidden: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 5 {
			t.Errorf("Expected 5 entries, got %d", len(entries))
		}
	})

	t.Run("populates entry fields", func(t *testing.T) {
		entries, err := ListDirectory(tmpDir, ListOptions{})
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if e.Path != filepath.Join(tmpDir, e.Name) {
				t.Errorf("Path %s doesn't match name %s", e.Path, e.Name)
			}
			if e.Name == "subdir" && !e.IsDir {
				t.Error("subdir should be a directory")
			}
			if e.Name == "visible.txt" && e.Size != 4 {
				t.Errorf("Expected size 4, got %d", e.Size)
			}
		}
	})

	t.Run("nonexistent path errors", func(t *testing.T) {
		if _, err := ListDirectory(filepath.Join(tmpDir, "missing"), ListOptions{}); err == nil {
			t.Error("Expected error for nonexistent directory")
		}
	})
}

func TestWalkFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// tree: a.txt, sub/b.txt, sub/deep/c.txt, .hiddendir/d.txt
	mustWrite(t, filepath.Join(tmpDir, "a.txt"))
	mustWrite(t, filepath.Join(tmpDir, "sub", "b.txt"))
	mustWrite(t, filepath.Join(tmpDir, "sub", "deep", "c.txt"))
	mustWrite(t, filepath.Join(tmpDir, ".hiddendir", "d.txt"))

	var visible []string
	err := WalkFiles(tmpDir, WalkOptions{SkipHiddenDirs: true}, func(e FileEntry) error {
		visible = append(visible, e.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 3 {
		t.Errorf("Expected 3 files skipping hidden dirs, got %v", visible)
	}

	var all []string
	err = WalkFiles(tmpDir, WalkOptions{IncludeHidden: true}, func(e FileEntry) error {
		all = append(all, e.Name)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 files including hidden, got %v", all)
	}
}

func TestEnsureExecutable(t *testing.T) {
	tmpDir := t.TempDir()

	script := filepath.Join(tmpDir, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := EnsureExecutable(script, []string{".sh"})
	if err != nil {
		t.Fatalf("EnsureExecutable failed: %v", err)
	}
	if !ok {
		t.Error("Expected .sh script to be made executable")
	}

	info, err := os.Stat(script)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0100 == 0 {
		t.Errorf("Owner execute bit not set: %v", info.Mode())
	}

	// Unlisted extension is left alone
	plain := filepath.Join(tmpDir, "notes.txt")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	ok, err = EnsureExecutable(plain, []string{".sh"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Unlisted extension should not be chmod'ed")
	}
}

func mustWrite(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
}
