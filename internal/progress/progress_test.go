package progress

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/navegante/navegante/internal/fileops"
	"github.com/navegante/navegante/internal/logging"
)

// recordingReporter captures reporter calls for assertions.
type recordingReporter struct {
	total    int64
	current  int64
	finished bool
	err      error
}

func (r *recordingReporter) Start(total int64, description string) { r.total = total }
func (r *recordingReporter) Update(current int64)                  { r.current = current }
func (r *recordingReporter) Finish()                               { r.finished = true }
func (r *recordingReporter) Error(err error)                       { r.err = err }
func (r *recordingReporter) SetDescription(desc string)            {}

func TestFollowOperation(t *testing.T) {
	srcDir := t.TempDir()
	dest := t.TempDir()

	sources := make([]string, 0, 3)
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		p := filepath.Join(srcDir, name)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		sources = append(sources, p)
	}

	engine := fileops.NewEngine(logging.NewDefaultCLILogger(), nil)
	op, err := engine.Submit(fileops.Request{Kind: fileops.Copy, Sources: sources, Dest: dest})
	if err != nil {
		t.Fatal(err)
	}

	r := &recordingReporter{}
	if err := FollowOperation(op, r, "Copying"); err != nil {
		t.Fatalf("FollowOperation returned %v", err)
	}

	if r.total != 3 {
		t.Errorf("Start total = %d, want 3", r.total)
	}
	if r.current != 3 {
		t.Errorf("Final position = %d, want 3", r.current)
	}
	if !r.finished {
		t.Error("Finish was not called")
	}
	if r.err != nil {
		t.Errorf("Error reported for a successful batch: %v", r.err)
	}
}

func TestFollowOperationFailure(t *testing.T) {
	dest := t.TempDir()
	missing := filepath.Join(t.TempDir(), "missing.txt")

	engine := fileops.NewEngine(logging.NewDefaultCLILogger(), nil)
	op, err := engine.Submit(fileops.Request{Kind: fileops.Copy, Sources: []string{missing}, Dest: dest})
	if err != nil {
		t.Fatal(err)
	}

	r := &recordingReporter{}
	if err := FollowOperation(op, r, "Copying"); err == nil {
		t.Error("Expected the batch failure to propagate")
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path string
		n    int
		want string
	}{
		{"/home/user/docs/report.txt", 2, filepath.Join("...", "docs", "report.txt")},
		{"short.txt", 2, "short.txt"},
		{"/a/b", 3, "/a/b"},
	}
	for _, tt := range tests {
		if got := truncatePath(tt.path, tt.n); got != tt.want {
			t.Errorf("truncatePath(%q, %d) = %q, want %q", tt.path, tt.n, got, tt.want)
		}
	}
}
