package devices

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/navegante/navegante/internal/config"
	"github.com/navegante/navegante/internal/logging"
)

// fakeRunner scripts command results and records invocations.
type fakeRunner struct {
	mu      sync.Mutex
	calls   int32
	lastCmd []string
	script  string // helper script content captured at run time

	result *ExecResult
	err    error

	// When set, Run blocks until released. Used to hold a helper open.
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*ExecResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.once.Do(func() { close(f.started) })
	}
	f.mu.Lock()
	f.lastCmd = append([]string{name}, args...)
	// A pkexec invocation carries the script path as its only argument
	if len(args) == 1 {
		if b, err := os.ReadFile(args[0]); err == nil {
			f.script = string(b)
		}
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.result, f.err
}

func newTestManager(runner Runner) *Manager {
	return NewManager(config.New(), runner, logging.NewDefaultCLILogger(), nil)
}

const lsblkFixture = `{
  "blockdevices": [
    {"name": "sda", "size": 512110190592, "label": null, "mountpoint": null,
     "children": [
       {"name": "sda1", "size": 536870912, "label": "EFI", "mountpoint": "/boot/efi"},
       {"name": "sda2", "size": 511571263488, "label": null, "mountpoint": "/"}
     ]},
    {"name": "sdb", "size": "15728640000", "label": null, "mountpoint": null,
     "children": [
       {"name": "sdb1", "size": "15727591424", "label": "USB_STICK", "mountpoint": null}
     ]}
  ]
}`

func TestEnumerate(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{Stdout: lsblkFixture}}
	m := newTestManager(runner)

	devices, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}

	sda := devices[0]
	if sda.Device != "/dev/sda" {
		t.Errorf("Device = %s", sda.Device)
	}
	if sda.SizeBytes != 512110190592 {
		t.Errorf("SizeBytes = %d", sda.SizeBytes)
	}
	if len(sda.Children) != 2 {
		t.Fatalf("Expected 2 partitions, got %d", len(sda.Children))
	}
	if sda.Children[0].Label != "EFI" || sda.Children[0].Mountpoint != "/boot/efi" {
		t.Errorf("Partition fields wrong: %+v", sda.Children[0])
	}

	// String-typed sizes from older lsblk versions decode too
	sdb1 := devices[1].Children[0]
	if sdb1.SizeBytes != 15727591424 {
		t.Errorf("String size not decoded: %d", sdb1.SizeBytes)
	}
	if sdb1.Label != "USB_STICK" {
		t.Errorf("Label = %s", sdb1.Label)
	}
	if sdb1.Mountpoint != "" {
		t.Errorf("Unmounted partition has mountpoint %s", sdb1.Mountpoint)
	}
}

func TestEnumerateEmpty(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{Stdout: `{"blockdevices": []}`}}
	m := newTestManager(runner)

	devices, err := m.Enumerate(context.Background())
	if err != nil {
		t.Fatalf("Empty device tree should not fail: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("Expected no devices, got %d", len(devices))
	}
}

func TestEnumerateLsblkFailure(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{ExitCode: 1, Stderr: "lsblk: cannot access"}}
	m := newTestManager(runner)

	if _, err := m.Enumerate(context.Background()); err == nil {
		t.Error("Non-zero lsblk exit should fail")
	}
}

func TestMountHelperInvocation(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{}}
	m := newTestManager(runner)

	if _, err := m.Mount(context.Background(), "/dev/sdb1"); err != nil {
		t.Fatal(err)
	}

	if len(runner.lastCmd) != 2 || runner.lastCmd[0] != "pkexec" {
		t.Errorf("Helper not run under pkexec: %v", runner.lastCmd)
	}
	if !strings.Contains(runner.script, "udisksctl mount -b /dev/sdb1") {
		t.Errorf("Helper script wrong:\n%s", runner.script)
	}
	// One-shot script is cleaned up after the run
	if _, err := os.Stat(runner.lastCmd[1]); !os.IsNotExist(err) {
		t.Error("Helper script should be removed")
	}
}

func TestUnmountHelperInvocation(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{}}
	m := newTestManager(runner)

	if err := m.Unmount(context.Background(), "/dev/sdb1"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(runner.script, "udisksctl unmount -b /dev/sdb1") {
		t.Errorf("Helper script wrong:\n%s", runner.script)
	}
}

func TestMountAuthorizationDenied(t *testing.T) {
	for _, code := range []int{126, 127} {
		runner := &fakeRunner{result: &ExecResult{ExitCode: code}}
		m := newTestManager(runner)

		_, err := m.Mount(context.Background(), "/dev/sdb1")
		if !errors.Is(err, ErrAuthorizationDenied) {
			t.Errorf("Exit %d: expected ErrAuthorizationDenied, got %v", code, err)
		}
	}
}

func TestMountHelperFailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{result: &ExecResult{
		ExitCode: 1,
		Stderr:   "Error mounting /dev/sdb1: wrong fs type",
	}}
	m := newTestManager(runner)

	_, err := m.Mount(context.Background(), "/dev/sdb1")
	if err == nil {
		t.Fatal("Expected helper failure")
	}
	var helperErr *HelperError
	if !errors.As(err, &helperErr) {
		t.Fatalf("Expected *HelperError, got %T", err)
	}
	if helperErr.Stderr != "Error mounting /dev/sdb1: wrong fs type" {
		t.Errorf("Stderr not carried verbatim: %q", helperErr.Stderr)
	}
	if !strings.Contains(err.Error(), "wrong fs type") {
		t.Errorf("Error message should surface the diagnostic: %v", err)
	}
}

func TestConcurrentMountRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	runner := &fakeRunner{result: &ExecResult{}, block: release, started: started}
	m := newTestManager(runner)

	done := make(chan error, 1)
	go func() {
		_, err := m.Mount(context.Background(), "/dev/sdb1")
		done <- err
	}()

	// Let the first helper start, then race a second operation against it
	<-started

	if err := m.Unmount(context.Background(), "/dev/sdb1"); !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("Expected ErrDeviceBusy, got %v", err)
	}
	if calls := atomic.LoadInt32(&runner.calls); calls != 1 {
		t.Errorf("Rejected operation must not invoke the helper, saw %d calls", calls)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("First mount should succeed: %v", err)
	}

	// A different device is not blocked by sdb1's lock
	runner2 := &fakeRunner{result: &ExecResult{}}
	m2 := newTestManager(runner2)
	if err := m2.Unmount(context.Background(), "/dev/sdc1"); err != nil {
		t.Errorf("Unrelated device should not be busy: %v", err)
	}
}
