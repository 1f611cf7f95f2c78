// Package devices enumerates block devices and mounts or unmounts them
// through a privileged helper. The helper is a one-action shell script run
// under pkexec so a single authorization covers exactly one udisksctl call.
package devices

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/navegante/navegante/internal/config"
	"github.com/navegante/navegante/internal/constants"
	"github.com/navegante/navegante/internal/events"
	"github.com/navegante/navegante/internal/logging"
)

var (
	// ErrDeviceBusy means a mount or unmount for the same device is
	// already in flight. The helper is not invoked.
	ErrDeviceBusy = errors.New("device operation already in progress")
	// ErrAuthorizationDenied means pkexec refused or the user dismissed
	// the authentication dialog.
	ErrAuthorizationDenied = errors.New("authorization denied")
)

// HelperError carries the privileged helper's stderr verbatim so the caller
// can show the real udisksctl diagnostic.
type HelperError struct {
	Action   string // "mount" or "unmount"
	Device   string
	ExitCode int
	Stderr   string
}

func (e *HelperError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("helper exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("%s %s: %s", e.Action, e.Device, msg)
}

// Manager tracks mount state and runs the privileged helper.
type Manager struct {
	lsblkBin     string
	pkexecBin    string
	udisksctlBin string

	enumerateTimeout time.Duration
	helperTimeout    time.Duration

	runner Runner
	logger *logging.Logger
	bus    *events.EventBus

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-device, lazily created
}

// NewManager creates a device manager using the binaries named in cfg.
// bus may be nil.
func NewManager(cfg *config.Config, runner Runner, logger *logging.Logger, bus *events.EventBus) *Manager {
	return &Manager{
		lsblkBin:         cfg.Devices.Lsblk,
		pkexecBin:        cfg.Devices.Pkexec,
		udisksctlBin:     cfg.Devices.Udisksctl,
		enumerateTimeout: constants.EnumerateTimeout,
		helperTimeout:    constants.HelperTimeout,
		runner:           runner,
		logger:           logger,
		bus:              bus,
		locks:            make(map[string]*sync.Mutex),
	}
}

// IsMounted reports whether devicePath appears in the live mount table,
// and its mountpoint when it does.
func (m *Manager) IsMounted(devicePath string) (string, bool, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return "", false, fmt.Errorf("failed to read mount table: %w", err)
	}
	for _, p := range partitions {
		if p.Device == devicePath {
			return p.Mountpoint, true, nil
		}
	}
	return "", false, nil
}

// Mount mounts devicePath through the privileged helper and returns the
// resulting mountpoint. A second call for a device whose helper is still
// running fails immediately with ErrDeviceBusy.
func (m *Manager) Mount(ctx context.Context, devicePath string) (string, error) {
	if err := m.runHelper(ctx, "mount", devicePath); err != nil {
		return "", err
	}

	mountpoint, mounted, err := m.IsMounted(devicePath)
	if err != nil {
		m.logger.Warnf("Mounted %s but could not resolve its mountpoint: %v", devicePath, err)
	} else if !mounted {
		m.logger.Warnf("Helper reported success but %s is not in the mount table", devicePath)
	}

	m.logger.Infof("Mounted %s at %s", devicePath, mountpoint)
	m.publish(events.EventDeviceMounted, devicePath, mountpoint)
	return mountpoint, nil
}

// Unmount unmounts devicePath through the privileged helper.
func (m *Manager) Unmount(ctx context.Context, devicePath string) error {
	if err := m.runHelper(ctx, "unmount", devicePath); err != nil {
		return err
	}

	m.logger.Infof("Unmounted %s", devicePath)
	m.publish(events.EventDeviceUnmounted, devicePath, "")
	return nil
}

func (m *Manager) deviceLock(devicePath string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[devicePath]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[devicePath] = lock
	}
	return lock
}

func (m *Manager) runHelper(ctx context.Context, action, devicePath string) error {
	lock := m.deviceLock(devicePath)
	if !lock.TryLock() {
		return fmt.Errorf("%w: %s", ErrDeviceBusy, devicePath)
	}
	defer lock.Unlock()

	script, err := m.writeHelperScript(action, devicePath)
	if err != nil {
		return err
	}
	defer os.Remove(script)

	ctx, cancel := context.WithTimeout(ctx, m.helperTimeout)
	defer cancel()

	m.logger.Debugf("Running %s helper for %s", action, devicePath)
	result, err := m.runner.Run(ctx, m.pkexecBin, script)
	if err != nil {
		return fmt.Errorf("failed to run %s helper: %w", action, err)
	}

	switch result.ExitCode {
	case 0:
		return nil
	case 126, 127:
		// pkexec's own codes for dismissed and not-authorized
		return fmt.Errorf("%w: %s %s", ErrAuthorizationDenied, action, devicePath)
	default:
		return &HelperError{
			Action:   action,
			Device:   devicePath,
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
}

// writeHelperScript creates a throwaway script performing exactly one
// udisksctl action on one device. pkexec runs the script, not udisksctl
// directly, so the authorized command line is fixed before any prompt.
func (m *Manager) writeHelperScript(action, devicePath string) (string, error) {
	f, err := os.CreateTemp("", "navegante-helper-*.sh")
	if err != nil {
		return "", fmt.Errorf("failed to create helper script: %w", err)
	}

	content := fmt.Sprintf("#!/bin/sh\nexec %s %s -b %s\n", m.udisksctlBin, action, devicePath)
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write helper script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0700); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to mark helper script executable: %w", err)
	}
	return f.Name(), nil
}

func (m *Manager) publish(t events.EventType, devicePath, mountpoint string) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.DeviceEvent{
		BaseEvent:  events.BaseEvent{EventType: t, Time: time.Now()},
		DevicePath: devicePath,
		Mountpoint: mountpoint,
	})
}
