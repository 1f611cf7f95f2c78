// Package notify provides cross-platform desktop notifications.
// It uses github.com/gen2brain/beeep for cross-platform notification support.
package notify

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/navegante/navegante/internal/config"
	"github.com/navegante/navegante/internal/logging"
)

// Notifier handles desktop notifications.
type Notifier struct {
	logger       *logging.Logger
	enabled      bool
	showComplete bool
	showFailed   bool
	mu           sync.RWMutex
}

// NewNotifier creates a new notifier with the given configuration.
func NewNotifier(cfg config.NotificationConfig, logger *logging.Logger) *Notifier {
	return &Notifier{
		logger:       logger,
		enabled:      cfg.Enabled,
		showComplete: cfg.ShowOperationComplete,
		showFailed:   cfg.ShowOperationFailed,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// OperationComplete sends a notification for a finished copy or move batch.
func (n *Notifier) OperationComplete(kind string, fileCount int, dest string) {
	if !n.IsEnabled() || !n.showComplete {
		return
	}

	title := fmt.Sprintf("%s Complete", titleCase(kind))
	message := fmt.Sprintf("%d file(s) transferred to:\n%s", fileCount, shortenPath(dest))

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Str("dest", dest).Msg("Failed to send completion notification")
	}
}

// OperationFailed sends a notification for a failed copy or move batch.
func (n *Notifier) OperationFailed(kind string, errorMsg string) {
	if !n.IsEnabled() || !n.showFailed {
		return
	}

	title := fmt.Sprintf("%s Failed", titleCase(kind))
	message := truncate(errorMsg, 100)

	if err := n.send(title, message); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to send failure notification")
	}
}

// DeviceMounted sends a notification when a removable device is mounted.
func (n *Notifier) DeviceMounted(device, mountpoint string) {
	if !n.IsEnabled() {
		return
	}

	message := fmt.Sprintf("%s mounted at %s", device, shortenPath(mountpoint))
	if err := n.send("Device Mounted", message); err != nil {
		n.logger.Warn().Err(err).Str("device", device).Msg("Failed to send mount notification")
	}
}

// send is the internal method that actually sends the notification.
func (n *Notifier) send(title, message string) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	return beeep.Notify(title, message, "")
}

func titleCase(kind string) string {
	switch kind {
	case "copy":
		return "Copy"
	case "move":
		return "Move"
	}
	return kind
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// shortenPath abbreviates a long path for display in notifications.
func shortenPath(path string) string {
	const maxLen = 60

	if len(path) <= maxLen {
		return path
	}

	// Try to show ... + last 2 path components
	_, file := filepath.Split(path)
	parentDir := filepath.Base(filepath.Dir(path))

	short := filepath.Join("...", parentDir, file)

	if len(short) > maxLen {
		return "..." + path[len(path)-(maxLen-3):]
	}

	return short
}
