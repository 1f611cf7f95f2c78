// Package config provides configuration management for navegante.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/navegante/navegante/internal/constants"
)

// Config is the process configuration. It is loaded once at startup and
// passed explicitly into the core constructors; no package reads it from
// ambient global state.
//
// Config file location: ~/.config/navegante/navegante.conf
//
// INI format:
//
//	[browser]
//	show_hidden = false
//	executable_extensions = .sh,.run
//
//	[trash]
//	root =
//
//	[devices]
//	lsblk = lsblk
//	pkexec = pkexec
//	udisksctl = udisksctl
//
//	[notifications]
//	enabled = true
//	show_operation_complete = true
//	show_operation_failed = true
type Config struct {
	Browser       BrowserConfig
	Trash         TrashConfig
	Devices       DevicesConfig
	Notifications NotificationConfig
}

// BrowserConfig contains directory listing and launch settings.
type BrowserConfig struct {
	// ShowHidden includes dotfiles in listings.
	// Default: false
	ShowHidden bool `ini:"show_hidden"`

	// ExecutableExtensions are file extensions chmod'ed executable before
	// launch (comma-separated in the file, with leading dots).
	// Default: ".sh"
	ExecutableExtensions []string `ini:"-"`
}

// TrashConfig contains trash store settings.
type TrashConfig struct {
	// Root overrides the trash root directory.
	// Empty means ~/.local/share/Trash (XDG default).
	Root string `ini:"root"`
}

// DevicesConfig contains the external tool names used for block device
// enumeration and mounting. Overridable mainly for tests and odd distros.
type DevicesConfig struct {
	Lsblk     string `ini:"lsblk"`
	Pkexec    string `ini:"pkexec"`
	Udisksctl string `ini:"udisksctl"`
}

// NotificationConfig contains desktop notification settings.
type NotificationConfig struct {
	// Enabled determines if notifications are sent.
	Enabled bool `ini:"enabled"`

	// ShowOperationComplete notifies on successful copy/move batches.
	ShowOperationComplete bool `ini:"show_operation_complete"`

	// ShowOperationFailed notifies on failed copy/move batches.
	ShowOperationFailed bool `ini:"show_operation_failed"`
}

// DefaultConfigPath returns the path of the navegante.conf file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", constants.ConfigDirName, constants.ConfigFileName), nil
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Browser: BrowserConfig{
			ShowHidden:           false,
			ExecutableExtensions: []string{".sh"},
		},
		Trash: TrashConfig{
			Root: "",
		},
		Devices: DevicesConfig{
			Lsblk:     constants.LsblkBinary,
			Pkexec:    constants.PkexecBinary,
			Udisksctl: constants.UdisksctlBinary,
		},
		Notifications: NotificationConfig{
			Enabled:               true,
			ShowOperationComplete: true,
			ShowOperationFailed:   true,
		},
	}
}

// Load reads configuration from the given path. If path is empty the
// default location is used. A missing file returns defaults and no error;
// an unreadable or malformed file returns an error.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil // defaults if we can't determine the path
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", constants.ConfigFileName, err)
	}

	browser := iniFile.Section("browser")
	cfg.Browser.ShowHidden = browser.Key("show_hidden").MustBool(false)
	if raw := browser.Key("executable_extensions").String(); raw != "" {
		cfg.Browser.ExecutableExtensions = parseExtensions(raw)
	}

	trash := iniFile.Section("trash")
	cfg.Trash.Root = trash.Key("root").String()

	devices := iniFile.Section("devices")
	cfg.Devices.Lsblk = devices.Key("lsblk").MustString(constants.LsblkBinary)
	cfg.Devices.Pkexec = devices.Key("pkexec").MustString(constants.PkexecBinary)
	cfg.Devices.Udisksctl = devices.Key("udisksctl").MustString(constants.UdisksctlBinary)

	notify := iniFile.Section("notifications")
	cfg.Notifications.Enabled = notify.Key("enabled").MustBool(true)
	cfg.Notifications.ShowOperationComplete = notify.Key("show_operation_complete").MustBool(true)
	cfg.Notifications.ShowOperationFailed = notify.Key("show_operation_failed").MustBool(true)

	return cfg, nil
}

// Save writes configuration to the given path, creating parent directories
// as needed. If path is empty the default location is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	browser, err := iniFile.NewSection("browser")
	if err != nil {
		return fmt.Errorf("failed to create browser section: %w", err)
	}
	browser.Key("show_hidden").SetValue(fmt.Sprintf("%t", cfg.Browser.ShowHidden))
	browser.Key("executable_extensions").SetValue(strings.Join(cfg.Browser.ExecutableExtensions, ","))

	trash, err := iniFile.NewSection("trash")
	if err != nil {
		return fmt.Errorf("failed to create trash section: %w", err)
	}
	trash.Key("root").SetValue(cfg.Trash.Root)

	devices, err := iniFile.NewSection("devices")
	if err != nil {
		return fmt.Errorf("failed to create devices section: %w", err)
	}
	devices.Key("lsblk").SetValue(cfg.Devices.Lsblk)
	devices.Key("pkexec").SetValue(cfg.Devices.Pkexec)
	devices.Key("udisksctl").SetValue(cfg.Devices.Udisksctl)

	notify, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notify.Key("enabled").SetValue(fmt.Sprintf("%t", cfg.Notifications.Enabled))
	notify.Key("show_operation_complete").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowOperationComplete))
	notify.Key("show_operation_failed").SetValue(fmt.Sprintf("%t", cfg.Notifications.ShowOperationFailed))

	return iniFile.SaveTo(path)
}

// parseExtensions splits a comma-separated extension list, normalizing
// entries to a leading dot and dropping empties.
func parseExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		exts = append(exts, p)
	}
	return exts
}
