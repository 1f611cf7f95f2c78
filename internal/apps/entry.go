// Package apps discovers installed desktop applications and matches them to
// files by MIME type, for "open with" style launching.
package apps

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// DesktopEntry is one installed application, parsed from its .desktop file.
type DesktopEntry struct {
	Name      string
	Exec      string // Raw Exec line, with field codes still in place
	Icon      string
	Terminal  bool
	MimeTypes []string
	Path      string // The .desktop file this came from
}

// HandlesMime reports whether the entry declares support for mimeType.
func (e *DesktopEntry) HandlesMime(mimeType string) bool {
	for _, m := range e.MimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// parseDesktopFile reads one .desktop file. Entries without a Name or Exec,
// and entries marked NoDisplay, are not launchable and return nil.
func parseDesktopFile(path string) (*DesktopEntry, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	section := cfg.Section("Desktop Entry")
	if section.Key("NoDisplay").MustBool(false) {
		return nil, nil
	}

	entry := &DesktopEntry{
		Name:     section.Key("Name").String(),
		Exec:     section.Key("Exec").String(),
		Icon:     section.Key("Icon").String(),
		Terminal: section.Key("Terminal").MustBool(false),
		Path:     path,
	}
	if entry.Name == "" || entry.Exec == "" {
		return nil, nil
	}

	for _, m := range strings.Split(section.Key("MimeType").String(), ";") {
		if m = strings.TrimSpace(m); m != "" {
			entry.MimeTypes = append(entry.MimeTypes, m)
		}
	}

	return entry, nil
}
