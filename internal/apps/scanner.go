package apps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/navegante/navegante/internal/logging"
)

// MimeQuerier resolves a file's MIME type. Tests substitute a fake; the
// default shells out to xdg-mime.
type MimeQuerier interface {
	QueryFileType(ctx context.Context, path string) (string, error)
}

type xdgMimeQuerier struct{}

// NewXDGMimeQuerier returns a MimeQuerier backed by xdg-mime.
func NewXDGMimeQuerier() MimeQuerier {
	return xdgMimeQuerier{}
}

func (xdgMimeQuerier) QueryFileType(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, "xdg-mime", "query", "filetype", path).Output()
	if err != nil {
		return "", fmt.Errorf("xdg-mime query failed for %s: %w", path, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// StandardDirs returns the application directories scanned by default.
func StandardDirs() []string {
	dirs := []string{
		"/usr/share/applications",
		"/usr/local/share/applications",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".local", "share", "applications"))
	}
	return dirs
}

// Scanner discovers installed applications.
type Scanner struct {
	dirs    []string
	querier MimeQuerier
	logger  *logging.Logger
}

// NewScanner creates a scanner over the given application directories.
func NewScanner(dirs []string, querier MimeQuerier, logger *logging.Logger) *Scanner {
	return &Scanner{dirs: dirs, querier: querier, logger: logger}
}

// ScanAll parses every .desktop file in the scanner's directories, sorted
// by display name. Missing directories and unparseable files are skipped.
func (s *Scanner) ScanAll() []DesktopEntry {
	var entries []DesktopEntry
	seen := make(map[string]bool) // first dir wins per file name

	for _, dir := range s.dirs {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range dirEntries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), ".desktop") || seen[de.Name()] {
				continue
			}
			seen[de.Name()] = true

			entry, err := parseDesktopFile(filepath.Join(dir, de.Name()))
			if err != nil {
				s.logger.Debugf("Skipping %s: %v", de.Name(), err)
				continue
			}
			if entry != nil {
				entries = append(entries, *entry)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// AppsForFile returns the installed applications declaring support for the
// file's MIME type, resolved via the scanner's querier.
func (s *Scanner) AppsForFile(ctx context.Context, path string) ([]DesktopEntry, string, error) {
	mimeType, err := s.querier.QueryFileType(ctx, path)
	if err != nil {
		return nil, "", err
	}

	var matched []DesktopEntry
	for _, entry := range s.ScanAll() {
		if entry.HandlesMime(mimeType) {
			matched = append(matched, entry)
		}
	}
	return matched, mimeType, nil
}
