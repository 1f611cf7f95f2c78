package trash

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/navegante/navegante/internal/constants"
)

// escapePath percent-encodes a path for a trashinfo record, leaving the
// separators intact so the file stays human-readable.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// writeInfoFile writes the metadata record for a stored item. The record is
// a small INI file:
//
//	[Trash Info]
//	Path=/home/user/some%20file.txt
//	DeletionDate=2025-03-14T09:26:53
func writeInfoFile(infoPath, originalPath string, deletedAt time.Time) error {
	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapePath(originalPath),
		deletedAt.Format(constants.TrashDateFormat))
	return os.WriteFile(infoPath, []byte(content), 0644)
}

// readInfoFile parses a metadata record. A missing Path key or an
// unparseable file is an error; a malformed DeletionDate degrades to the
// zero time so the item stays restorable.
func readInfoFile(infoPath string) (originalPath string, deletedAt time.Time, err error) {
	cfg, err := ini.Load(infoPath)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse trash metadata: %w", err)
	}

	section := cfg.Section("Trash Info")
	raw := section.Key("Path").String()
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("trash metadata %s has no Path", infoPath)
	}

	originalPath, err = url.PathUnescape(raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("trash metadata %s has malformed Path: %w", infoPath, err)
	}

	if dateStr := section.Key("DeletionDate").String(); dateStr != "" {
		if t, perr := time.ParseInLocation(constants.TrashDateFormat, dateStr, time.Local); perr == nil {
			deletedAt = t
		}
	}

	return originalPath, deletedAt, nil
}
