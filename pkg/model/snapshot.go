package model

import (
	"fmt"
	"strings"
	"time"
)

// Snapshot identifiers are ISO-8601 UTC timestamps with millisecond
// precision, with ':' and '.' replaced by '-' so they are safe as filename
// prefixes: 2024-03-01T12-00-00-000Z. Lexicographic order over identifiers
// is chronological order.
const (
	isoFormat   = "2006-01-02T15:04:05.000"
	isoParse    = "2006-01-02T15:04:05.000Z07:00"
	tsIDLength  = 24
	importInfix = "_import_"
)

// Import-triple identifier suffixes. The three files of one import share a
// single timestamp prefix; remote_after is absent for dry runs.
const (
	ImportLocalSuffix        = "_import_local"
	ImportRemoteBeforeSuffix = "_import_remote_before"
	ImportRemoteAfterSuffix  = "_import_remote_after"
)

// ISOTimestamp renders t as an ISO-8601 UTC string with milliseconds,
// e.g. 2024-03-01T12:00:00.000Z. This is the wire format used in audit
// ledger entries and enhanced snapshot metadata.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoFormat) + "Z"
}

// NewTimestampID derives a filename-safe snapshot identifier from t.
func NewTimestampID(t time.Time) string {
	r := strings.NewReplacer(":", "-", ".", "-")
	return r.Replace(ISOTimestamp(t))
}

// ParseTimestampID reverses NewTimestampID, reconstructing the ISO string
// and parsing it. Identifiers that were not timestamp-derived fail here.
func ParseTimestampID(id string) (time.Time, error) {
	if len(id) != tsIDLength || id[tsIDLength-1] != 'Z' {
		return time.Time{}, fmt.Errorf("not a timestamp identifier: %q", id)
	}
	iso := id[:13] + ":" + id[14:16] + ":" + id[17:19] + "." + id[20:23] + "Z"
	t, err := time.Parse(isoParse, iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp identifier %q: %w", id, err)
	}
	return t, nil
}

// ParseFilenameTime extracts and parses the timestamp prefix of a snapshot
// filename. Works for both regular and import-triple files since both start
// with the identifier.
func ParseFilenameTime(name string) (time.Time, error) {
	base := strings.TrimSuffix(name, ".json")
	if len(base) < tsIDLength {
		return time.Time{}, fmt.Errorf("filename too short for timestamp prefix: %q", name)
	}
	return ParseTimestampID(base[:tsIDLength])
}

// IsImportFile reports whether a snapshot filename belongs to an import
// triple rather than a regular snapshot.
func IsImportFile(name string) bool {
	return strings.Contains(name, importInfix)
}

// ImportGroupKey returns the shared timestamp prefix grouping the files of
// one import triple. Returns "" for regular snapshot filenames.
func ImportGroupKey(name string) string {
	idx := strings.Index(name, importInfix)
	if idx < 0 {
		return ""
	}
	return name[:idx]
}

// RegularFileName builds the filename for a regular snapshot:
// <id>_<itemType>.json.
func RegularFileName(id, itemType string) string {
	return id + "_" + itemType + ".json"
}

// SnapshotInfo describes one stored snapshot file.
type SnapshotInfo struct {
	ID   string `json:"id"`   // filename including .json
	Path string `json:"path"` // absolute path
}
