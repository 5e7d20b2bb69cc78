package model

import "encoding/json"

// SnapshotMetadata is the integrity envelope of an enhanced snapshot.
type SnapshotMetadata struct {
	Checksum     string   `json:"checksum"` // SHA-256 hex of the serialized data array
	Timestamp    string   `json:"timestamp"`
	ToolVersion  string   `json:"toolVersion"`
	ItemType     string   `json:"itemType"`
	ItemCount    int      `json:"itemCount"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// EnhancedSnapshot is the richer snapshot shape some callers store: the raw
// configuration items wrapped in a metadata envelope. Loaders must also
// accept the legacy shape (a bare array or object with no envelope) and
// synthesize metadata on read without rewriting the file.
type EnhancedSnapshot struct {
	Metadata SnapshotMetadata  `json:"metadata"`
	Data     []json.RawMessage `json:"data"`

	// Legacy is true when the file carried no metadata envelope and the
	// metadata above was synthesized at load time.
	Legacy bool `json:"-"`
}
