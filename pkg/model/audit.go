package model

// AuditEntry is a single line in the audit ledger (NDJSON format). Entries
// are append-only: they are never mutated or deleted, and survive snapshot
// pruning. Timestamp is an ISO-8601 millisecond string (see ISOTimestamp),
// stamped by the ledger at append time.
type AuditEntry struct {
	Timestamp            string         `json:"timestamp"`
	Operation            Operation      `json:"operation"`
	Manager              string         `json:"manager"`
	ItemType             string         `json:"itemType"`
	Status               Status         `json:"status"`
	Message              string         `json:"message,omitempty"`
	OperationID          string         `json:"operationId,omitempty"`
	SnapshotFile         string         `json:"snapshotFile,omitempty"`
	LocalConfigSnapshot  string         `json:"localConfigSnapshot,omitempty"`
	RemoteBeforeSnapshot string         `json:"remoteBeforeSnapshot,omitempty"`
	RemoteAfterSnapshot  string         `json:"remoteAfterSnapshot,omitempty"`
	Details              map[string]any `json:"details,omitempty"`
}
