package errclass

import "fmt"

// SyncError is a stable, machine-readable error class.
type SyncError struct {
	Code    string
	Message string
}

func (e *SyncError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new SyncError with the same Code but a specific message.
func (e *SyncError) WithMessage(msg string) *SyncError {
	return &SyncError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new SyncError with a formatted message.
func (e *SyncError) WithMessagef(format string, args ...any) *SyncError {
	return &SyncError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// All stable error classes.
var (
	ErrSnapshotNotFound    = &SyncError{Code: "E_SNAPSHOT_NOT_FOUND"}
	ErrSnapshotCorrupt     = &SyncError{Code: "E_SNAPSHOT_CORRUPT"}
	ErrItemTypeInvalid     = &SyncError{Code: "E_ITEMTYPE_INVALID"}
	ErrChecksumMismatch    = &SyncError{Code: "E_CHECKSUM_MISMATCH"}
	ErrAuditAppend         = &SyncError{Code: "E_AUDIT_APPEND"}
	ErrNotEnoughSnapshots  = &SyncError{Code: "E_NOT_ENOUGH_SNAPSHOTS"}
	ErrImportSetIncomplete = &SyncError{Code: "E_IMPORT_SET_INCOMPLETE"}
)
