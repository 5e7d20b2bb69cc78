// Package audit implements the append-only NDJSON operation ledger.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/model"
)

// LedgerFileName is the ledger file inside the audit directory.
const LedgerFileName = "audit.ndjson"

// Ledger appends audit entries to an NDJSON file, one compact JSON object
// per line. Lines are never rewritten or deleted; the ledger is the
// permanent record, independent of snapshot pruning.
type Ledger struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
	log  logrus.FieldLogger
}

// NewLedger creates a ledger rooted at the given audit directory.
func NewLedger(auditDir string, log logrus.FieldLogger) *Ledger {
	return &Ledger{
		path: filepath.Join(auditDir, LedgerFileName),
		now:  time.Now,
		log:  log,
	}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append stamps the current time on entry and appends it as one line.
// The file is created if absent. An advisory flock guards against a second
// process appending the same ledger concurrently.
func (l *Ledger) Append(entry model.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open audit ledger: %w", err)
	}
	defer file.Close()

	if err := lockFile(file); err != nil {
		return fmt.Errorf("flock audit ledger: %w", err)
	}
	defer unlockFile(file)

	entry.Timestamp = model.ISOTimestamp(l.now())

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errclass.ErrAuditAppend.WithMessagef("write audit entry: %v", err)
	}
	if err := file.Sync(); err != nil {
		return errclass.ErrAuditAppend.WithMessagef("sync audit ledger: %v", err)
	}

	return nil
}

// Filter selects ledger entries on the read side. Zero values match everything.
type Filter struct {
	ItemType  string
	Operation model.Operation
	Status    model.Status
}

func (f Filter) matches(e *model.AuditEntry) bool {
	if f.ItemType != "" && e.ItemType != f.ItemType {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// List returns all entries matching the filter, oldest first. Malformed
// lines are skipped on read; the write side never validates beyond required
// fields, so unknown extra fields survive in the file untouched.
func (l *Ledger) List(f Filter) ([]model.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit ledger: %w", err)
	}
	defer file.Close()

	var entries []model.AuditEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var entry model.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			l.log.WithField("path", l.path).Warnf("skipping malformed ledger line: %v", err)
			continue
		}
		if f.matches(&entry) {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan audit ledger: %w", err)
	}

	return entries, nil
}

// Tail returns the last n matching entries, oldest first.
func (l *Ledger) Tail(n int, f Filter) ([]model.AuditEntry, error) {
	entries, err := l.List(f)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}
