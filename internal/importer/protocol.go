// Package importer orchestrates the before/local/after snapshot protocol
// around configuration imports.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/internal/audit"
	"github.com/confsync-project/confsync/internal/snapshot"
	"github.com/confsync-project/confsync/pkg/model"
)

// DryRunMessage is logged for imports that were previewed but not applied.
const DryRunMessage = "Dry run: no changes applied."

// Result is what an import callback reports back.
type Result struct {
	Status  model.Status
	Message string
}

// Request parameterizes one protocol run. FetchRemote and DoImport are
// opaque callbacks supplied by the external config manager; the engine
// imposes no timeout on them.
type Request struct {
	ItemType    string
	Manager     string
	LocalConfig any
	FetchRemote func(ctx context.Context) (any, error)
	DoImport    func(ctx context.Context) (*Result, error)
	DryRun      bool
}

// Outcome summarizes a completed protocol run.
type Outcome struct {
	OperationID          string       `json:"operationId"`
	Status               model.Status `json:"status"`
	Message              string       `json:"message,omitempty"`
	LocalConfigSnapshot  string       `json:"localConfigSnapshot"`
	RemoteBeforeSnapshot string       `json:"remoteBeforeSnapshot"`
	RemoteAfterSnapshot  string       `json:"remoteAfterSnapshot,omitempty"`
}

// Protocol captures the three-snapshot sequence around an import and writes
// one consolidated audit entry per invocation.
type Protocol struct {
	store  *snapshot.Store
	ledger *audit.Ledger
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewProtocol creates the import audit protocol.
func NewProtocol(store *snapshot.Store, ledger *audit.Ledger, log logrus.FieldLogger) *Protocol {
	return &Protocol{
		store:  store,
		ledger: ledger,
		now:    time.Now,
		log:    log,
	}
}

// SetClock overrides the time source (tests).
func (p *Protocol) SetClock(now func() time.Time) {
	p.now = now
}

// Run executes the protocol. An import-callback failure is absorbed into
// the audit entry, never re-thrown: the capture always completes, the after
// snapshot reflects whatever partially-applied state the remote is left in,
// and callers inspect the returned status. Snapshot and remote-fetch
// failures abort with an error before any entry is written.
func (p *Protocol) Run(ctx context.Context, req Request) (*Outcome, error) {
	// Step 1: one shared timestamp names all three snapshots.
	ts := model.NewTimestampID(p.now())

	// Step 2: capture the local config about to be imported.
	localPath, err := p.store.Store(req.ItemType, req.LocalConfig, ts+model.ImportLocalSuffix)
	if err != nil {
		return nil, fmt.Errorf("capture local snapshot: %w", err)
	}

	// Step 3: capture the remote state before any change.
	remoteBefore, err := req.FetchRemote(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch remote state: %w", err)
	}
	beforePath, err := p.store.Store(req.ItemType, remoteBefore, ts+model.ImportRemoteBeforeSuffix)
	if err != nil {
		return nil, fmt.Errorf("capture before snapshot: %w", err)
	}

	outcome := &Outcome{
		OperationID:          uuid.NewString(),
		Status:               model.StatusSuccess,
		LocalConfigSnapshot:  localPath,
		RemoteBeforeSnapshot: beforePath,
	}

	// Step 4: run the import, unless this is a dry run.
	if req.DryRun {
		outcome.Message = DryRunMessage
	} else {
		res, err := req.DoImport(ctx)
		switch {
		case err != nil:
			outcome.Status = model.StatusFailure
			outcome.Message = err.Error()
		case res != nil:
			outcome.Status = res.Status
			outcome.Message = res.Message
		}

		// Step 5: capture the remote state after the import, even when the
		// import failed, so "after" reflects the partially-applied state.
		remoteAfter, err := req.FetchRemote(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch remote state after import: %w", err)
		}
		afterPath, err := p.store.Store(req.ItemType, remoteAfter, ts+model.ImportRemoteAfterSuffix)
		if err != nil {
			return nil, fmt.Errorf("capture after snapshot: %w", err)
		}
		outcome.RemoteAfterSnapshot = afterPath
	}

	// Step 6: exactly one audit entry per invocation.
	entry := model.AuditEntry{
		Operation:            model.OperationImport,
		Manager:              req.Manager,
		ItemType:             req.ItemType,
		Status:               outcome.Status,
		Message:              outcome.Message,
		OperationID:          outcome.OperationID,
		LocalConfigSnapshot:  localPath,
		RemoteBeforeSnapshot: beforePath,
		RemoteAfterSnapshot:  outcome.RemoteAfterSnapshot,
	}
	if err := p.ledger.Append(entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"itemType":  req.ItemType,
		"manager":   req.Manager,
		"status":    outcome.Status,
		"dryRun":    req.DryRun,
		"operation": outcome.OperationID,
	}).Info("import audited")

	return outcome, nil
}
