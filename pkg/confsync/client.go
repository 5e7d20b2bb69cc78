package confsync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/internal/audit"
	"github.com/confsync-project/confsync/internal/diff"
	"github.com/confsync-project/confsync/internal/doctor"
	"github.com/confsync-project/confsync/internal/history"
	"github.com/confsync-project/confsync/internal/importer"
	"github.com/confsync-project/confsync/internal/retention"
	"github.com/confsync-project/confsync/internal/snapshot"
	"github.com/confsync-project/confsync/internal/verify"
	"github.com/confsync-project/confsync/pkg/config"
	"github.com/confsync-project/confsync/pkg/model"
)

// Client provides high-level audit and snapshot operations rooted at one
// audit directory.
type Client struct {
	auditDir  string
	cfg       *config.Config
	store     *snapshot.Store
	ledger    *audit.Ledger
	engine    *diff.Engine
	presenter *history.Presenter
	protocol  *importer.Protocol
	log       logrus.FieldLogger
}

// Options configures client construction. Zero values defer to the
// configuration file and environment.
type Options struct {
	ConfigPath    string // Directory holding confsync.yaml; env may override
	AuditDir      string // Explicit audit directory; wins over configuration
	RetentionDays int    // Explicit retention period; <= 0 defers to configuration
	Logger        logrus.FieldLogger
}

// ImportOptions configures one run of the import audit protocol.
type ImportOptions struct {
	ItemType    string
	Manager     string
	LocalConfig any
	FetchRemote func(ctx context.Context) (any, error)
	DoImport    func(ctx context.Context) (*importer.Result, error)
	DryRun      bool
}

// New builds a client from options, configuration file and environment.
func New(opts Options) (*Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("confsync: %w", err)
	}

	auditDir := opts.AuditDir
	if auditDir == "" {
		auditDir = cfg.ResolveAuditDir()
	}
	retentionDays := cfg.RetentionDays
	if opts.RetentionDays > 0 {
		retentionDays = opts.RetentionDays
	}

	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	store := snapshot.NewStore(auditDir, retentionDays, log)
	ledger := audit.NewLedger(auditDir, log)
	engine := diff.NewEngine()

	return &Client{
		auditDir:  auditDir,
		cfg:       cfg,
		store:     store,
		ledger:    ledger,
		engine:    engine,
		presenter: history.NewPresenter(store, engine, log),
		protocol:  importer.NewProtocol(store, ledger, log),
		log:       log,
	}, nil
}

// AuditDir returns the resolved audit directory.
func (c *Client) AuditDir() string {
	return c.auditDir
}

// Config returns the loaded configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// StoreSnapshot stores data as a timestamped regular snapshot and returns
// the written file path.
func (c *Client) StoreSnapshot(itemType string, data any) (string, error) {
	return c.store.Store(itemType, data, "")
}

// StoreEnhancedSnapshot stores items wrapped in a checksummed metadata
// envelope as a regular snapshot.
func (c *Client) StoreEnhancedSnapshot(itemType, toolVersion string, items []json.RawMessage, dependencies []string) (string, error) {
	return c.store.StoreEnhanced(itemType, toolVersion, items, dependencies)
}

// ListSnapshots lists snapshot files for an item type, oldest first.
func (c *Client) ListSnapshots(itemType string) ([]model.SnapshotInfo, error) {
	return c.store.List(itemType)
}

// ItemTypes lists item types with at least one snapshot directory.
func (c *Client) ItemTypes() ([]string, error) {
	return c.store.ItemTypes()
}

// LoadSnapshot reads and decodes one snapshot file.
func (c *Client) LoadSnapshot(path string) (any, error) {
	return c.store.Load(path)
}

// RecordExport stores a regular snapshot of exported data and appends a
// matching audit entry.
func (c *Client) RecordExport(itemType, manager string, data any, message string) (string, error) {
	path, err := c.store.Store(itemType, data, "")
	if err != nil {
		return "", err
	}

	entry := model.AuditEntry{
		Operation:    model.OperationExport,
		Manager:      manager,
		ItemType:     itemType,
		Status:       model.StatusSuccess,
		Message:      message,
		OperationID:  uuid.NewString(),
		SnapshotFile: path,
	}
	if err := c.ledger.Append(entry); err != nil {
		return path, fmt.Errorf("append audit entry: %w", err)
	}
	return path, nil
}

// RunImport executes the three-snapshot import audit protocol.
func (c *Client) RunImport(ctx context.Context, opts ImportOptions) (*importer.Outcome, error) {
	return c.protocol.Run(ctx, importer.Request{
		ItemType:    opts.ItemType,
		Manager:     opts.Manager,
		LocalConfig: opts.LocalConfig,
		FetchRemote: opts.FetchRemote,
		DoImport:    opts.DoImport,
		DryRun:      opts.DryRun,
	})
}

// Diff computes a structural diff between two snapshot files.
func (c *Client) Diff(pathA, pathB string) (*diff.Report, error) {
	return c.engine.Diff(pathA, pathB)
}

// TimeMachine walks regular snapshots chronologically, diffing each
// consecutive pair among the most recent ones.
func (c *Client) TimeMachine(itemType string, opts history.TimeMachineOptions) ([]history.Step, error) {
	return c.presenter.TimeMachine(itemType, opts)
}

// LatestImportDiff produces preview and actual diffs for the most recent
// import set of an item type.
func (c *Client) LatestImportDiff(itemType string) (*history.ImportDiff, error) {
	return c.presenter.LatestImportDiff(itemType)
}

// Prune applies the retention policy to one item type and returns the
// number of files removed.
func (c *Client) Prune(itemType string) (int, error) {
	return c.store.Pruner().PruneItemType(itemType)
}

// PruneAll applies the retention policy to every item type.
func (c *Client) PruneAll() (int, error) {
	return c.store.Pruner().PruneAll()
}

// Pruner exposes the retention pruner.
func (c *Client) Pruner() *retention.Pruner {
	return c.store.Pruner()
}

// AuditEntries returns ledger entries matching the filter, oldest first.
func (c *Client) AuditEntries(f audit.Filter) ([]model.AuditEntry, error) {
	return c.ledger.List(f)
}

// AuditTail returns the last n matching ledger entries, oldest first.
func (c *Client) AuditTail(n int, f audit.Filter) ([]model.AuditEntry, error) {
	return c.ledger.Tail(n, f)
}

// Verify checks integrity of every snapshot of an item type.
func (c *Client) Verify(itemType string) ([]verify.Result, error) {
	return verify.NewVerifier(c.store).VerifyItemType(itemType)
}

// Doctor runs health checks over the audit directory tree.
func (c *Client) Doctor() (*doctor.Result, error) {
	return doctor.NewDoctor(c.auditDir).Check()
}
