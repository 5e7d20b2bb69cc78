// Package snapshot implements the point-in-time JSON snapshot store.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/internal/retention"
	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/fsutil"
	"github.com/confsync-project/confsync/pkg/jsonutil"
	"github.com/confsync-project/confsync/pkg/model"
	"github.com/confsync-project/confsync/pkg/pathutil"
)

// Store persists and retrieves timestamped JSON snapshots per item type,
// under <auditDir>/snapshots/<itemType>/. Every write triggers the
// retention pruner for that type.
type Store struct {
	auditDir string
	pruner   *retention.Pruner
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewStore creates a snapshot store rooted at auditDir with the given
// retention period.
func NewStore(auditDir string, retentionDays int, log logrus.FieldLogger) *Store {
	return &Store{
		auditDir: auditDir,
		pruner:   retention.NewPruner(auditDir, retentionDays, log),
		now:      time.Now,
		log:      log,
	}
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Pruner exposes the store's retention pruner for manual runs.
func (s *Store) Pruner() *retention.Pruner {
	return s.pruner
}

// Dir returns the directory holding snapshots for one item type.
func (s *Store) Dir(itemType string) string {
	return filepath.Join(s.auditDir, "snapshots", itemType)
}

// Store serializes data as pretty JSON and writes it under the item type's
// directory, then prunes that type. With an empty identifier the filename is
// <ts>_<itemType>.json; otherwise <identifier>.json. Returns the absolute
// path of the written file.
func (s *Store) Store(itemType string, data any, identifier string) (string, error) {
	if err := pathutil.ValidateItemType(itemType); err != nil {
		return "", err
	}
	if identifier != "" {
		if err := pathutil.ValidateIdentifier(identifier); err != nil {
			return "", err
		}
	}

	dir := s.Dir(itemType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := identifier + ".json"
	if identifier == "" {
		name = model.RegularFileName(model.NewTimestampID(s.now()), itemType)
	}

	payload, err := jsonutil.PrettyMarshal(data)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := fsutil.AtomicWrite(path, payload, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	if removed, err := s.pruner.PruneItemType(itemType); err != nil {
		s.log.WithField("itemType", itemType).Warnf("prune after store failed: %v", err)
	} else if removed > 0 {
		s.log.WithField("itemType", itemType).Debugf("pruned %d snapshot file(s)", removed)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// List returns all snapshot files for an item type sorted ascending by
// filename, which is chronological order for timestamp-derived names.
// A missing directory yields an empty result, not an error.
func (s *Store) List(itemType string) ([]model.SnapshotInfo, error) {
	dir := s.Dir(itemType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot directory: %w", err)
	}

	var infos []model.SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			abs = filepath.Join(dir, entry.Name())
		}
		infos = append(infos, model.SnapshotInfo{ID: entry.Name(), Path: abs})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// ItemTypes lists the item types that have at least one snapshot directory.
func (s *Store) ItemTypes() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.auditDir, "snapshots"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshots directory: %w", err)
	}

	var types []string
	for _, entry := range entries {
		if entry.IsDir() {
			types = append(types, entry.Name())
		}
	}
	return types, nil
}

// Load reads a snapshot file and decodes it as JSON.
func (s *Store) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errclass.ErrSnapshotNotFound.WithMessagef("snapshot not found: %s", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errclass.ErrSnapshotCorrupt.WithMessagef("parse snapshot %s: %v", path, err)
	}
	return doc, nil
}
