// Package retention implements the snapshot garbage-collection policy:
// age-based pruning with independent minimum-retention floors for regular
// snapshots and import triples.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/pkg/model"
)

const (
	// MinRegularSnapshots regular snapshots survive pruning regardless of age.
	MinRegularSnapshots = 3
	// MinImportSets import triples survive pruning regardless of age.
	// A triple is only useful as a set, so groups are kept or deleted whole.
	MinImportSets = 2
)

// Pruner deletes snapshots older than the retention cutoff while
// guaranteeing the minimum retained counts per item type.
type Pruner struct {
	auditDir      string
	retentionDays int
	now           func() time.Time
	log           logrus.FieldLogger
}

// NewPruner creates a pruner over the given audit directory. Negative
// retentionDays falls back to the 30-day default; zero means everything
// beyond the floors is prunable.
func NewPruner(auditDir string, retentionDays int, log logrus.FieldLogger) *Pruner {
	if retentionDays < 0 {
		retentionDays = 30
	}
	return &Pruner{
		auditDir:      auditDir,
		retentionDays: retentionDays,
		now:           time.Now,
		log:           log,
	}
}

// SetClock overrides the time source (tests).
func (p *Pruner) SetClock(now func() time.Time) {
	p.now = now
}

// PruneItemType applies the retention policy to one item type and returns
// the number of individual files removed. A missing type directory is not
// an error.
func (p *Pruner) PruneItemType(itemType string) (int, error) {
	dir := filepath.Join(p.auditDir, "snapshots", itemType)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read snapshot directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}

	importFiles, regular := lo.FilterReject(names, func(name string, _ int) bool {
		return model.IsImportFile(name)
	})
	groups := lo.GroupBy(importFiles, model.ImportGroupKey)

	cutoff := p.now().UTC().AddDate(0, 0, -p.retentionDays)

	removed := p.pruneRegular(dir, regular, cutoff)
	removed += p.pruneImportGroups(dir, groups, cutoff)

	return removed, nil
}

// PruneAll prunes every item type under the snapshot tree and returns the
// total number of files removed.
func (p *Pruner) PruneAll() (int, error) {
	snapshotsDir := filepath.Join(p.auditDir, "snapshots")
	entries, err := os.ReadDir(snapshotsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read snapshots directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		removed, err := p.PruneItemType(entry.Name())
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", entry.Name(), err)
		}
		total += removed
	}
	return total, nil
}

// pruneRegular walks regular snapshots newest-first. The first
// MinRegularSnapshots are always kept; beyond the floor, entries older than
// the cutoff are deleted. An unparsable timestamp is never pruned and
// counts toward the kept quota.
func (p *Pruner) pruneRegular(dir string, names []string, cutoff time.Time) int {
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	removed := 0
	kept := 0
	for _, name := range names {
		ts, err := model.ParseFilenameTime(name)
		if err != nil {
			p.log.WithField("file", name).Warnf("unparsable snapshot timestamp, keeping: %v", err)
			kept++
			continue
		}
		if kept < MinRegularSnapshots {
			kept++
			continue
		}
		if ts.Before(cutoff) {
			removed += p.removeFile(filepath.Join(dir, name))
			continue
		}
		kept++
	}
	return removed
}

// pruneImportGroups walks import triples newest-first by their shared
// timestamp, keeping or deleting all files in a group together.
func (p *Pruner) pruneImportGroups(dir string, groups map[string][]string, cutoff time.Time) int {
	keys := lo.Keys(groups)
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	removed := 0
	kept := 0
	for _, key := range keys {
		ts, err := model.ParseTimestampID(key)
		if err != nil {
			p.log.WithField("group", key).Warnf("unparsable import-set timestamp, keeping: %v", err)
			kept++
			continue
		}
		if kept < MinImportSets {
			kept++
			continue
		}
		if ts.Before(cutoff) {
			for _, name := range groups[key] {
				removed += p.removeFile(filepath.Join(dir, name))
			}
			continue
		}
		kept++
	}
	return removed
}

// removeFile deletes one snapshot file, returning 1 on success. Deletion
// failures are logged and skipped so one stuck file cannot wedge the walk.
func (p *Pruner) removeFile(path string) int {
	if err := os.Remove(path); err != nil {
		p.log.WithField("path", path).Warnf("failed to delete snapshot: %v", err)
		return 0
	}
	return 1
}
