// Package history builds the read-side views over snapshot history: the
// time-machine walk and the latest-import diff.
package history

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/confsync-project/confsync/internal/diff"
	"github.com/confsync-project/confsync/internal/snapshot"
	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/model"
)

// DefaultTimeMachineLimit is the number of consecutive diffs shown when the
// caller does not ask for more.
const DefaultTimeMachineLimit = 5

// Step is one diff between two consecutive regular snapshots.
type Step struct {
	FromID string       `json:"fromId"`
	ToID   string       `json:"toId"`
	Report *diff.Report `json:"report"`
}

// ImportDiff is the two-sided view of the most recent import: what the
// import would change (preview) and what it actually changed (actual,
// absent for dry runs).
type ImportDiff struct {
	Timestamp string       `json:"timestamp"`
	Preview   *diff.Report `json:"preview"`
	Actual    *diff.Report `json:"actual,omitempty"`
	DryRun    bool         `json:"dryRun"`
}

// TimeMachineOptions tune the chronological walk.
type TimeMachineOptions struct {
	Limit     int
	StartTime time.Time
}

// Presenter renders snapshot history via the diff engine.
type Presenter struct {
	store  *snapshot.Store
	engine *diff.Engine
	log    logrus.FieldLogger
}

// NewPresenter creates a history presenter.
func NewPresenter(store *snapshot.Store, engine *diff.Engine, log logrus.FieldLogger) *Presenter {
	return &Presenter{store: store, engine: engine, log: log}
}

// TimeMachine walks regular snapshots chronologically and diffs each
// consecutive pair among the last limit+1, yielding up to limit diffs.
// Fewer than two qualifying snapshots is reported as ErrNotEnoughSnapshots.
func (p *Presenter) TimeMachine(itemType string, opts TimeMachineOptions) ([]Step, error) {
	infos, err := p.store.List(itemType)
	if err != nil {
		return nil, err
	}

	regular := lo.Reject(infos, func(info model.SnapshotInfo, _ int) bool {
		return model.IsImportFile(info.ID)
	})

	if !opts.StartTime.IsZero() {
		regular = lo.Filter(regular, func(info model.SnapshotInfo, _ int) bool {
			ts, err := model.ParseFilenameTime(info.ID)
			if err != nil {
				return false
			}
			return !ts.Before(opts.StartTime)
		})
	}

	if len(regular) < 2 {
		return nil, errclass.ErrNotEnoughSnapshots.WithMessagef(
			"need at least 2 snapshots for %s, have %d", itemType, len(regular))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultTimeMachineLimit
	}
	if window := limit + 1; len(regular) > window {
		regular = regular[len(regular)-window:]
	}

	steps := make([]Step, 0, len(regular)-1)
	for i := 0; i+1 < len(regular); i++ {
		report, err := p.engine.Diff(regular[i].Path, regular[i+1].Path)
		if err != nil {
			return nil, fmt.Errorf("diff %s -> %s: %w", regular[i].ID, regular[i+1].ID, err)
		}
		steps = append(steps, Step{FromID: regular[i].ID, ToID: regular[i+1].ID, Report: report})
	}
	return steps, nil
}

// LatestImportDiff locates the most recent import triple for the item type
// and produces the preview (before -> local) and, when the import actually
// ran, the actual (before -> after) diff.
func (p *Presenter) LatestImportDiff(itemType string) (*ImportDiff, error) {
	infos, err := p.store.List(itemType)
	if err != nil {
		return nil, err
	}

	importFiles := lo.Filter(infos, func(info model.SnapshotInfo, _ int) bool {
		return model.IsImportFile(info.ID)
	})
	if len(importFiles) == 0 {
		return nil, errclass.ErrNotEnoughSnapshots.WithMessagef("no import snapshots for %s", itemType)
	}

	groups := lo.GroupBy(importFiles, func(info model.SnapshotInfo) string {
		return model.ImportGroupKey(info.ID)
	})

	keys := lo.Keys(groups)
	sort.Strings(keys)
	latest := keys[len(keys)-1]

	var localPath, beforePath, afterPath string
	for _, info := range groups[latest] {
		base := strings.TrimSuffix(info.ID, ".json")
		switch {
		case strings.HasSuffix(base, model.ImportRemoteBeforeSuffix):
			beforePath = info.Path
		case strings.HasSuffix(base, model.ImportRemoteAfterSuffix):
			afterPath = info.Path
		case strings.HasSuffix(base, model.ImportLocalSuffix):
			localPath = info.Path
		}
	}
	if localPath == "" || beforePath == "" {
		return nil, errclass.ErrImportSetIncomplete.WithMessagef(
			"import set %s for %s is missing its local or before snapshot", latest, itemType)
	}

	preview, err := p.engine.Diff(beforePath, localPath)
	if err != nil {
		return nil, fmt.Errorf("preview diff: %w", err)
	}

	result := &ImportDiff{Timestamp: latest, Preview: preview, DryRun: afterPath == ""}
	if afterPath != "" {
		actual, err := p.engine.Diff(beforePath, afterPath)
		if err != nil {
			return nil, fmt.Errorf("actual diff: %w", err)
		}
		result.Actual = actual
	}
	return result, nil
}
