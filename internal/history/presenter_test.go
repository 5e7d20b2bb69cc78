package history_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsync-project/confsync/internal/diff"
	"github.com/confsync-project/confsync/internal/history"
	"github.com/confsync-project/confsync/internal/snapshot"
	"github.com/confsync-project/confsync/pkg/errclass"
	"github.com/confsync-project/confsync/pkg/model"
)

func newTestPresenter(t *testing.T) (*history.Presenter, *snapshot.Store) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	// Long retention so fixed historical timestamps survive the write-time prune.
	store := snapshot.NewStore(t.TempDir(), 36500, log)
	return history.NewPresenter(store, diff.NewEngine(), log), store
}

func storeAt(t *testing.T, store *snapshot.Store, day int, doc any) {
	ts := time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return ts })
	_, err := store.Store("roles", doc, "")
	require.NoError(t, err)
}

func storeImport(t *testing.T, store *snapshot.Store, day int, suffix string, doc any) {
	ts := time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
	_, err := store.Store("roles", doc, model.NewTimestampID(ts)+suffix)
	require.NoError(t, err)
}

func TestTimeMachine_NotEnoughSnapshots(t *testing.T) {
	presenter, store := newTestPresenter(t)

	_, err := presenter.TimeMachine("roles", history.TimeMachineOptions{})
	assert.ErrorIs(t, err, errclass.ErrNotEnoughSnapshots)

	storeAt(t, store, 1, map[string]any{"v": 1})
	_, err = presenter.TimeMachine("roles", history.TimeMachineOptions{})
	assert.ErrorIs(t, err, errclass.ErrNotEnoughSnapshots)
}

func TestTimeMachine_ConsecutiveSteps(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeAt(t, store, 1, map[string]any{"v": 1})
	storeAt(t, store, 2, map[string]any{"v": 2})
	storeAt(t, store, 3, map[string]any{"v": 3})

	steps, err := presenter.TimeMachine("roles", history.TimeMachineOptions{})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "2024-03-01T12-00-00-000Z_roles.json", steps[0].FromID)
	assert.Equal(t, "2024-03-02T12-00-00-000Z_roles.json", steps[0].ToID)
	assert.Equal(t, "2024-03-02T12-00-00-000Z_roles.json", steps[1].FromID)
	assert.Equal(t, "2024-03-03T12-00-00-000Z_roles.json", steps[1].ToID)

	assert.True(t, steps[0].Report.HasChanges())
	assert.Equal(t, 1, steps[0].Report.AddedLines)
	assert.Equal(t, 1, steps[0].Report.RemovedLines)
}

func TestTimeMachine_LimitWindowsNewest(t *testing.T) {
	presenter, store := newTestPresenter(t)

	for day := 1; day <= 10; day++ {
		storeAt(t, store, day, map[string]any{"v": day})
	}

	steps, err := presenter.TimeMachine("roles", history.TimeMachineOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "2024-03-07T12-00-00-000Z_roles.json", steps[0].FromID)
	assert.Equal(t, "2024-03-10T12-00-00-000Z_roles.json", steps[2].ToID)
}

func TestTimeMachine_DefaultLimit(t *testing.T) {
	presenter, store := newTestPresenter(t)

	for day := 1; day <= 10; day++ {
		storeAt(t, store, day, map[string]any{"v": day})
	}

	steps, err := presenter.TimeMachine("roles", history.TimeMachineOptions{})
	require.NoError(t, err)
	assert.Len(t, steps, history.DefaultTimeMachineLimit)
}

func TestTimeMachine_SkipsImportFiles(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeAt(t, store, 1, map[string]any{"v": 1})
	storeImport(t, store, 2, model.ImportLocalSuffix, map[string]any{"v": 99})
	storeImport(t, store, 2, model.ImportRemoteBeforeSuffix, map[string]any{"v": 98})
	storeAt(t, store, 3, map[string]any{"v": 3})

	steps, err := presenter.TimeMachine("roles", history.TimeMachineOptions{})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "2024-03-01T12-00-00-000Z_roles.json", steps[0].FromID)
	assert.Equal(t, "2024-03-03T12-00-00-000Z_roles.json", steps[0].ToID)
}

func TestTimeMachine_StartTime(t *testing.T) {
	presenter, store := newTestPresenter(t)

	for day := 1; day <= 6; day++ {
		storeAt(t, store, day, map[string]any{"v": day})
	}

	steps, err := presenter.TimeMachine("roles", history.TimeMachineOptions{
		StartTime: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "2024-03-04T12-00-00-000Z_roles.json", steps[0].FromID)
}

func TestLatestImportDiff_PreviewAndActual(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeImport(t, store, 1, model.ImportRemoteBeforeSuffix, map[string]any{"v": 1})
	storeImport(t, store, 1, model.ImportLocalSuffix, map[string]any{"v": 2})
	storeImport(t, store, 1, model.ImportRemoteAfterSuffix, map[string]any{"v": 2})

	result, err := presenter.LatestImportDiff("roles")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12-00-00-000Z", result.Timestamp)
	assert.False(t, result.DryRun)

	require.NotNil(t, result.Preview)
	assert.True(t, result.Preview.HasChanges())
	require.NotNil(t, result.Actual)
	assert.True(t, result.Actual.HasChanges())
}

func TestLatestImportDiff_DryRun(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeImport(t, store, 1, model.ImportRemoteBeforeSuffix, map[string]any{"v": 1})
	storeImport(t, store, 1, model.ImportLocalSuffix, map[string]any{"v": 2})

	result, err := presenter.LatestImportDiff("roles")
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Nil(t, result.Actual)
	require.NotNil(t, result.Preview)
	assert.True(t, result.Preview.HasChanges())
}

func TestLatestImportDiff_PicksNewestSet(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeImport(t, store, 1, model.ImportRemoteBeforeSuffix, map[string]any{"v": 1})
	storeImport(t, store, 1, model.ImportLocalSuffix, map[string]any{"v": 2})
	storeImport(t, store, 5, model.ImportRemoteBeforeSuffix, map[string]any{"v": 10})
	storeImport(t, store, 5, model.ImportLocalSuffix, map[string]any{"v": 20})

	result, err := presenter.LatestImportDiff("roles")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T12-00-00-000Z", result.Timestamp)
}

func TestLatestImportDiff_NoImports(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeAt(t, store, 1, map[string]any{"v": 1})

	_, err := presenter.LatestImportDiff("roles")
	assert.ErrorIs(t, err, errclass.ErrNotEnoughSnapshots)
}

func TestLatestImportDiff_IncompleteSet(t *testing.T) {
	presenter, store := newTestPresenter(t)

	storeImport(t, store, 1, model.ImportLocalSuffix, map[string]any{"v": 2})

	_, err := presenter.LatestImportDiff("roles")
	assert.ErrorIs(t, err, errclass.ErrImportSetIncomplete)
}
