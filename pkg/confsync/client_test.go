package confsync_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsync-project/confsync/internal/audit"
	"github.com/confsync-project/confsync/internal/importer"
	"github.com/confsync-project/confsync/pkg/confsync"
	"github.com/confsync-project/confsync/pkg/model"
)

func newTestClient(t *testing.T) *confsync.Client {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	client, err := confsync.New(confsync.Options{
		AuditDir: t.TempDir(),
		Logger:   log,
	})
	require.NoError(t, err)
	return client
}

func TestClient_ExportThenHistory(t *testing.T) {
	client := newTestClient(t)

	for v := 1; v <= 3; v++ {
		_, err := client.RecordExport("roles", "acme", map[string]any{"v": v}, "scheduled export")
		require.NoError(t, err)
	}

	infos, err := client.ListSnapshots("roles")
	require.NoError(t, err)
	assert.Len(t, infos, 3)

	entries, err := client.AuditEntries(audit.Filter{Operation: model.OperationExport})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "scheduled export", entries[0].Message)
	assert.NotEmpty(t, entries[0].SnapshotFile)
}

func TestClient_ImportFlow(t *testing.T) {
	client := newTestClient(t)

	outcome, err := client.RunImport(context.Background(), confsync.ImportOptions{
		ItemType:    "roles",
		Manager:     "acme",
		LocalConfig: map[string]any{"v": "local"},
		FetchRemote: func(context.Context) (any, error) {
			return map[string]any{"v": "remote"}, nil
		},
		DoImport: func(context.Context) (*importer.Result, error) {
			return &importer.Result{Status: model.StatusSuccess}, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuccess, outcome.Status)

	result, err := client.LatestImportDiff("roles")
	require.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.True(t, result.Preview.HasChanges())
	require.NotNil(t, result.Actual)
}

func TestClient_DiffStoredSnapshots(t *testing.T) {
	client := newTestClient(t)

	pathA, err := client.StoreSnapshot("flows", map[string]any{"steps": 1})
	require.NoError(t, err)
	pathB, err := client.StoreSnapshot("flows", map[string]any{"steps": 2})
	require.NoError(t, err)

	report, err := client.Diff(pathA, pathB)
	require.NoError(t, err)
	assert.True(t, report.HasChanges())
}

func TestClient_DoctorOnFreshDir(t *testing.T) {
	client := newTestClient(t)

	result, err := client.Doctor()
	require.NoError(t, err)
	assert.True(t, result.Healthy)
}

func TestNew_ExplicitAuditDirWins(t *testing.T) {
	dir := t.TempDir()
	client, err := confsync.New(confsync.Options{AuditDir: dir})
	require.NoError(t, err)
	assert.Equal(t, dir, client.AuditDir())
}
