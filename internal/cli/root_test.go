package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsync-project/confsync/pkg/confsync"
)

func executeCommand(args ...string) (stdout string, err error) {
	// Capture os.Stdout since commands print with fmt.Printf directly
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	rootCmd.SetArgs(args)
	err = rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), err
}

func TestRootCommand_Help(t *testing.T) {
	stdout, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "audit")
	assert.Contains(t, stdout, "snapshot")
}

func TestResolveSnapshot(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	client, err := confsync.New(confsync.Options{AuditDir: t.TempDir(), Logger: log})
	require.NoError(t, err)

	_, err = resolveSnapshot(client, "roles", "")
	assert.Error(t, err)

	pathA, err := client.StoreSnapshot("roles", map[string]any{"v": 1})
	require.NoError(t, err)

	// Empty id resolves to the newest snapshot
	resolved, err := resolveSnapshot(client, "roles", "")
	require.NoError(t, err)
	assert.Equal(t, pathA, resolved)

	infos, err := client.ListSnapshots("roles")
	require.NoError(t, err)
	require.Len(t, infos, 1)

	// Exact id and unique prefix both resolve
	resolved, err = resolveSnapshot(client, "roles", infos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, pathA, resolved)

	resolved, err = resolveSnapshot(client, "roles", infos[0].ID[:10])
	require.NoError(t, err)
	assert.Equal(t, pathA, resolved)

	_, err = resolveSnapshot(client, "roles", "zzz")
	assert.Error(t, err)
}
