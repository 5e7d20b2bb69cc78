package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confsync-project/confsync/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	t.Setenv(config.EnvAuditDir, "")
	t.Setenv(config.EnvRetentionDays, "")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "audit", cfg.ResolveAuditDir())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "audit_dir: /var/lib/confsync/audit\nretention_days: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "confsync.yaml"), []byte(yaml), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.Equal(t, "/var/lib/confsync/audit", cfg.ResolveAuditDir())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.DefaultRetentionDays, cfg.RetentionDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := "retention_days: 7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "confsync.yaml"), []byte(yaml), 0644))

	t.Setenv(config.EnvAuditDir, "/tmp/audit-override")
	t.Setenv(config.EnvRetentionDays, "90")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, "/tmp/audit-override", cfg.ResolveAuditDir())
}

func TestLoad_EnvConfigPath(t *testing.T) {
	dir := t.TempDir()
	yaml := "retention_days: 14\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "confsync.yaml"), []byte(yaml), 0644))

	t.Setenv(config.EnvConfigPath, dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.RetentionDays)
	assert.Equal(t, filepath.Join(dir, "audit"), cfg.ResolveAuditDir())
}

func TestLoad_BadRetentionEnv(t *testing.T) {
	t.Setenv(config.EnvRetentionDays, "soon")
	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_NegativeRetention(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "confsync.yaml"), []byte("retention_days: -1\n"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestResolveAuditDir_Precedence(t *testing.T) {
	cfg := &config.Config{AuditDir: "/explicit", ConfigPath: "/cfg"}
	assert.Equal(t, "/explicit", cfg.ResolveAuditDir())

	cfg = &config.Config{ConfigPath: "/cfg"}
	assert.Equal(t, filepath.Join("/cfg", "audit"), cfg.ResolveAuditDir())

	cfg = &config.Config{}
	assert.Equal(t, "audit", cfg.ResolveAuditDir())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RetentionDays = 45
	require.NoError(t, config.Save(dir, cfg))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 45, loaded.RetentionDays)
}
