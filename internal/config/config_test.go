package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, v, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, 5, cfg.UI.GridColumns)
	assert.Equal(t, 3, cfg.UI.GridRows)
	assert.True(t, cfg.EPG.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.EPG.RefreshTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Portal.URL)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
portal:
  url: http://portal.example:8080
  username: alice
  password: s3cret
ui:
  grid_columns: 4
logging:
  level: debug
`), 0o644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://portal.example:8080", cfg.Portal.URL)
	assert.Equal(t, "alice", cfg.Portal.Username)
	assert.Equal(t, 4, cfg.UI.GridColumns)
	// Unset keys keep defaults.
	assert.Equal(t, 3, cfg.UI.GridRows)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portal: [not: valid"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TELEVIEW_PORTAL_USERNAME", "from-env")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Portal.Username)
}
