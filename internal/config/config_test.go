package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8977", cfg.App.Listen)
	assert.Equal(t, "data/journal.db", cfg.Store.Path)
	assert.Equal(t, 100, cfg.Journal.ContractMultiplier)
	assert.Equal(t, 7, cfg.Journal.ExpiryWarningDays)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
  log_level: debug
  listen: ":9000"
store:
  path: /tmp/test-journal.db
journal:
  contract_multiplier: 1
  expiry_warning_days: 14
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9000", cfg.App.Listen)
	assert.Equal(t, "/tmp/test-journal.db", cfg.Store.Path)
	assert.Equal(t, 1, cfg.Journal.ContractMultiplier)
	assert.Equal(t, 14, cfg.Journal.ExpiryWarningDays)
}

func TestLoad_PartialFileKeepsRemainingDefaults(t *testing.T) {
	path := writeConfig(t, "journal:\n  contract_multiplier: 10\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Journal.ContractMultiplier)
	assert.Equal(t, 7, cfg.Journal.ExpiryWarningDays)
	assert.Equal(t, ":8977", cfg.App.Listen)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfig(t, `
app:
  listen: "no-port"
journal:
  contract_multiplier: -5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contract_multiplier")
	assert.Contains(t, err.Error(), "app.listen")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "app: [not a map\n")
	_, err := Load(path)
	assert.Error(t, err)
}
