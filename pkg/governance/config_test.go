package governance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "v1", cfg.Version)
	assert.True(t, cfg.RuleEnabled("title"))
	assert.False(t, cfg.RuleEnabled("unreferenced-definition"))
	assert.Equal(t, SeverityError, cfg.SeverityFor("title", SeverityError))
	assert.Len(t, cfg.allowedSet(), len(DefaultAllowedFields))
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cip116-governance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`version: v1
rules:
  unreferenced-definition: true
severities:
  unreferenced-definition: warning
allowed_fields:
  - title
  - type
extra_allowed_fields:
  - deprecated
ignore_definitions:
  - Legacy
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.RuleEnabled("unreferenced-definition"))
	assert.Equal(t, SeverityWarning, cfg.SeverityFor("unreferenced-definition", SeverityInfo))
	assert.Len(t, cfg.allowedSet(), 3)
	assert.True(t, cfg.ignored("Legacy"))
	assert.False(t, cfg.ignored("Address"))

	fromDir, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, fromDir)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("severities:\n  title: fatal\n"), 0644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "invalid severity")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("rules: [\n"), 0644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)
}

func TestLoadConfigFromDir_Default(t *testing.T) {
	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules["title"] = false
	path := filepath.Join(t.TempDir(), ".cip116-governance.yml")

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, loaded.RuleEnabled("title"))
}
