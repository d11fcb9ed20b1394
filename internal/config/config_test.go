package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
lark:
  app_id: "cli_test"
  app_secret: "secret"
directory:
  operator_id: "ou_director"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/taskline.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Minute, cfg.Tracker.Interval)
	assert.Equal(t, 30*24*time.Hour, cfg.Purge.Grace)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "configs/departments.json", cfg.Directory.Path)
}

func TestLoad_MissingLarkCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
directory:
  operator_id: "ou_director"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lark.app_id")
}

func TestLoad_TrackerTokenRequiresProject(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
tracker:
  token: "tok"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracker.project_id")
}
