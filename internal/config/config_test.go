package config

import (
	"log/slog"
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

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
api:
  host: 0.0.0.0
  port: 9090
storage:
  path: /var/lib/golf/golf.db
log:
  level: debug
  format: json
constructions:
  max_num_groups: 10
  run_on_start: true
  contact_email: maintainer@example.org
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.API.Addr())
	assert.True(t, cfg.API.AccessLog, "unset keys keep their defaults")
	assert.Equal(t, "/var/lib/golf/golf.db", cfg.Storage.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Constructions.MaxNumGroups)
	assert.Equal(t, 20, cfg.Constructions.MaxGroupSize)
	assert.True(t, cfg.Constructions.RunOnStart)
	assert.Equal(t, "maintainer@example.org", cfg.Constructions.ContactEmail)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "api:\n  port: 9090\n")
	t.Setenv("GOLF_STORAGE_PATH", "/tmp/other.db")
	t.Setenv("GOLF_API_HOST", "127.0.0.1")
	t.Setenv("GOLF_API_PORT", "7070")
	t.Setenv("GOLF_LOG_LEVEL", "warn")
	t.Setenv("GOLF_DEV", "true")
	t.Setenv("GOLF_CONSTRUCTIONS_CONTACT", "ops@example.org")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Storage.Path)
	assert.Equal(t, "127.0.0.1:7070", cfg.API.Addr())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Dev)
	assert.Equal(t, "ops@example.org", cfg.Constructions.ContactEmail)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "api: [unclosed"},
		{name: "bad port", content: "api:\n  port: 70000\n"},
		{name: "bad level", content: "log:\n  level: loud\n"},
		{name: "bad format", content: "log:\n  format: xml\n"},
		{name: "bad limits", content: "constructions:\n  max_group_size: 1\n"},
		{name: "bad env port", content: "", env: map[string]string{"GOLF_API_PORT": "eighty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
