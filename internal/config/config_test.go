package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "focusly", cfg.Auth.Issuer)
	assert.Equal(t, 30*time.Second, cfg.ReminderPollInterval())
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusly.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
storage:
  backend: sqlite
  sqlite_path: /var/lib/focusly/tasks.db
auth:
  jwt_secret: super-secret
  issuer: my-idp
reminders:
  poll_interval_seconds: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/focusly/tasks.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "super-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "my-idp", cfg.Auth.Issuer)
	assert.Equal(t, 10*time.Second, cfg.ReminderPollInterval())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusly.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	t.Setenv("FOCUSLY_ADDR", ":7070")
	t.Setenv("FOCUSLY_STORAGE_BACKEND", "memory")
	t.Setenv("FOCUSLY_REMINDER_POLL_SECONDS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.ReminderPollInterval())
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("FOCUSLY_STORAGE_BACKEND", "etcd")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_RejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusly.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
