package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	prev := _loaded
	t.Cleanup(func() { _loaded = prev })
	_loaded = nil
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskmanager.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDefault(t *testing.T) {
	resetConfig(t)
	LoadDefault()

	assert.Equal(t, 8000, Http().Port)
	assert.Equal(t, BackendFile, Storage().Backend)
	assert.Equal(t, ".", Storage().File.Dir)
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"https://task-manager-frontend.vercel.app",
	}, Cors().AllowOrigins)
	assert.Equal(t, 3600, Cors().MaxAgeSeconds)
	assert.NoError(t, Get().Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Run("MergesOverDefaults", func(t *testing.T) {
		resetConfig(t)
		path := writeConfigFile(t, `
common:
  http:
    port: 9090
  storage:
    backend: s3
    s3:
      bucket: my-tasks
      prefix: prod/
`)

		require.NoError(t, LoadFromFile(path))

		assert.Equal(t, 9090, Http().Port)
		assert.Equal(t, "0.0.0.0", Http().Host)
		assert.Equal(t, BackendS3, Storage().Backend)
		assert.Equal(t, "my-tasks", Storage().S3.Bucket)
		assert.Equal(t, "prod/", Storage().S3.Prefix)
		assert.Equal(t, "us-east-1", Storage().S3.Region)
		assert.Equal(t, "info", Logger().Level)
	})

	t.Run("MissingFile", func(t *testing.T) {
		resetConfig(t)
		err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
		assert.Nil(t, _loaded)
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		resetConfig(t)
		err := LoadFromFile(writeConfigFile(t, "common: [not a map"))
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("UnknownBackend", func(t *testing.T) {
		resetConfig(t)
		err := LoadFromFile(writeConfigFile(t, "common:\n  storage:\n    backend: floppy\n"))
		assert.ErrorContains(t, err, "unknown storage backend")
	})
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	resetConfig(t)
	t.Setenv("TASKMANAGER_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("TASKMANAGER_HTTP_PORT", "8123")
	t.Setenv("TASKMANAGER_STORAGE_BACKEND", "postgres")
	t.Setenv("TASKMANAGER_DATA_DIR", "/var/lib/taskmanager")
	t.Setenv("TASKMANAGER_CORS_ORIGINS", "http://a.example, ,http://b.example")
	t.Setenv("TASKMANAGER_DB_HOST", "db")
	t.Setenv("TASKMANAGER_DB_PASSWORD", "p@ss word")
	t.Setenv("TASKMANAGER_LOG_LEVEL", "debug")

	Load()

	assert.Equal(t, 8123, Http().Port)
	assert.Equal(t, BackendPostgres, Storage().Backend)
	assert.Equal(t, "/var/lib/taskmanager", Storage().File.Dir)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, Cors().AllowOrigins)
	assert.Equal(t, "debug", Logger().Level)
	assert.Equal(t, "postgres://postgres:p%40ss+word@db:5432/taskmanager?sslmode=disable", Storage().Postgres.DSN())
}

func TestInvalidPortOverrideIgnored(t *testing.T) {
	resetConfig(t)
	LoadDefault()
	t.Setenv("TASKMANAGER_HTTP_PORT", "not-a-number")

	ApplyEnvOverrides()

	assert.Equal(t, 8000, Http().Port)
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Common.Http.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Common.Storage.Backend = ""
	assert.Error(t, cfg.Validate())
}

func TestGettersPanicBeforeLoad(t *testing.T) {
	resetConfig(t)

	assert.Panics(t, func() { Logger() })
	assert.Panics(t, func() { Http() })
	assert.Panics(t, func() { Cors() })
	assert.Panics(t, func() { Storage() })
	assert.Panics(t, func() { Get() })
}
