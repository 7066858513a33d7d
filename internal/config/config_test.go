package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
input:
  dir: /data/taskdata
export:
  enabled: true
  compression: zstd
storage:
  backend: s3
  s3_bucket: exports
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv("TDD_CONFIG", path)
	t.Setenv("TDD_STORAGE_S3_BUCKET", "overridden")

	cfg := MustLoad()

	assert.Equal(t, "/data/taskdata", cfg.Input.Dir)
	assert.True(t, cfg.Export.Enabled)
	assert.Equal(t, "zstd", cfg.Export.Compression)
	assert.Equal(t, "s3", cfg.Storage.Backend)
	assert.Equal(t, "overridden", cfg.Storage.S3Bucket)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched defaults survive.
	assert.Equal(t, "timelogs/", cfg.Storage.Prefix)
	assert.Equal(t, "taskdata", cfg.Catalog.Namespace)
}

func TestMustLoad_EnvOnly(t *testing.T) {
	t.Setenv("TDD_CONFIG", "")
	t.Setenv("TDD_INPUT_DIR", "/mnt/usb/TASKDATA")
	t.Setenv("TDD_METRICS_ENABLED", "true")

	cfg := MustLoad()

	assert.Equal(t, "/mnt/usb/TASKDATA", cfg.Input.Dir)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.Equal(t, "local", cfg.Storage.Backend)
}
