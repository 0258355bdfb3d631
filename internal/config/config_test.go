package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/varmo/hwstress/internal/config"
	"codeberg.org/varmo/hwstress/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hwstress.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
interval = 0.5
cpu_ceiling = 70.0
memory_ceiling = 75.0
persist = true
database = "/path/to/runs.db"
log_level = "debug"
`)
	t.Setenv("HWSTRESS_CONFIG", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.InDelta(t, 0.5, cfg.Interval, 0.001)
	assert.InDelta(t, 70.0, cfg.CPUCeiling, 0.001)
	assert.InDelta(t, 75.0, cfg.MemoryCeiling, 0.001)
	assert.True(t, cfg.Persist)
	assert.Equal(t, "/path/to/runs.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HWSTRESS_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cfg.Interval, 0.001)
	assert.InDelta(t, 80.0, cfg.CPUCeiling, 0.001)
	assert.InDelta(t, 80.0, cfg.MemoryCeiling, 0.001)
	assert.False(t, cfg.Persist)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
}

func TestLoadInvalidFormat(t *testing.T) {
	path := writeConfigFile(t, "this is not valid TOML\n")
	t.Setenv("HWSTRESS_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfigFile(t, `log_level = "loud"`)
	t.Setenv("HWSTRESS_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestLoadInvalidInterval(t *testing.T) {
	path := writeConfigFile(t, `interval = -1.0`)
	t.Setenv("HWSTRESS_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestLoadInvalidCeiling(t *testing.T) {
	path := writeConfigFile(t, `cpu_ceiling = 150.0`)
	t.Setenv("HWSTRESS_CONFIG", path)

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidCeiling))
}
