package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkilian/tabular/pkg/table"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "key", cfg.Reshape.KeyName)
	assert.True(t, cfg.Engine.HashFallback)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max groups", func(c *Config) { c.Engine.MaxCompositeGroups = 0 }},
		{"negative threshold", func(c *Config) { c.Engine.ParallelThreshold = -1 }},
		{"no partitions", func(c *Config) { c.Engine.Partitions = 0 }},
		{"empty key name", func(c *Config) { c.Reshape.KeyName = "" }},
		{"same names", func(c *Config) { c.Reshape.ValueName = c.Reshape.KeyName }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
		{"long delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabular.yaml")
	data := []byte(`
engine:
  max_composite_groups: 1000
  hash_fallback: false
reshape:
  key_name: variable
logging:
  level: debug
  seq_flush_interval: 5s
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Engine.MaxCompositeGroups)
	assert.False(t, cfg.Engine.HashFallback)
	assert.Equal(t, "variable", cfg.Reshape.KeyName)
	assert.Equal(t, "value", cfg.Reshape.ValueName)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Logging.SeqFlushInterval)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabular.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"csv": {"delimiter": ";"}}`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "tabular.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TABULAR_MAX_COMPOSITE_GROUPS", "77")
	t.Setenv("TABULAR_HASH_FALLBACK", "0")
	t.Setenv("TABULAR_PARTITIONS", "3")
	t.Setenv("TABULAR_LOG_FORMAT", "json")
	t.Setenv("TABULAR_CSV_NULL", "NA")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)
	assert.Equal(t, 77, cfg.Engine.MaxCompositeGroups)
	assert.False(t, cfg.Engine.HashFallback)
	assert.Equal(t, 3, cfg.Engine.Partitions)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "NA", cfg.CSV.NullToken)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TABULAR_STACK_VALUE_NAME=amount\n"), 0644))
	t.Setenv("TABULAR_STACK_VALUE_NAME", "")
	os.Unsetenv("TABULAR_STACK_VALUE_NAME")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "absent.env")))
	cfg := DefaultConfig()
	LoadFromEnv(cfg)
	assert.Equal(t, "amount", cfg.Reshape.ValueName)
}

func TestTableOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Partitions = 5
	cfg.Reshape.KeyName = "k"

	o := table.ApplyOptions(cfg.TableOptions(slog.Default())...)
	assert.Equal(t, 5, o.Partitions)
	assert.Equal(t, "k", o.KeyName)
	assert.Equal(t, cfg.Engine.MaxCompositeGroups, o.MaxCompositeGroups)
}
