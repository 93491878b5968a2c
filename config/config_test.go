package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		cfg, err := Load(path, zerolog.Nop())
		require.NoError(t, err)
		if diff := cmp.Diff(Default(), cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLoadOverlay(t *testing.T) {
	path := writeConfig(t, `
line_cache_size: 50
complex_threshold: 0
interpreter: python3.12
log_level: debug
dictionaries:
  - extra.yaml
  - /etc/pys/shared.yaml
`)
	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	want := Default()
	want.LineCacheSize = 50
	want.ComplexThreshold = 0
	want.Interpreter = "python3.12"
	want.LogLevel = "debug"
	want.Dictionaries = []string{filepath.Join(filepath.Dir(path), "extra.yaml"), "/etc/pys/shared.yaml"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
	assert.Len(t, cfg.EngineOptions(), 3)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "line_cache_size: [\n"), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	_, err = Load(writeConfig(t, "tree_cache_size: 0\n"), zerolog.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		msg    string
	}{
		{"line cache", func(c *Config) { c.LineCacheSize = 0 }, "line_cache_size must be positive"},
		{"module cache", func(c *Config) { c.ModuleCacheSize = -1 }, "module_cache_size must be positive"},
		{"threshold", func(c *Config) { c.ComplexThreshold = -5 }, "complex_threshold"},
		{"interpreter", func(c *Config) { c.Interpreter = "" }, "interpreter is empty"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "invalid configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Dictionaries = []string{"/abs/extra.yaml"}
	data, err := cfg.YAML()
	require.NoError(t, err)

	got, err := Load(writeConfig(t, string(data)), zerolog.Nop())
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
