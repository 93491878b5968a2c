// Package config holds the runtime settings of pys: cache sizes, the
// interpreter to run and extra dictionaries to layer on the built-in one.
//
// Settings come from Default, then an optional YAML file, then command line
// flags applied by the caller.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"go.trai.ch/zerr"

	"github.com/rubiojr/pys/engine"
	"github.com/rubiojr/pys/loader"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = zerr.New("invalid configuration")

type Config struct {
	LineCacheSize    int      `yaml:"line_cache_size"`
	TreeCacheSize    int      `yaml:"tree_cache_size"`
	ModuleCacheSize  int      `yaml:"module_cache_size"`
	ComplexThreshold int      `yaml:"complex_threshold"`
	Interpreter      string   `yaml:"interpreter"`
	LogLevel         string   `yaml:"log_level"`
	Debug            bool     `yaml:"debug"`
	Dictionaries     []string `yaml:"dictionaries"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LineCacheSize:    engine.DefaultLineCacheSize,
		TreeCacheSize:    engine.DefaultTreeCacheSize,
		ModuleCacheSize:  loader.DefaultModuleCacheSize,
		ComplexThreshold: engine.DefaultComplexThreshold,
		Interpreter:      "python3",
		LogLevel:         "warn",
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path or a missing file yields the defaults.
func Load(path string, log zerolog.Logger) (*Config, error) {
	cfg := Default()
	if err := cfg.readYAML(path, log); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) readYAML(path string, log zerolog.Logger) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- only loading a config file
	if os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("no configuration file found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}

	// dictionary paths are relative to the file that names them
	dir := filepath.Dir(path)
	for i, d := range cfg.Dictionaries {
		if !filepath.IsAbs(d) {
			cfg.Dictionaries[i] = filepath.Join(dir, d)
		}
	}

	log.Debug().Str("path", path).Msg("configuration loaded")
	return nil
}

// Validate rejects settings the engine cannot run with.
func (cfg *Config) Validate() error {
	sizes := []struct {
		key string
		val int
	}{
		{"line_cache_size", cfg.LineCacheSize},
		{"tree_cache_size", cfg.TreeCacheSize},
		{"module_cache_size", cfg.ModuleCacheSize},
	}
	for _, s := range sizes {
		if s.val <= 0 {
			return zerr.With(fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, s.key, s.val), "key", s.key)
		}
	}
	if cfg.ComplexThreshold < 0 {
		return zerr.With(fmt.Errorf("%w: complex_threshold must not be negative", ErrInvalidConfig), "key", "complex_threshold")
	}
	if cfg.Interpreter == "" {
		return zerr.With(fmt.Errorf("%w: interpreter is empty", ErrInvalidConfig), "key", "interpreter")
	}
	if _, err := cfg.Level(); err != nil {
		return zerr.With(fmt.Errorf("%w: %w", ErrInvalidConfig, err), "key", "log_level")
	}
	return nil
}

// Level parses LogLevel.
func (cfg *Config) Level() (zerolog.Level, error) {
	if cfg.LogLevel == "" {
		return zerolog.WarnLevel, nil
	}
	return zerolog.ParseLevel(cfg.LogLevel)
}

// EngineOptions returns the engine options these settings imply.
func (cfg *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLineCacheSize(cfg.LineCacheSize),
		engine.WithTreeCacheSize(cfg.TreeCacheSize),
		engine.WithComplexThreshold(cfg.ComplexThreshold),
	}
}

// YAML renders the settings in the file format Load reads.
func (cfg *Config) YAML() ([]byte, error) {
	return yaml.Marshal(cfg)
}
