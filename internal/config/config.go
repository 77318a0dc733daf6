// Package config loads the groovylsp.toml project manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"groovylsp/internal/compiler"
)

const manifestName = "groovylsp.toml"

// Config is the full tool configuration with defaults applied.
type Config struct {
	Compiler    CompilerConfig    `toml:"compiler"`
	Cache       CacheConfig       `toml:"cache"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Index       IndexConfig       `toml:"index"`
}

// CompilerConfig mirrors the enumerated compiler options.
type CompilerConfig struct {
	SourceEncoding   string   `toml:"source_encoding"`
	TargetVersion    string   `toml:"target_version"`
	Classpath        []string `toml:"classpath"`
	ScriptBaseClass  string   `toml:"script_base_class"`
	ScriptExtensions []string `toml:"script_extensions"`
	StaticTypeCheck  bool     `toml:"static_type_check"`
}

// CacheConfig bounds the compilation cache.
type CacheConfig struct {
	MaxSize   int   `toml:"max_size"`
	TtlMillis int64 `toml:"ttl_millis"`
}

// DiagnosticsConfig tunes the debounce pipeline.
type DiagnosticsConfig struct {
	DebounceDelayMs int64 `toml:"debounce_delay_ms"`
	MaxDiagnostics  int   `toml:"max_diagnostics"`
}

// IndexConfig locates the persisted symbol store.
type IndexConfig struct {
	StorePath string `toml:"store_path"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Cache:       CacheConfig{MaxSize: 1000, TtlMillis: 1_800_000},
		Diagnostics: DiagnosticsConfig{DebounceDelayMs: 300, MaxDiagnostics: 100},
	}
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TtlMillis) * time.Millisecond
}

// DebounceDelay returns the debounce delay as a duration.
func (c DiagnosticsConfig) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceDelayMs) * time.Millisecond
}

// CompilerConfig merges the manifest's compiler section over the built-in
// defaults.
func (c Config) CompilerConfig() compiler.Config {
	out := compiler.DefaultConfig()
	if c.Compiler.SourceEncoding != "" {
		out.SourceEncoding = c.Compiler.SourceEncoding
	}
	if c.Compiler.TargetVersion != "" {
		out.TargetVersion = c.Compiler.TargetVersion
	}
	if len(c.Compiler.Classpath) > 0 {
		out = out.WithClasspath(c.Compiler.Classpath...)
	}
	if c.Compiler.ScriptBaseClass != "" {
		out.ScriptBaseClass = c.Compiler.ScriptBaseClass
	}
	if len(c.Compiler.ScriptExtensions) > 0 {
		out.ScriptExtensions = c.Compiler.ScriptExtensions
	}
	out.StaticTypeCheck = c.Compiler.StaticTypeCheck
	return out
}

// Load reads the manifest at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if cfg.Cache.MaxSize <= 0 {
		return Config{}, fmt.Errorf("%s: cache.max_size must be positive", path)
	}
	if cfg.Diagnostics.DebounceDelayMs < 0 {
		return Config{}, fmt.Errorf("%s: diagnostics.debounce_delay_ms must not be negative", path)
	}
	return cfg, nil
}

// Find walks up from startDir looking for the manifest. Returns the loaded
// config, or defaults when no manifest exists.
func Find(startDir string) (Config, string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			if err != nil {
				return Config{}, candidate, err
			}
			return cfg, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}
		dir = parent
	}
}
