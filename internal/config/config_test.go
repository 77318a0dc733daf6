package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Cache.MaxSize != 1000 {
		t.Fatalf("max size %d", cfg.Cache.MaxSize)
	}
	if cfg.Cache.TTL() != 30*time.Minute {
		t.Fatalf("ttl %s", cfg.Cache.TTL())
	}
	if cfg.Diagnostics.DebounceDelay() != 300*time.Millisecond {
		t.Fatalf("debounce %s", cfg.Diagnostics.DebounceDelay())
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groovylsp.toml")
	manifest := `
[cache]
max_size = 10
ttl_millis = 60000

[diagnostics]
debounce_delay_ms = 50

[compiler]
target_version = "21"
classpath = ["/lib/extra.jar"]
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cache.MaxSize != 10 || cfg.Cache.TTL() != time.Minute {
		t.Fatalf("cache: %+v", cfg.Cache)
	}
	if cfg.Diagnostics.DebounceDelayMs != 50 {
		t.Fatalf("diagnostics: %+v", cfg.Diagnostics)
	}
	cc := cfg.CompilerConfig()
	if cc.TargetVersion != "21" {
		t.Fatalf("target %q", cc.TargetVersion)
	}
	if len(cc.Classpath) != 1 || cc.Classpath[0] != "/lib/extra.jar" {
		t.Fatalf("classpath %v", cc.Classpath)
	}
	if cc.SourceEncoding != "UTF-8" {
		t.Fatalf("encoding default lost: %q", cc.SourceEncoding)
	}
}

func TestLoadRejectsBadCacheSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groovylsp.toml")
	if err := os.WriteFile(path, []byte("[cache]\nmax_size = -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "groovylsp.toml"), []byte("[cache]\nmax_size = 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, path, err := Find(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if path == "" || cfg.Cache.MaxSize != 7 {
		t.Fatalf("manifest not found: %q %+v", path, cfg.Cache)
	}
}

func TestFindFallsBackToDefaults(t *testing.T) {
	cfg, path, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if path != "" {
		t.Fatalf("unexpected manifest %q", path)
	}
	if cfg.Cache.MaxSize != 1000 {
		t.Fatalf("defaults not applied")
	}
}
