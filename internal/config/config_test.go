package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dstanley-scripts/datascript/internal/config"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := config.Default()
	if cfg.DefaultURI != want.DefaultURI || cfg.DefaultLimit != want.DefaultLimit || len(cfg.ModulePaths) != 0 {
		t.Errorf("expected default config, got %#v", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datascript.yaml")
	src := "modulePaths:\n  - ./lib\ndefaultURI: mongodb://localhost:27017\ndefaultLimit: 50\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultURI != "mongodb://localhost:27017" || cfg.DefaultLimit != 50 {
		t.Errorf("unexpected config: %#v", cfg)
	}
	if len(cfg.ModulePaths) != 1 || cfg.ModulePaths[0] != "./lib" {
		t.Errorf("unexpected module paths: %#v", cfg.ModulePaths)
	}
}

func TestLoadEnvOverridesDefaultURI(t *testing.T) {
	t.Setenv("DATASCRIPT_DEFAULT_URI", "mongodb://override:27017")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultURI != "mongodb://override:27017" {
		t.Errorf("expected env override, got %q", cfg.DefaultURI)
	}
}
