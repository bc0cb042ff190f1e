package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "file" {
		t.Errorf("expected default backend file, got %s", cfg.Store.Backend)
	}
	if cfg.Store.Path != "agents.json" {
		t.Errorf("expected default store path agents.json, got %s", cfg.Store.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("expected default fetch timeout 30s, got %s", cfg.Fetch.Timeout)
	}
	if cfg.MCP.Enabled {
		t.Error("expected mcp disabled by default")
	}
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("AGENTDIR_STORE_BACKEND", "sqlite")
	defer os.Unsetenv("AGENTDIR_STORE_BACKEND")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected backend sqlite from env, got %s", cfg.Store.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
store:
  backend: "sqlite"
  path: "registry.db"
log:
  level: "debug"
  format: "json"
mcp:
  enabled: true
  transport: "http"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.Path != "registry.db" {
		t.Errorf("store config not loaded: %+v", cfg.Store)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log config not loaded: %+v", cfg.Log)
	}
	if !cfg.MCP.Enabled || cfg.MCP.Transport != "http" {
		t.Errorf("mcp config not loaded: %+v", cfg.MCP)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}
