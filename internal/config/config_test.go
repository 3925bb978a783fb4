package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queryward.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":8080" || cfg.SchemaDir != "." || cfg.Timeout.Std() != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Metrics || cfg.ServiceName != "queryward" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
listen: ":9090"
schema_dir: ./schemas
watch: true
timeout: 3s
cors_origins:
  - "*"
otlp_endpoint: localhost:4317
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" || cfg.SchemaDir != "./schemas" || !cfg.Watch {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout.Std() != 3*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.OTLPEndpoint != "localhost:4317" {
		t.Fatalf("otlp = %q", cfg.OTLPEndpoint)
	}
	// Untouched keys keep their defaults.
	if !cfg.Metrics || cfg.ServiceName != "queryward" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "listne: \":9090\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeFile(t, "listen: \"\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty listen address")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
