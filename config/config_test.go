package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "8080" || cfg.Store.MemoryCap != 1000 || cfg.Log.Level != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.HasClickHouse() || cfg.HasPostgres() {
		t.Error("no backends should be configured by default")
	}
}

func TestLoadTOMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
port = "9090"

[clickhouse]
host = "ch.internal"
port = 9000
database = "analytics"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7070")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("environment should override the file, port = %q", cfg.Server.Port)
	}
	if !cfg.HasClickHouse() {
		t.Errorf("clickhouse config not read: %+v", cfg.ClickHouse)
	}
}
