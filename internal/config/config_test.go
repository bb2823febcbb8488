package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
  prefixes: ["/tasks"]
store:
  driver: memory
  id_scheme: uuid
client:
  timeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %q", cfg.Server.Addr)
	}
	if !reflect.DeepEqual(cfg.Server.Prefixes, []string{"/tasks"}) {
		t.Errorf("expected prefixes [/tasks], got %v", cfg.Server.Prefixes)
	}
	if cfg.Store.Driver != "memory" || cfg.Store.IDScheme != "uuid" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Client.Timeout != 3*time.Second {
		t.Errorf("expected timeout 3s, got %v", cfg.Client.Timeout)
	}
	// untouched keys keep their defaults
	if cfg.Store.SQLitePath != DefaultConfig().Store.SQLitePath {
		t.Errorf("expected default sqlite path, got %q", cfg.Store.SQLitePath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TASKLIST_STORE_DRIVER", "memory")
	t.Setenv("TASKLIST_SERVER_PREFIXES", "/v1/tasks,/tasks")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("expected driver memory, got %q", cfg.Store.Driver)
	}
	if !reflect.DeepEqual(cfg.Server.Prefixes, []string{"/v1/tasks", "/tasks"}) {
		t.Errorf("unexpected prefixes: %v", cfg.Server.Prefixes)
	}
}

func TestLoad_PortEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("TASKLIST_SERVER_ADDR", "")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("expected addr :3000, got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: true},
		{name: "no prefixes", mutate: func(c *Config) { c.Server.Prefixes = nil }, wantErr: true},
		{name: "relative prefix", mutate: func(c *Config) { c.Server.Prefixes = []string{"tasks"} }, wantErr: true},
		{name: "trailing slash", mutate: func(c *Config) { c.Server.Prefixes = []string{"/tasks/"} }, wantErr: true},
		{name: "duplicate prefix", mutate: func(c *Config) { c.Server.Prefixes = []string{"/tasks", "/tasks"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "tasklist.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("expected written defaults to load back unchanged, got %+v", cfg)
	}
}
