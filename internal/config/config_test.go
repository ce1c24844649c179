package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestLoad(t *testing.T) {
	content := `
server:
  listen_addr: ":9000"

api:
  base_url: "http://localhost:3000/api"
  timeout: 3s
  requests_per_second: 2.5
  burst: 4

cache:
  enabled: true
  memory_entries: 64
  ttl: 1m
  path: "/tmp/multiverse-cache.db"

session:
  cookie_name: "mv"
  max_sessions: 10

metrics:
  enabled: true
  allowed_ips:
    - "127.0.0.1"

ui:
  default_language: "pt-BR"

logging:
  level: "debug"
  format: "text"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":9000" {
		t.Errorf("Server.ListenAddr = %v, want :9000", cfg.Server.ListenAddr)
	}
	if cfg.API.BaseURL != "http://localhost:3000/api" {
		t.Errorf("API.BaseURL = %v", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Errorf("API.Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.API.RequestsPerSecond != 2.5 || cfg.API.Burst != 4 {
		t.Errorf("API rate = %v/%v", cfg.API.RequestsPerSecond, cfg.API.Burst)
	}
	if !cfg.PersistentCache() {
		t.Error("PersistentCache() = false, want true")
	}
	if cfg.Cache.TTL != time.Minute || cfg.Cache.MemoryEntries != 64 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Session.CookieName != "mv" || cfg.Session.MaxSessions != 10 {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want default 2h", cfg.Session.TTL)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" || len(cfg.Metrics.AllowedIPs) != 1 {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.UI.DefaultLanguage != "pt-BR" {
		t.Errorf("UI.DefaultLanguage = %v, want pt-BR", cfg.UI.DefaultLanguage)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ListenAddr != ":8090" {
		t.Errorf("Server.ListenAddr = %v, want :8090", cfg.Server.ListenAddr)
	}
	if cfg.API.BaseURL != "https://rickandmortyapi.com/api" {
		t.Errorf("API.BaseURL = %v", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Cache.Enabled || cfg.PersistentCache() {
		t.Error("cache enabled by default")
	}
	if cfg.Session.CookieName != "multiverse_session" {
		t.Errorf("Session.CookieName = %v", cfg.Session.CookieName)
	}
	if cfg.UI.DefaultLanguage != "en-US" {
		t.Errorf("UI.DefaultLanguage = %v, want en-US", cfg.UI.DefaultLanguage)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.HasTLS() {
		t.Error("HasTLS() = true, want false")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, true},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://example.com" }, true},
		{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -1 }, true},
		{"negative memory entries", func(c *Config) { c.Cache.MemoryEntries = -1 }, true},
		{"no sessions", func(c *Config) { c.Session.MaxSessions = 0 }, true},
		{"tls without cert", func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, KeyFile: "k"} }, true},
		{"tls without key", func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c"} }, true},
		{"tls complete", func(c *Config) { c.Server.TLS = TLSConfig{Enabled: true, CertFile: "c", KeyFile: "k"} }, false},
		{"invalid log level", func(c *Config) { c.Logging.Level = "invalid" }, true},
		{"invalid log format", func(c *Config) { c.Logging.Format = "invalid" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() expected error for nonexistent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, `invalid: yaml: content: [`))
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "logging:\n  level: loud\n"))
	if err == nil {
		t.Error("Load() expected error for invalid logging level")
	}
}
