package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: test-secret
vendors:
  fmp:
    apiKey: fmp-key
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Vendors.FMP.APIKey != "fmp-key" {
		t.Errorf("Vendors.FMP.APIKey = %q, want %q", cfg.Vendors.FMP.APIKey, "fmp-key")
	}
	if cfg.Vendors.TwelveData.URL != "https://api.twelvedata.com" {
		t.Errorf("Vendors.TwelveData.URL = %q", cfg.Vendors.TwelveData.URL)
	}
	if cfg.Auth.Provider != "parse" {
		t.Errorf("Auth.Provider = %q, want parse", cfg.Auth.Provider)
	}
	if cfg.Auth.AccessTokenDuration != 24*time.Hour {
		t.Errorf("Auth.AccessTokenDuration = %v, want 24h", cfg.Auth.AccessTokenDuration)
	}
	if cfg.Cache.QuoteTTL != 15*time.Second {
		t.Errorf("Cache.QuoteTTL = %v, want 15s", cfg.Cache.QuoteTTL)
	}
	if cfg.Directory.Limit != 5035 || cfg.Directory.MaxRetries != 3 {
		t.Errorf("Directory = %+v", cfg.Directory)
	}
	if cfg.Kafka.Topics["lookups"] != "finsight-lookups" {
		t.Errorf("Kafka.Topics[lookups] = %q", cfg.Kafka.Topics["lookups"])
	}
	if cfg.Dashboard.CookieName != "finsight_session" {
		t.Errorf("Dashboard.CookieName = %q", cfg.Dashboard.CookieName)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: test-secret
`)
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("AUTH_PROVIDER", "local")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Port != "9191" {
		t.Errorf("Server.Port = %q, want 9191", cfg.Server.Port)
	}
	if cfg.Auth.Provider != "local" {
		t.Errorf("Auth.Provider = %q, want local", cfg.Auth.Provider)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing jwt secret", "server:\n  port: \"8080\"\n"},
		{"unknown provider", "auth:\n  jwtSecret: s\n  provider: ldap\n"},
	}
	for _, tt := range tests {
		if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
			t.Errorf("%s: LoadConfig() succeeded, want error", tt.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig() on missing file succeeded, want error")
	}
}
