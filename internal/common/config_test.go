package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Environment != "development" {
		t.Errorf("environment = %q, want development", config.Environment)
	}
	if config.Exchange != "NSE" {
		t.Errorf("exchange = %q, want NSE", config.Exchange)
	}
	if config.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", config.Server.Port)
	}
	if config.Clients.EODHD.BaseURL != "https://eodhd.com/api" {
		t.Errorf("eodhd base url = %q", config.Clients.EODHD.BaseURL)
	}
	if config.IsProduction() {
		t.Error("default config reports production")
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stockreturns.toml")

	content := `
environment = "production"
exchange = "US"

[server]
port = 9090

[clients.eodhd]
api_key = "file-key"
timeout = "10s"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if !config.IsProduction() {
		t.Error("config does not report production")
	}
	if config.Exchange != "US" {
		t.Errorf("exchange = %q, want US", config.Exchange)
	}
	if config.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", config.Server.Port)
	}
	if config.Clients.EODHD.APIKey != "file-key" {
		t.Errorf("api key = %q, want file-key", config.Clients.EODHD.APIKey)
	}
	if config.Clients.EODHD.GetTimeout() != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", config.Clients.EODHD.GetTimeout())
	}
	// Untouched fields keep their defaults.
	if config.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default 0.0.0.0", config.Server.Host)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", config.Server.Port)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STOCKRETURNS_ENV", "production")
	t.Setenv("STOCKRETURNS_PORT", "7070")
	t.Setenv("STOCKRETURNS_EODHD_API_KEY", "env-key")
	t.Setenv("STOCKRETURNS_EXCHANGE", "LSE")
	t.Setenv("STOCKRETURNS_DATA_PATH", "/var/lib/stockreturns")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if !config.IsProduction() {
		t.Error("env override did not set production")
	}
	if config.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", config.Server.Port)
	}
	if config.Clients.EODHD.APIKey != "env-key" {
		t.Errorf("api key = %q, want env-key", config.Clients.EODHD.APIKey)
	}
	if config.Exchange != "LSE" {
		t.Errorf("exchange = %q, want LSE", config.Exchange)
	}
	if config.Storage.Market.Path != filepath.Join("/var/lib/stockreturns", "market") {
		t.Errorf("market path = %q", config.Storage.Market.Path)
	}
}

func TestEODHDConfig_GetTimeoutFallback(t *testing.T) {
	c := EODHDConfig{Timeout: "not-a-duration"}
	if c.GetTimeout() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s fallback", c.GetTimeout())
	}
}

func TestIsFresh(t *testing.T) {
	if IsFresh(time.Time{}, time.Hour) {
		t.Error("zero timestamp reported fresh")
	}
	if !IsFresh(time.Now().Add(-time.Minute), time.Hour) {
		t.Error("minute-old timestamp reported stale against 1h TTL")
	}
	if IsFresh(time.Now().Add(-2*time.Hour), time.Hour) {
		t.Error("two-hour-old timestamp reported fresh against 1h TTL")
	}
}
