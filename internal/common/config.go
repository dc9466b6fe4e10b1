// Package common provides shared utilities for the stockreturns service
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the stockreturns service
type Config struct {
	Environment string        `toml:"environment"`
	Exchange    string        `toml:"exchange"` // default exchange for the symbol catalog (e.g. "NSE")
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Market AreaConfig `toml:"market"` // Market data cache (file-based JSON)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Exchange:    "NSE",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Market: AreaConfig{Path: "data/market"},
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKRETURNS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKRETURNS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKRETURNS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKRETURNS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("STOCKRETURNS_DATA_PATH"); path != "" {
		config.Storage.Market.Path = filepath.Join(path, "market")
	}

	if key := os.Getenv("STOCKRETURNS_EODHD_API_KEY"); key != "" {
		config.Clients.EODHD.APIKey = key
	}

	if ex := os.Getenv("STOCKRETURNS_EXCHANGE"); ex != "" {
		config.Exchange = ex
	}
}
