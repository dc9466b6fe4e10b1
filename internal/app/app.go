// Package app wires configuration, storage, clients, and services into the
// shared application core used by cmd/stockreturns-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stockreturns/stockreturns/internal/clients/eodhd"
	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/interfaces"
	"github.com/stockreturns/stockreturns/internal/services/catalog"
	"github.com/stockreturns/stockreturns/internal/services/returns"
	"github.com/stockreturns/stockreturns/internal/storage/marketfs"
)

// App holds all initialized services, clients, and storage.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Storage        interfaces.MarketDataStorage
	MarketClient   interfaces.MarketDataClient
	ReturnsService interfaces.ReturnsService
	CatalogService interfaces.CatalogService
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Load configuration - check provided path, env var, binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("STOCKRETURNS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "stockreturns.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/stockreturns.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	store, err := marketfs.NewStore(logger, config.Storage.Market.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - market data requests will fail")
	}

	marketClient := eodhd.NewClient(
		config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithLogger(logger),
	)

	returnsService := returns.NewService(store, marketClient, logger)
	catalogService := catalog.NewService(store, marketClient, config.Exchange, logger)

	return &App{
		Config:         config,
		Logger:         logger,
		Storage:        store,
		MarketClient:   marketClient,
		ReturnsService: returnsService,
		CatalogService: catalogService,
		StartupTime:    time.Now(),
	}, nil
}

// WarmCatalog loads the symbol catalog in the background so the first search
// does not pay the refresh cost.
func (a *App) WarmCatalog(ctx context.Context) {
	go func() {
		if err := a.CatalogService.Refresh(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Symbol catalog warm-up failed")
		}
	}()
}

// Close releases application resources.
func (a *App) Close() {
	if err := a.Storage.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Storage close failed")
	}
}
