// Package marketfs implements file-based JSON storage for cached market data
// and symbol indexes.
package marketfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stockreturns/stockreturns/internal/common"
	"github.com/stockreturns/stockreturns/internal/models"
)

// Store provides file-based JSON storage for market data.
type Store struct {
	basePath   string
	marketDir  string
	symbolsDir string
	logger     *common.Logger
}

// NewStore creates a new market file store.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create market store path %s: %w", path, err)
	}
	marketDir := filepath.Join(path, "market")
	symbolsDir := filepath.Join(path, "symbols")
	os.MkdirAll(marketDir, 0755)
	os.MkdirAll(symbolsDir, 0755)

	logger.Info().Str("path", path).Msg("MarketFS store opened")
	return &Store{
		basePath:   path,
		marketDir:  marketDir,
		symbolsDir: symbolsDir,
		logger:     logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// GetMarketData retrieves cached market data for a symbol.
func (s *Store) GetMarketData(ctx context.Context, symbol string) (*models.MarketData, error) {
	path := filepath.Join(s.marketDir, sanitizeKey(symbol)+".json")

	var md models.MarketData
	if err := readJSON(path, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// SaveMarketData persists market data for a symbol.
func (s *Store) SaveMarketData(ctx context.Context, data *models.MarketData) error {
	if data == nil || data.Symbol == "" {
		return fmt.Errorf("market data requires a symbol")
	}
	path := filepath.Join(s.marketDir, sanitizeKey(data.Symbol)+".json")
	return writeJSON(path, data)
}

// GetSymbolIndex retrieves the cached exchange symbol list.
func (s *Store) GetSymbolIndex(ctx context.Context, exchange string) (*models.SymbolIndex, error) {
	path := filepath.Join(s.symbolsDir, sanitizeKey(exchange)+".json")

	var index models.SymbolIndex
	if err := readJSON(path, &index); err != nil {
		return nil, err
	}
	return &index, nil
}

// SaveSymbolIndex persists the exchange symbol list.
func (s *Store) SaveSymbolIndex(ctx context.Context, index *models.SymbolIndex) error {
	if index == nil || index.Exchange == "" {
		return fmt.Errorf("symbol index requires an exchange")
	}
	path := filepath.Join(s.symbolsDir, sanitizeKey(index.Exchange)+".json")
	return writeJSON(path, index)
}

// Close releases storage resources. File-based storage holds none.
func (s *Store) Close() error {
	return nil
}

// readJSON reads and decodes a JSON file into v.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v to path atomically via a temp file rename.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// sanitizeKey makes a symbol or exchange code safe to use as a filename.
func sanitizeKey(key string) string {
	key = strings.ToUpper(strings.TrimSpace(key))
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return replacer.Replace(key)
}
