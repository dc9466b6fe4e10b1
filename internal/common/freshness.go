package common

import "time"

// Freshness TTLs for cached market data components
const (
	FreshnessEOD     = 1 * time.Hour
	FreshnessActions = 24 * time.Hour      // dividends and splits change at most daily
	FreshnessSymbols = 7 * 24 * time.Hour  // exchange symbol lists are slow-moving
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
