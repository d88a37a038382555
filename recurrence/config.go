package recurrence

import (
	"log/slog"
)

// Config holds configuration for a Normalizer
type Config struct {
	// MaxOccurrences caps rules that carry no explicit count. 0 means MaxOccurrencesCount.
	MaxOccurrences int
	// Logger receives diagnostics from the best-effort entry points. Nil means slog.Default().
	Logger *slog.Logger
	// Engine compiles rule text. Nil means NewEngine().
	Engine *Engine
}

// DefaultConfig is used by the package-level Normalize and TryNormalize.
var DefaultConfig = Config{
	MaxOccurrences: MaxOccurrencesCount,
}

// EngineConfig holds configuration options for the expansion engine
type EngineConfig struct {
	// Cache configuration for expansion results. Compilation is never cached.
	CacheEnabled bool
	CacheConfig  CacheConfig

	// MaxOccurrences bounds the number of instants returned by a single expansion
	MaxOccurrences int
}

// DefaultEngineConfig expands without caching
var DefaultEngineConfig = EngineConfig{
	CacheEnabled:   false,
	MaxOccurrences: MaxOccurrencesCount,
}

// CachedEngineConfig keeps expansion results for repeated window queries
var CachedEngineConfig = EngineConfig{
	CacheEnabled:   true,
	CacheConfig:    DefaultCacheConfig,
	MaxOccurrences: MaxOccurrencesCount,
}

// NewEngineWithConfig creates a new expansion engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.MaxOccurrences <= 0 {
		config.MaxOccurrences = MaxOccurrencesCount
	}

	var cache *RecurrenceCache
	if config.CacheEnabled {
		cache = NewRecurrenceCache(config.CacheConfig)
	}

	return &Engine{
		cache:  cache,
		config: config,
	}
}
