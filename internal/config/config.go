// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package config loads Shelfwise configuration.
//
// Loading order (Koanf v2), later layers override earlier ones:
//  1. Defaults from defaultConfig()
//  2. Optional YAML file: CONFIG_PATH, else config.yaml, config.yml,
//     /etc/shelfwise/config.yaml
//  3. Environment variables listed in envMappings
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//
// A minimal YAML file:
//
//	catalog:
//	  path: /data/walmart_products.tsv
//	recommend:
//	  default_n: 5
//	  liked_threshold: 4
//	snapshot:
//	  path: /data/snapshots
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// CatalogConfig locates the product export.
type CatalogConfig struct {
	// Path is the tab-separated product export. Required.
	Path      string `koanf:"path"`
	Delimiter string `koanf:"delimiter"`

	// Threads caps DuckDB parallelism while loading.
	Threads     int           `koanf:"threads"`
	LoadTimeout time.Duration `koanf:"load_timeout"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	DefaultN        int     `koanf:"default_n"`
	MaxN            int     `koanf:"max_n"`
	HybridOverfetch int     `koanf:"hybrid_overfetch"`
	LikedThreshold  float64 `koanf:"liked_threshold"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`

	// EagerIndex builds the similarity index at startup instead of on the
	// first content query.
	EagerIndex bool `koanf:"eager_index"`

	// RequireIndex makes an index build failure fatal at startup. Implies
	// EagerIndex.
	RequireIndex bool `koanf:"require_index"`
}

// EngineConfig converts to the engine's configuration.
func (r RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Limits: recommend.LimitsConfig{
			DefaultN:        r.DefaultN,
			MaxN:            r.MaxN,
			HybridOverfetch: r.HybridOverfetch,
		},
		Preference: recommend.PreferenceConfig{
			LikedThreshold: r.LikedThreshold,
		},
		Cache: recommend.CacheConfig{
			Enabled:    r.CacheEnabled,
			TTL:        r.CacheTTL,
			MaxEntries: r.CacheMaxEntries,
		},
	}
}

// SnapshotConfig controls the BadgerDB index snapshot store.
type SnapshotConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}
