// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"fmt"
	"time"
)

// Config holds engine configuration.
type Config struct {
	Limits     LimitsConfig     `json:"limits"`
	Preference PreferenceConfig `json:"preference"`
	Cache      CacheConfig      `json:"cache"`
}

// LimitsConfig bounds request sizes.
type LimitsConfig struct {
	// DefaultN is used by callers that omit N. The engine itself rejects
	// N <= 0.
	DefaultN int `json:"default_n"`

	// MaxN caps N; larger requests are clamped.
	MaxN int `json:"max_n"`

	// HybridOverfetch multiplies N for each side of a hybrid merge.
	HybridOverfetch int `json:"hybrid_overfetch"`
}

// PreferenceConfig tunes the preference aggregator.
type PreferenceConfig struct {
	// LikedThreshold is the minimum rating for a product to count as liked.
	LikedThreshold float64 `json:"liked_threshold"`
}

// CacheConfig controls the response cache.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			DefaultN:        5,
			MaxN:            100,
			HybridOverfetch: 2,
		},
		Preference: PreferenceConfig{
			LikedThreshold: 4,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			MaxEntries: 4096,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Limits.DefaultN < 1 {
		return fmt.Errorf("limits.default_n must be positive, got %d", c.Limits.DefaultN)
	}
	if c.Limits.MaxN < c.Limits.DefaultN {
		return fmt.Errorf("limits.max_n (%d) must be >= limits.default_n (%d)", c.Limits.MaxN, c.Limits.DefaultN)
	}
	if c.Limits.HybridOverfetch < 1 {
		return fmt.Errorf("limits.hybrid_overfetch must be positive, got %d", c.Limits.HybridOverfetch)
	}

	if c.Preference.LikedThreshold < 0 {
		return fmt.Errorf("preference.liked_threshold must be non-negative, got %f", c.Preference.LikedThreshold)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
