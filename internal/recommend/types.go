// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/shelfwise/internal/catalog"
)

// Strategy selects how a recommendation list is ranked.
// The set is closed; Engine.Recommend dispatches on it with a single switch.
type Strategy int

const (
	// StrategyPopularity ranks products by mean rating.
	StrategyPopularity Strategy = iota
	// StrategyContent ranks products by tag similarity to a named product.
	StrategyContent
	// StrategyPreference ranks products co-rated by users who liked what
	// the requesting user liked.
	StrategyPreference
	// StrategyHybrid merges content and preference results.
	StrategyHybrid
)

// String returns the canonical strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyPopularity:
		return "popularity"
	case StrategyContent:
		return "content"
	case StrategyPreference:
		return "preference"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a selector to a Strategy. "rating" and "top" are
// accepted for popularity and "user" for preference.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popularity", "rating", "top":
		return StrategyPopularity, nil
	case "content":
		return StrategyContent, nil
	case "preference", "user":
		return StrategyPreference, nil
	case "hybrid":
		return StrategyHybrid, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, s)
	}
}

// Strategies returns every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{StrategyPopularity, StrategyContent, StrategyPreference, StrategyHybrid}
}

// Item is one ranked entry. Product points into the catalog and is never
// copied or modified.
type Item struct {
	Product *catalog.Product `json:"product"`

	// Score is the ranking value: mean rating for popularity and
	// preference, cosine similarity for content.
	Score float64 `json:"score"`

	// Source names the strategy that produced the item.
	Source string `json:"source"`
}

// List is an ordered recommendation list with no repeated ProdID.
type List []Item

// ProdIDs returns the product identifiers in order.
func (l List) ProdIDs() []string {
	ids := make([]string, len(l))
	for i, it := range l {
		ids[i] = it.Product.ProdID
	}
	return ids
}

// Names returns the product names in order.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, it := range l {
		names[i] = it.Product.Name
	}
	return names
}

// Clone returns a copy of the list. Product references are shared.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Request describes one recommendation query.
type Request struct {
	Strategy Strategy

	// UserID keys preference lookups (preference, hybrid).
	UserID string

	// ProductName keys content lookups (content, hybrid). Matched exactly.
	ProductName string

	// N is the maximum list length. Must be positive.
	N int

	// RequestID is generated when empty.
	RequestID string
}

// Response carries a ranked list and request metadata.
type Response struct {
	Items    List             `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID   string    `json:"request_id"`
	Strategy    string    `json:"strategy"`
	UserID      string    `json:"user_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Requested   int       `json:"requested"`
	Returned    int       `json:"returned"`
	CacheHit    bool      `json:"cache_hit"`
	Fallback    bool      `json:"fallback"`
	LatencyMS   int64     `json:"latency_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// Dashboard is the per-user landing view: the user's preference list and a
// hybrid list seeded with the first preference item.
type Dashboard struct {
	UserID          string `json:"user_id"`
	SeedProduct     string `json:"seed_product,omitempty"`
	Recommendations List   `json:"recommendations"`
	Hybrid          List   `json:"hybrid"`
}

// PopularityRanker returns the n highest mean-rated products.
type PopularityRanker interface {
	TopRated(n int) List
}

// PreferenceAggregator returns co-rating recommendations for a user,
// falling back to popularity for unknown users.
type PreferenceAggregator interface {
	ForUser(userID string, n int) List
}

// SimilarityIndex answers nearest-neighbour queries by product name.
// Implementations are read-only after construction.
type SimilarityIndex interface {
	Similar(productName string, n int) List
	VocabularySize() int
}

// IndexBuilder constructs a SimilarityIndex over a catalog.
type IndexBuilder func(ctx context.Context, cat *catalog.Catalog) (SimilarityIndex, error)

// IndexState reports the lifecycle of the similarity index.
type IndexState int32

const (
	IndexPending IndexState = iota
	IndexReady
	IndexFailed
)

func (s IndexState) String() string {
	switch s {
	case IndexPending:
		return "pending"
	case IndexReady:
		return "ready"
	case IndexFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time view of engine counters.
type Stats struct {
	Requests       int64  `json:"requests"`
	CacheHits      int64  `json:"cache_hits"`
	CacheMisses    int64  `json:"cache_misses"`
	CacheEntries   int    `json:"cache_entries"`
	CacheEvictions int64  `json:"cache_evictions"`
	EmptyResults   int64  `json:"empty_results"`
	Errors         int64  `json:"errors"`
	IndexState     string `json:"index_state"`
	CatalogSize    int    `json:"catalog_size"`
	VocabularySize int    `json:"vocabulary_size"`
}
