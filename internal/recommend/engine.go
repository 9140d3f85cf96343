// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/cache"
	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
)

// Components are the ranking strategies the engine dispatches to.
type Components struct {
	Popularity PopularityRanker
	Preference PreferenceAggregator
	BuildIndex IndexBuilder
}

// Engine answers recommendation queries against one immutable catalog.
// It is safe for concurrent use: the catalog and rankers are read-only and
// the similarity index is built at most once.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	catalog *catalog.Catalog

	popularity PopularityRanker
	preference PreferenceAggregator
	buildIndex IndexBuilder

	// Similarity index, built once behind indexOnce
	indexOnce  sync.Once
	index      SimilarityIndex
	indexErr   error
	indexState atomic.Int32

	cache *cache.LRU[List]

	requestCount atomic.Int64
	emptyCount   atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates an engine over cat.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, cat *catalog.Catalog, comps Components, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if comps.Popularity == nil {
		return nil, errors.New("popularity ranker is required")
	}
	if comps.Preference == nil {
		return nil, errors.New("preference aggregator is required")
	}
	if comps.BuildIndex == nil {
		return nil, errors.New("index builder is required")
	}

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		catalog:    cat,
		popularity: comps.Popularity,
		preference: comps.Preference,
		buildIndex: comps.BuildIndex,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[List](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Catalog returns the catalog the engine reads.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Recommend answers req with the strategy it names.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req, err := e.prepareRequest(ctx, req)
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(req.Strategy.String(), metrics.OutcomeError, 0, time.Since(start))
		return nil, err
	}
	logger := e.requestLogger(ctx, req)

	if items, ok := e.cached(req); ok {
		logger.Debug().Int("returned", len(items)).Msg("cache hit")
		return e.buildResponse(req, items, true, start), nil
	}

	var items List
	switch req.Strategy {
	case StrategyPopularity:
		items = e.popularity.TopRated(req.N)
	case StrategyContent:
		idx, err := e.similarityIndex(ctx)
		if err != nil {
			e.errorCount.Add(1)
			metrics.RecordRecommendation(req.Strategy.String(), metrics.OutcomeError, 0, time.Since(start))
			return nil, err
		}
		items = idx.Similar(req.ProductName, req.N)
	case StrategyPreference:
		items = e.preference.ForUser(req.UserID, req.N)
	case StrategyHybrid:
		items = e.hybrid(ctx, req.UserID, req.ProductName, req.N)
	default:
		e.errorCount.Add(1)
		metrics.RecordRecommendation(req.Strategy.String(), metrics.OutcomeError, 0, time.Since(start))
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidArgument, int(req.Strategy))
	}
	if items == nil {
		items = List{}
	}

	if e.cache != nil {
		e.cache.Add(cacheKey(req), items)
	}

	resp := e.buildResponse(req, items, false, start)
	if resp.Metadata.Fallback {
		metrics.RecordPreferenceFallback()
	}

	logger.Debug().
		Int("returned", len(items)).
		Bool("fallback", resp.Metadata.Fallback).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// TopRated returns the n highest mean-rated products.
func (e *Engine) TopRated(ctx context.Context, n int) (List, error) {
	return e.items(ctx, Request{Strategy: StrategyPopularity, N: n})
}

// ContentSimilar returns the n products whose tags are closest to the
// product named productName. An unknown name yields an empty list.
func (e *Engine) ContentSimilar(ctx context.Context, productName string, n int) (List, error) {
	return e.items(ctx, Request{Strategy: StrategyContent, ProductName: productName, N: n})
}

// ForUser returns up to n products co-rated by users who liked what userID
// liked, or the popularity ranking when userID has no ratings.
func (e *Engine) ForUser(ctx context.Context, userID string, n int) (List, error) {
	return e.items(ctx, Request{Strategy: StrategyPreference, UserID: userID, N: n})
}

// Hybrid merges content results for productName ahead of preference
// results for userID, without repeated products.
func (e *Engine) Hybrid(ctx context.Context, userID, productName string, n int) (List, error) {
	return e.items(ctx, Request{Strategy: StrategyHybrid, UserID: userID, ProductName: productName, N: n})
}

// Dashboard returns the user's preference list and a hybrid list seeded
// with the first preference item's name.
func (e *Engine) Dashboard(ctx context.Context, userID string, n int) (*Dashboard, error) {
	recs, err := e.ForUser(ctx, userID, n)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		UserID:          strings.TrimSpace(userID),
		Recommendations: recs,
		Hybrid:          List{},
	}
	if len(recs) == 0 {
		return d, nil
	}

	d.SeedProduct = recs[0].Product.Name
	hybrid, err := e.Hybrid(ctx, userID, d.SeedProduct, n)
	if err != nil {
		return nil, err
	}
	d.Hybrid = hybrid
	return d, nil
}

// WarmIndex builds the similarity index if it has not been built yet.
// Concurrent callers share one build; the outcome is kept for the life of
// the engine.
func (e *Engine) WarmIndex(ctx context.Context) error {
	_, err := e.similarityIndex(ctx)
	return err
}

// IndexState reports whether the similarity index is pending, ready or failed.
func (e *Engine) IndexState() IndexState {
	return IndexState(e.indexState.Load())
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Requests:     e.requestCount.Load(),
		EmptyResults: e.emptyCount.Load(),
		Errors:       e.errorCount.Load(),
		IndexState:   e.IndexState().String(),
		CatalogSize:  e.catalog.Len(),
	}
	if e.cache != nil {
		cs := e.cache.Stats()
		s.CacheHits = cs.Hits
		s.CacheMisses = cs.Misses
		s.CacheEntries = cs.Size
		s.CacheEvictions = cs.Evictions
	}
	if e.IndexState() == IndexReady {
		s.VocabularySize = e.index.VocabularySize()
	}
	return s
}

func (e *Engine) items(ctx context.Context, req Request) (List, error) {
	resp, err := e.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// prepareRequest validates N, clamps it to the configured maximum and
// normalizes keys.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req Request) (Request, error) {
	if req.N <= 0 {
		return req, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, req.N)
	}
	if req.N > e.config.Limits.MaxN {
		req.N = e.config.Limits.MaxN
	}
	req.UserID = strings.TrimSpace(req.UserID)

	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}
	return req, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) requestLogger(ctx context.Context, req Request) zerolog.Logger {
	logCtx := e.logger.With().
		Str("request_id", req.RequestID).
		Str("strategy", req.Strategy.String()).
		Int("n", req.N)
	if req.UserID != "" {
		logCtx = logCtx.Str("user_id", req.UserID)
	}
	if req.ProductName != "" {
		logCtx = logCtx.Str("product_name", req.ProductName)
	}
	if correlationID := logging.CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	return logCtx.Logger()
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cached(req Request) (List, bool) {
	if e.cache == nil {
		return nil, false
	}
	items, ok := e.cache.Get(cacheKey(req))
	metrics.RecordCacheLookup(ok)
	return items, ok
}

// cacheKey keys every field that changes the result of req.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func cacheKey(req Request) string {
	var b strings.Builder
	b.WriteString(req.Strategy.String())
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(req.N))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.UserID))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(req.ProductName))
	return b.String()
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponse(req Request, items List, cacheHit bool, start time.Time) *Response {
	fallback := req.Strategy == StrategyPreference && len(e.catalog.RowsForUser(req.UserID)) == 0

	outcome := metrics.OutcomeOK
	if len(items) == 0 {
		outcome = metrics.OutcomeEmpty
		e.emptyCount.Add(1)
	}
	latency := time.Since(start)
	metrics.RecordRecommendation(req.Strategy.String(), outcome, len(items), latency)

	return &Response{
		Items: items.Clone(),
		Metadata: ResponseMetadata{
			RequestID:   req.RequestID,
			Strategy:    req.Strategy.String(),
			UserID:      req.UserID,
			ProductName: req.ProductName,
			Requested:   req.N,
			Returned:    len(items),
			CacheHit:    cacheHit,
			Fallback:    fallback,
			LatencyMS:   latency.Milliseconds(),
			Timestamp:   time.Now(),
		},
	}
}

// hybrid overfetches both sides, then merges content ahead of preference.
// A missing or failed index leaves the preference side alone.
func (e *Engine) hybrid(ctx context.Context, userID, productName string, n int) List {
	fetch := n * e.config.Limits.HybridOverfetch

	var content List
	if productName != "" {
		idx, err := e.similarityIndex(ctx)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("hybrid query without content side")
		} else {
			content = idx.Similar(productName, fetch)
		}
	}

	preference := e.preference.ForUser(userID, fetch)
	return Merge(n, content, preference)
}

// similarityIndex returns the shared index, building it on first use. The
// build runs detached from ctx cancellation so one abandoned request
// cannot fail it for every later caller.
func (e *Engine) similarityIndex(ctx context.Context) (SimilarityIndex, error) {
	e.indexOnce.Do(func() {
		start := time.Now()
		e.logger.Info().Int("products", e.catalog.Len()).Msg("building similarity index")

		idx, err := e.buildIndex(context.WithoutCancel(ctx), e.catalog)
		if err == nil && idx == nil {
			err = errors.New("index builder returned no index")
		}
		if err != nil {
			e.indexErr = err
			e.indexState.Store(int32(IndexFailed))
			e.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("similarity index build failed")
			return
		}

		e.index = idx
		e.indexState.Store(int32(IndexReady))
		e.logger.Info().
			Int("vocabulary", idx.VocabularySize()).
			Dur("duration", time.Since(start)).
			Msg("similarity index ready")
	})

	if e.indexErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexUnavailable, e.indexErr)
	}
	return e.index, nil
}
