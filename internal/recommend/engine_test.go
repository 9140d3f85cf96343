// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

// testCatalog has two users sharing product A:
//
//	u1 rated A 5; u2 rated A 4 and B 5; u3 rated C 4.
func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{ID: "u1", ProdID: "pA", Name: "A", Brand: "Acme", Rating: 5, Tags: "red shoe"},
		{ID: "u2", ProdID: "pA", Name: "A", Brand: "Acme", Rating: 4, Tags: "red shoe"},
		{ID: "u2", ProdID: "pB", Name: "B", Brand: "Acme", Rating: 5, Tags: "red sneaker"},
		{ID: "u3", ProdID: "pC", Name: "C", Brand: "HatCo", Rating: 4, Tags: "blue hat"},
	})
}

func newTestEngine(t *testing.T, cfg *recommend.Config, build recommend.IndexBuilder) *recommend.Engine {
	t.Helper()
	cat := testCatalog()
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if build == nil {
		build = algorithms.NewIndexBuilder(nil, zerolog.Nop())
	}
	pop := algorithms.NewPopularity(cat)
	engine, err := recommend.NewEngine(cfg, cat, recommend.Components{
		Popularity: pop,
		Preference: algorithms.NewPreference(cat, pop, cfg.Preference.LikedThreshold),
		BuildIndex: build,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

// countingBuilder wraps build and counts invocations.
func countingBuilder(calls *atomic.Int32, build recommend.IndexBuilder) recommend.IndexBuilder {
	return func(ctx context.Context, cat *catalog.Catalog) (recommend.SimilarityIndex, error) {
		calls.Add(1)
		return build(ctx, cat)
	}
}

func failingBuilder(err error) recommend.IndexBuilder {
	return func(context.Context, *catalog.Catalog) (recommend.SimilarityIndex, error) {
		return nil, err
	}
}

func names(t *testing.T, l recommend.List, err error) []string {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l.Names()
}

func TestNewEngine_Validation(t *testing.T) {
	cat := testCatalog()
	pop := algorithms.NewPopularity(cat)
	pref := algorithms.NewPreference(cat, pop, 4)
	build := algorithms.NewIndexBuilder(nil, zerolog.Nop())

	badCfg := recommend.DefaultConfig()
	badCfg.Limits.MaxN = 0

	tests := []struct {
		name  string
		cfg   *recommend.Config
		cat   *catalog.Catalog
		comps recommend.Components
	}{
		{name: "invalid config", cfg: badCfg, cat: cat, comps: recommend.Components{Popularity: pop, Preference: pref, BuildIndex: build}},
		{name: "nil catalog", cat: nil, comps: recommend.Components{Popularity: pop, Preference: pref, BuildIndex: build}},
		{name: "missing popularity", cat: cat, comps: recommend.Components{Preference: pref, BuildIndex: build}},
		{name: "missing preference", cat: cat, comps: recommend.Components{Popularity: pop, BuildIndex: build}},
		{name: "missing builder", cat: cat, comps: recommend.Components{Popularity: pop, Preference: pref}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := recommend.NewEngine(tt.cfg, tt.cat, tt.comps, zerolog.Nop()); err == nil {
				t.Error("NewEngine() error = nil, want error")
			}
		})
	}

	engine, err := recommend.NewEngine(nil, cat, recommend.Components{Popularity: pop, Preference: pref, BuildIndex: build}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(nil config) error = %v", err)
	}
	if engine.Config().Limits.DefaultN != recommend.DefaultConfig().Limits.DefaultN {
		t.Error("nil config should select DefaultConfig()")
	}
	if engine.Catalog() != cat {
		t.Error("Catalog() should return the engine's catalog")
	}
}

func TestEngine_Strategies(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() (recommend.List, error)
		want []string
	}{
		{
			name: "top rated",
			run:  func() (recommend.List, error) { return engine.TopRated(ctx, 3) },
			want: []string{"B", "A", "C"},
		},
		{
			name: "content",
			run:  func() (recommend.List, error) { return engine.ContentSimilar(ctx, "A", 5) },
			want: []string{"B", "C"},
		},
		{
			name: "content unknown name",
			run:  func() (recommend.List, error) { return engine.ContentSimilar(ctx, "nope", 5) },
			want: []string{},
		},
		{
			name: "preference",
			run:  func() (recommend.List, error) { return engine.ForUser(ctx, "u1", 5) },
			want: []string{"B", "A"},
		},
		{
			name: "preference unknown user",
			run:  func() (recommend.List, error) { return engine.ForUser(ctx, "ghost", 2) },
			want: []string{"B", "A"},
		},
		{
			name: "hybrid",
			run:  func() (recommend.List, error) { return engine.Hybrid(ctx, "u1", "A", 3) },
			want: []string{"B", "C", "A"},
		},
		{
			name: "hybrid without product",
			run:  func() (recommend.List, error) { return engine.Hybrid(ctx, "u1", "", 3) },
			want: []string{"B", "A"},
		},
		{
			name: "hybrid unknown product",
			run:  func() (recommend.List, error) { return engine.Hybrid(ctx, "u1", "no-such-product", 3) },
			want: []string{"B", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := tt.run()
			if got := names(t, l, err); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngine_HybridUnknownProductMatchesPreference(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()

	pref, err := engine.ForUser(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("ForUser() error = %v", err)
	}
	for _, name := range []string{"no-such-product", "a", "   "} {
		got, err := engine.Hybrid(ctx, "u1", name, 3)
		if err != nil {
			t.Fatalf("Hybrid(%q) error = %v", name, err)
		}
		if !slices.Equal(got.ProdIDs(), pref.ProdIDs()) {
			t.Errorf("Hybrid(%q) = %v, want preference list %v", name, got.ProdIDs(), pref.ProdIDs())
		}
		for i := range got {
			if got[i].Score != pref[i].Score {
				t.Errorf("Hybrid(%q)[%d] score = %v, want %v", name, i, got[i].Score, pref[i].Score)
			}
		}
	}
}

func TestEngine_InvalidN(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	for _, n := range []int{0, -1} {
		_, err := engine.TopRated(context.Background(), n)
		if !errors.Is(err, recommend.ErrInvalidArgument) {
			t.Errorf("TopRated(n=%d) error = %v, want ErrInvalidArgument", n, err)
		}
	}
	if engine.Stats().Errors != 2 {
		t.Errorf("Stats().Errors = %d, want 2", engine.Stats().Errors)
	}
}

func TestEngine_UnknownStrategy(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	_, err := engine.Recommend(context.Background(), recommend.Request{Strategy: recommend.Strategy(42), N: 3})
	if !errors.Is(err, recommend.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestEngine_ClampsN(t *testing.T) {
	cfg := recommend.DefaultConfig()
	cfg.Limits.MaxN = 10

	resp, err := newTestEngine(t, cfg, nil).Recommend(context.Background(), recommend.Request{Strategy: recommend.StrategyPopularity, N: 1000})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Requested != 10 {
		t.Errorf("Requested = %d, want 10", resp.Metadata.Requested)
	}
	if resp.Metadata.Returned != 3 {
		t.Errorf("Returned = %d, want 3", resp.Metadata.Returned)
	}
}

func TestEngine_ResponseMetadata(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := logging.ContextWithRequestID(context.Background(), "req-7")

	resp, err := engine.Recommend(ctx, recommend.Request{Strategy: recommend.StrategyPreference, UserID: "  ghost ", N: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	md := resp.Metadata
	if md.RequestID != "req-7" {
		t.Errorf("RequestID = %q, want req-7", md.RequestID)
	}
	if md.Strategy != "preference" {
		t.Errorf("Strategy = %q, want preference", md.Strategy)
	}
	if md.UserID != "ghost" {
		t.Errorf("UserID = %q, want trimmed ghost", md.UserID)
	}
	if !md.Fallback {
		t.Error("Fallback = false for a user with no ratings")
	}
	if md.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}

	resp, err = engine.Recommend(context.Background(), recommend.Request{Strategy: recommend.StrategyPreference, UserID: "u1", N: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Fallback {
		t.Error("Fallback = true for a known user")
	}
	if resp.Metadata.RequestID == "" {
		t.Error("RequestID should be generated when absent")
	}
}

func TestEngine_Cache(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()
	req := recommend.Request{Strategy: recommend.StrategyPopularity, N: 2}

	first, err := engine.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if first.Metadata.CacheHit {
		t.Error("first request should miss the cache")
	}

	// Mutating a response must not leak into later ones.
	first.Items[0].Score = -1

	second, err := engine.Recommend(ctx, req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !second.Metadata.CacheHit {
		t.Error("repeated request should hit the cache")
	}
	if second.Items[0].Score == -1 {
		t.Error("cached list was modified through a response")
	}

	stats := engine.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 1 and 1", stats.CacheHits, stats.CacheMisses)
	}
	if stats.CacheEntries != 1 || stats.CacheEvictions != 0 {
		t.Errorf("Stats() entries=%d evictions=%d, want 1 and 0", stats.CacheEntries, stats.CacheEvictions)
	}
}

func TestEngine_CacheDisabled(t *testing.T) {
	cfg := recommend.DefaultConfig()
	cfg.Cache.Enabled = false
	engine := newTestEngine(t, cfg, nil)

	for i := 0; i < 2; i++ {
		resp, err := engine.Recommend(context.Background(), recommend.Request{Strategy: recommend.StrategyPopularity, N: 2})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if resp.Metadata.CacheHit {
			t.Error("CacheHit = true with caching disabled")
		}
	}
}

func TestEngine_IndexBuiltOnce(t *testing.T) {
	var calls atomic.Int32
	build := countingBuilder(&calls, algorithms.NewIndexBuilder(nil, zerolog.Nop()))
	cfg := recommend.DefaultConfig()
	cfg.Cache.Enabled = false
	engine := newTestEngine(t, cfg, build)

	if engine.IndexState() != recommend.IndexPending {
		t.Errorf("IndexState() = %v before first query, want pending", engine.IndexState())
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.ContentSimilar(context.Background(), "A", 2); err != nil {
				t.Errorf("ContentSimilar() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("index built %d times, want 1", calls.Load())
	}
	if engine.IndexState() != recommend.IndexReady {
		t.Errorf("IndexState() = %v, want ready", engine.IndexState())
	}
	if engine.Stats().VocabularySize == 0 {
		t.Error("Stats().VocabularySize = 0 after build")
	}
}

func TestEngine_IndexBuildDetachedFromCancellation(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := engine.WarmIndex(ctx); err != nil {
		t.Fatalf("WarmIndex(cancelled ctx) error = %v", err)
	}
	if engine.IndexState() != recommend.IndexReady {
		t.Errorf("IndexState() = %v, want ready", engine.IndexState())
	}
}

func TestEngine_IndexFailure(t *testing.T) {
	buildErr := errors.New("tags unreadable")
	var calls atomic.Int32
	engine := newTestEngine(t, nil, countingBuilder(&calls, failingBuilder(buildErr)))
	ctx := context.Background()

	_, err := engine.ContentSimilar(ctx, "A", 2)
	if !errors.Is(err, recommend.ErrIndexUnavailable) {
		t.Errorf("error = %v, want ErrIndexUnavailable", err)
	}
	if !errors.Is(err, buildErr) {
		t.Errorf("error = %v, want it to wrap the build error", err)
	}
	if engine.IndexState() != recommend.IndexFailed {
		t.Errorf("IndexState() = %v, want failed", engine.IndexState())
	}

	// The failure is kept; the builder is not retried.
	if err := engine.WarmIndex(ctx); !errors.Is(err, recommend.ErrIndexUnavailable) {
		t.Errorf("WarmIndex() error = %v, want ErrIndexUnavailable", err)
	}
	if calls.Load() != 1 {
		t.Errorf("builder called %d times, want 1", calls.Load())
	}

	// Other strategies keep working; hybrid degrades to preference.
	top, err := engine.TopRated(ctx, 3)
	if got := names(t, top, err); !slices.Equal(got, []string{"B", "A", "C"}) {
		t.Errorf("TopRated() = %v", got)
	}
	hybrid, err := engine.Hybrid(ctx, "u1", "A", 3)
	if got := names(t, hybrid, err); !slices.Equal(got, []string{"B", "A"}) {
		t.Errorf("Hybrid() with failed index = %v, want [B A]", got)
	}
	if engine.Stats().IndexState != "failed" {
		t.Errorf("Stats().IndexState = %q, want failed", engine.Stats().IndexState)
	}
}

func TestEngine_NilIndexIsFailure(t *testing.T) {
	engine := newTestEngine(t, nil, failingBuilder(nil))

	if err := engine.WarmIndex(context.Background()); !errors.Is(err, recommend.ErrIndexUnavailable) {
		t.Errorf("WarmIndex() error = %v, want ErrIndexUnavailable", err)
	}
}

func TestEngine_Dashboard(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		wantSeed   string
		wantRecs   []string
		wantHybrid []string
	}{
		{
			name:       "known user",
			userID:     "u1",
			wantSeed:   "B",
			wantRecs:   []string{"B", "A"},
			wantHybrid: []string{"A", "C", "B"},
		},
		{
			name:       "unknown user falls back to top rated",
			userID:     "ghost",
			wantSeed:   "B",
			wantRecs:   []string{"B", "A", "C"},
			wantHybrid: []string{"A", "C", "B"},
		},
		{
			name:       "user without liked products",
			userID:     "u3",
			wantSeed:   "",
			wantRecs:   []string{},
			wantHybrid: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := engine.Dashboard(ctx, tt.userID, 3)
			if err != nil {
				t.Fatalf("Dashboard() error = %v", err)
			}
			if d.UserID != tt.userID {
				t.Errorf("UserID = %q, want %q", d.UserID, tt.userID)
			}
			if d.SeedProduct != tt.wantSeed {
				t.Errorf("SeedProduct = %q, want %q", d.SeedProduct, tt.wantSeed)
			}
			if got := d.Recommendations.Names(); !slices.Equal(got, tt.wantRecs) {
				t.Errorf("Recommendations = %v, want %v", got, tt.wantRecs)
			}
			if got := d.Hybrid.Names(); !slices.Equal(got, tt.wantHybrid) {
				t.Errorf("Hybrid = %v, want %v", got, tt.wantHybrid)
			}
		})
	}

	if _, err := engine.Dashboard(ctx, "u1", 0); !errors.Is(err, recommend.ErrInvalidArgument) {
		t.Errorf("Dashboard(n=0) error = %v, want ErrInvalidArgument", err)
	}
}

func TestEngine_NoDuplicateProdIDs(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()

	for _, s := range recommend.Strategies() {
		resp, err := engine.Recommend(ctx, recommend.Request{Strategy: s, UserID: "u1", ProductName: "A", N: 10})
		if err != nil {
			t.Fatalf("%s: Recommend() error = %v", s, err)
		}
		seen := map[string]bool{}
		for _, id := range resp.Items.ProdIDs() {
			if seen[id] {
				t.Errorf("%s: duplicate ProdID %s in %v", s, id, resp.Items.ProdIDs())
			}
			seen[id] = true
		}
	}
}

func TestEngine_Stats(t *testing.T) {
	cfg := recommend.DefaultConfig()
	cfg.Cache.Enabled = false
	engine := newTestEngine(t, cfg, nil)
	ctx := context.Background()

	_, _ = engine.TopRated(ctx, 2)
	_, _ = engine.ContentSimilar(ctx, "missing", 2)
	_, _ = engine.TopRated(ctx, 0)

	s := engine.Stats()
	if s.Requests != 3 {
		t.Errorf("Requests = %d, want 3", s.Requests)
	}
	if s.EmptyResults != 1 {
		t.Errorf("EmptyResults = %d, want 1", s.EmptyResults)
	}
	if s.Errors != 1 {
		t.Errorf("Errors = %d, want 1", s.Errors)
	}
	if s.CatalogSize != 4 {
		t.Errorf("CatalogSize = %d, want 4", s.CatalogSize)
	}
	if s.IndexState != "ready" {
		t.Errorf("IndexState = %q, want ready", s.IndexState)
	}
}
