// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/config"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
	"github.com/tomtom215/shelfwise/internal/recommend/storage"
)

// RecommendComponents holds the engine and the resources it owns.
type RecommendComponents struct {
	Catalog *catalog.Catalog
	Engine  *recommend.Engine

	// Store is nil when snapshots are disabled.
	Store *storage.Store
}

// Close releases the snapshot store.
func (c *RecommendComponents) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// loadCatalog reads the product export and builds the catalog.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	start := time.Now()
	products, err := catalog.LoadTSV(ctx, catalog.LoaderConfig{
		Path:      cfg.Catalog.Path,
		Delimiter: cfg.Catalog.Delimiter,
		Threads:   cfg.Catalog.Threads,
		Timeout:   cfg.Catalog.LoadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	metrics.RecordCatalogLoad(len(products), time.Since(start))

	cat := catalog.New(products)
	logging.Info().
		Str("path", cfg.Catalog.Path).
		Int("products", cat.Len()).
		Dur("duration", time.Since(start)).
		Msg("Catalog loaded")
	return cat, nil
}

// openSnapshotStore opens the snapshot store and drops snapshots that
// belong to other catalogs. Returns nil when snapshots are disabled.
func openSnapshotStore(ctx context.Context, cfg *config.Config, cat *catalog.Catalog) (*storage.Store, error) {
	if !cfg.Snapshot.Enabled {
		logging.Info().Msg("Index snapshots disabled")
		return nil, nil
	}

	store, err := storage.Open(storage.Options{
		Path:     cfg.Snapshot.Path,
		InMemory: cfg.Snapshot.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	pruned, err := store.PruneExcept(ctx, cat.Fingerprint())
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to prune stale index snapshots")
	} else if pruned > 0 {
		logging.Info().Int("pruned", pruned).Msg("Removed stale index snapshots")
	}
	return store, nil
}

// initRecommend wires the catalog, rankers, snapshot store and engine.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := openSnapshotStore(ctx, cfg, cat)
	if err != nil {
		return nil, err
	}

	// A nil *storage.Store must not reach the builder as a non-nil interface.
	var snapshots algorithms.SnapshotStore
	if store != nil {
		snapshots = store
	}

	pop := algorithms.NewPopularity(cat)
	comps := recommend.Components{
		Popularity: pop,
		Preference: algorithms.NewPreference(cat, pop, cfg.Recommend.LikedThreshold),
		BuildIndex: algorithms.NewIndexBuilder(snapshots, logging.WithComponent("index")),
	}

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), cat, comps, logger)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("create engine: %w", err)
	}

	logger.Info().
		Int("default_n", cfg.Recommend.DefaultN).
		Int("max_n", cfg.Recommend.MaxN).
		Float64("liked_threshold", cfg.Recommend.LikedThreshold).
		Bool("cache", cfg.Recommend.CacheEnabled).
		Bool("snapshots", store != nil).
		Msg("Recommendation engine ready")

	return &RecommendComponents{
		Catalog: cat,
		Engine:  engine,
		Store:   store,
	}, nil
}
