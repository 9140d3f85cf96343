// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package recommend answers product recommendation queries over a static
// catalog.
//
// # Strategies
//
// Four strategies form a closed set, dispatched by Engine.Recommend:
//
//   - popularity: products grouped by (Name, ReviewCount, Brand, ImageURL)
//     and ranked by mean rating
//   - content: TF-IDF cosine similarity over product tags, keyed by an
//     exact product name
//   - preference: mean ratings from other users on products the requesting
//     user rated 4 or higher; unknown users get the popularity ranking
//   - hybrid: content results followed by preference results, deduplicated
//     by ProdID
//
// The rankers themselves live in the algorithms subpackage and are passed
// to NewEngine through Components, keeping this package free of algorithm
// details.
//
// # Ordering
//
// Every ranking is deterministic for a fixed catalog. Equal scores are
// ordered by catalog row index; this is an explicit comparison in each
// ranker, not a side effect of sort stability.
//
// # Errors
//
// An unknown product name or user yields an empty list (or the popularity
// fallback), never an error. A non-positive N or unknown strategy returns
// ErrInvalidArgument. If the similarity index cannot be built, content
// queries return ErrIndexUnavailable while popularity and preference keep
// working, and hybrid queries fall back to their preference side.
//
// # Usage
//
//	eng, err := recommend.NewEngine(cfg, cat, recommend.Components{
//	    Popularity: pop,
//	    Preference: algorithms.NewPreference(cat, pop, 4),
//	    BuildIndex: algorithms.NewIndexBuilder(store, logger),
//	}, logger)
//
//	resp, err := eng.Recommend(ctx, recommend.Request{
//	    Strategy:    recommend.StrategyHybrid,
//	    UserID:      "u-123",
//	    ProductName: "Red Shoe",
//	    N:           5,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. The similarity index is built once
// behind a sync.Once and then shared read-only.
package recommend
