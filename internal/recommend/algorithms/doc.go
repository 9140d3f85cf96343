// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package algorithms implements the three rankers behind the recommendation
// engine.
//
// # Rankers
//
//   - Popularity: mean rating per product listing, precomputed at construction
//   - ContentIndex: TF-IDF cosine similarity over product tags
//   - Preference: co-rating aggregation over row IDs, falling back to Popularity
//
// Every ranker is read-only after construction and safe for concurrent use.
// Results never contain the same ProdID twice and ties are broken by catalog
// row order, so identical inputs always produce identical lists.
//
// # Tag Analysis
//
// Tags are tokenized with bleve's unicode tokenizer, lowercased, filtered
// against the English stop word list and stripped of single-rune tokens.
//
// # Snapshots
//
// Building the TF-IDF index is the only expensive step. NewIndexBuilder
// wraps BuildContentIndex with a SnapshotStore so a restart against an
// unchanged catalog restores the index instead of recomputing it:
//
//	build := algorithms.NewIndexBuilder(store, logger)
//	idx, err := build(ctx, cat)
//
// Snapshots are keyed by the catalog fingerprint. A snapshot that does not
// match the catalog is discarded and the index is rebuilt.
package algorithms
