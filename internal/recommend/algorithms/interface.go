// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// scoredRow pairs a catalog row index with its ranking score.
type scoredRow struct {
	row   int
	score float64
}

// sortScoredRows orders rows by score descending, then by row index
// ascending. Row indexes are unique, so the order is total.
func sortScoredRows(rows []scoredRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].row < rows[j].row
	})
}

// truncate returns a fresh list holding at most n items of l.
func truncate(l recommend.List, n int) recommend.List {
	if n <= 0 {
		return recommend.List{}
	}
	if n > len(l) {
		n = len(l)
	}
	out := make(recommend.List, n)
	copy(out, l[:n])
	return out
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

var (
	_ recommend.PopularityRanker     = (*Popularity)(nil)
	_ recommend.PreferenceAggregator = (*Preference)(nil)
	_ recommend.SimilarityIndex      = (*ContentIndex)(nil)
)
