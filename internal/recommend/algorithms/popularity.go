// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// Popularity ranks products by mean rating.
//
// Rows are grouped by (Name, ReviewCount, Brand, ImageURL), so repeated
// scrapes of one listing with different rating snapshots are averaged:
//
//	score(group) = sum(Rating) / rows(group)
//
// Ties go to the group whose first row comes earlier in the catalog. The
// first row of a group represents it in results. A group whose ProdID was
// already emitted by a higher-ranked group is skipped.
//
// The ranking depends only on the catalog, so it is computed once in
// NewPopularity and sliced per query.
type Popularity struct {
	ranking recommend.List
}

type popularityKey struct {
	name        string
	reviewCount int
	brand       string
	imageURL    string
}

type ratingGroup struct {
	first int
	sum   float64
	count int
}

// NewPopularity ranks every group in cat.
func NewPopularity(cat *catalog.Catalog) *Popularity {
	products := cat.AllProducts()

	index := make(map[popularityKey]int)
	var groups []ratingGroup
	for i := range products {
		p := &products[i]
		key := popularityKey{name: p.Name, reviewCount: p.ReviewCount, brand: p.Brand, imageURL: p.ImageURL}

		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, ratingGroup{first: i})
		}
		groups[g].sum += p.Rating
		groups[g].count++
	}

	scored := make([]scoredRow, len(groups))
	for i, g := range groups {
		scored[i] = scoredRow{row: g.first, score: g.sum / float64(g.count)}
	}
	sortScoredRows(scored)

	ranking := make(recommend.List, 0, len(scored))
	seen := make(map[string]struct{}, len(scored))
	for _, s := range scored {
		p := cat.At(s.row)
		if _, dup := seen[p.ProdID]; dup {
			continue
		}
		seen[p.ProdID] = struct{}{}
		ranking = append(ranking, recommend.Item{
			Product: p,
			Score:   s.score,
			Source:  recommend.StrategyPopularity.String(),
		})
	}

	return &Popularity{ranking: ranking}
}

// TopRated returns the n highest-ranked groups.
func (p *Popularity) TopRated(n int) recommend.List {
	return truncate(p.ranking, n)
}

// Len returns the number of ranked groups.
func (p *Popularity) Len() int {
	return len(p.ranking)
}
