// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"sort"
	"strings"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// DefaultLikedThreshold is the rating at or above which a product is liked.
const DefaultLikedThreshold = 4.0

// Preference is a naive co-rating recommender over the catalog's rows.
//
// Row IDs stand in for user IDs. For a user U:
//
//  1. liked(U) = ProdIDs U rated at or above the liked threshold
//  2. neighbours = other users with a row on a liked ProdID
//  3. pool = every row of every neighbour
//  4. score(ProdID) = mean Rating over pool rows for that ProdID
//
// Products are ranked by score, ties by the catalog index of their first
// pool row, and resolved to the first catalog row for the ProdID. When IDs
// are unique per row, as in the scraped export, the pool is exactly the
// other rows on liked products.
//
// Users with no rows get the popularity ranking. Users with rows but no
// liked products get an empty list.
type Preference struct {
	catalog        *catalog.Catalog
	fallback       recommend.PopularityRanker
	likedThreshold float64
	rowsByProdID   map[string][]int
}

// NewPreference creates a preference aggregator. A non-positive threshold
// selects DefaultLikedThreshold.
func NewPreference(cat *catalog.Catalog, fallback recommend.PopularityRanker, likedThreshold float64) *Preference {
	if likedThreshold <= 0 {
		likedThreshold = DefaultLikedThreshold
	}

	products := cat.AllProducts()
	byProdID := make(map[string][]int)
	for i := range products {
		byProdID[products[i].ProdID] = append(byProdID[products[i].ProdID], i)
	}

	return &Preference{
		catalog:        cat,
		fallback:       fallback,
		likedThreshold: likedThreshold,
		rowsByProdID:   byProdID,
	}
}

// ForUser returns up to n co-rated products for userID.
func (p *Preference) ForUser(userID string, n int) recommend.List {
	if n <= 0 {
		return recommend.List{}
	}

	userID = strings.TrimSpace(userID)
	userRows := p.catalog.RowsForUser(userID)
	if len(userRows) == 0 {
		return p.fallback.TopRated(n)
	}

	liked := make(map[string]struct{})
	for _, r := range userRows {
		if prod := p.catalog.At(r); prod.Rating >= p.likedThreshold {
			liked[prod.ProdID] = struct{}{}
		}
	}
	if len(liked) == 0 {
		return recommend.List{}
	}

	neighbours := make(map[string]struct{})
	for prodID := range liked {
		for _, r := range p.rowsByProdID[prodID] {
			if id := p.catalog.At(r).ID; id != "" && id != userID {
				neighbours[id] = struct{}{}
			}
		}
	}

	var pool []int
	for id := range neighbours {
		pool = append(pool, p.catalog.RowsForUser(id)...)
	}
	sort.Ints(pool)

	type aggregate struct {
		firstPoolRow int
		sum          float64
		count        int
	}
	aggs := make(map[string]*aggregate)
	var order []string
	for _, r := range pool {
		prod := p.catalog.At(r)
		a, ok := aggs[prod.ProdID]
		if !ok {
			a = &aggregate{firstPoolRow: r}
			aggs[prod.ProdID] = a
			order = append(order, prod.ProdID)
		}
		a.sum += prod.Rating
		a.count++
	}

	scored := make([]scoredRow, len(order))
	for i, prodID := range order {
		a := aggs[prodID]
		scored[i] = scoredRow{row: a.firstPoolRow, score: a.sum / float64(a.count)}
	}
	sortScoredRows(scored)

	if n > len(scored) {
		n = len(scored)
	}
	out := make(recommend.List, 0, n)
	for _, s := range scored[:n] {
		first, _ := p.catalog.IndexOfProdID(p.catalog.At(s.row).ProdID)
		out = append(out, recommend.Item{
			Product: p.catalog.At(first),
			Score:   s.score,
			Source:  recommend.StrategyPreference.String(),
		})
	}
	return out
}
