// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"slices"
	"testing"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// shoeCatalog is the three-product catalog used across tests:
// A (red shoe, 5), B (red sneaker, 3), C (blue hat, 4).
func shoeCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{ID: "r1", ProdID: "pA", Name: "A", Brand: "Acme", Rating: 5, Tags: "red shoe"},
		{ID: "r2", ProdID: "pB", Name: "B", Brand: "Acme", Rating: 3, Tags: "red sneaker"},
		{ID: "r3", ProdID: "pC", Name: "C", Brand: "HatCo", Rating: 4, Tags: "blue hat"},
	})
}

func mustBuildIndex(t *testing.T, cat *catalog.Catalog) *ContentIndex {
	t.Helper()
	idx, err := BuildContentIndex(context.Background(), cat)
	if err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}
	return idx
}

func assertNames(t *testing.T, got recommend.List, want ...string) {
	t.Helper()
	names := got.Names()
	if len(want) == 0 {
		want = []string{}
	}
	if !slices.Equal(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func assertNoDuplicateProdIDs(t *testing.T, l recommend.List) {
	t.Helper()
	seen := make(map[string]struct{}, len(l))
	for _, it := range l {
		if _, dup := seen[it.Product.ProdID]; dup {
			t.Errorf("duplicate ProdID %q in %v", it.Product.ProdID, l.ProdIDs())
		}
		seen[it.Product.ProdID] = struct{}{}
	}
}
