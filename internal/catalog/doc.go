// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package catalog holds the normalized, read-only product table that every
// recommendation strategy reads from.
//
// # Overview
//
// A Catalog is built once at process start and never mutated afterwards.
// Rows keep their source order; that order is the tie-break used by every
// ranking in the recommend packages, so loaders must not reorder rows.
//
// Each row doubles as a rating event. The row identifier (Product.ID) is
// reused as a stand-in user identifier because the source dataset carries no
// real interaction log. This is a placeholder, not a model of real users, and
// the preference strategy should be read with that in mind.
//
// # Loading
//
// LoadTSV reads the raw scraped export with DuckDB's read_csv, renames the
// source columns and fills missing values with defaults:
//
//	products, err := catalog.LoadTSV(ctx, catalog.LoaderConfig{Path: "data/products.tsv"})
//	if err != nil {
//	    return err
//	}
//	cat := catalog.New(products)
//
// # Lookups
//
//   - IndexOfName: first row whose Name matches exactly (case-sensitive)
//   - ProductByID: first row for a ProdID
//   - RowsForUser: every row whose ID matches a user identifier
//   - Search: first row whose Name contains a query, ignoring case
//
// All lookups are lock-free; the maps are built in New and only read later.
package catalog
