// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
	"math"
	"strings"
)

// ErrProductNotFound is returned when a ProdID has no row in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Product is one normalized catalog row.
type Product struct {
	// ID is the source row identifier. It doubles as the user identifier
	// for preference lookups.
	ID string `json:"id"`

	// ProdID is the product identity. Several rows may share one ProdID
	// (repeated scrapes of the same listing).
	ProdID string `json:"prod_id"`

	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`

	// Rating defaults to 0 when the source value is missing.
	Rating float64 `json:"rating"`

	// ReviewCount defaults to 0 when the source value is missing.
	ReviewCount int `json:"review_count"`

	// Tags is free text used as the content similarity feature source.
	Tags string `json:"tags"`
}

// Catalog is an immutable, ordered product table with precomputed lookups.
type Catalog struct {
	products      []Product
	firstByName   map[string]int
	firstByProdID map[string]int
	rowsByUser    map[string][]int
	lowerNames    []string
}

// New builds a Catalog from rows in source order. The slice is copied and
// identifiers are trimmed; a NaN or negative rating becomes 0 and a negative
// review count becomes 0.
func New(products []Product) *Catalog {
	rows := make([]Product, len(products))
	copy(rows, products)

	c := &Catalog{
		products:      rows,
		firstByName:   make(map[string]int, len(rows)),
		firstByProdID: make(map[string]int, len(rows)),
		rowsByUser:    make(map[string][]int),
		lowerNames:    make([]string, len(rows)),
	}

	for i := range c.products {
		p := &c.products[i]
		p.ID = strings.TrimSpace(p.ID)
		p.ProdID = strings.TrimSpace(p.ProdID)
		if math.IsNaN(p.Rating) || p.Rating < 0 {
			p.Rating = 0
		}
		if p.ReviewCount < 0 {
			p.ReviewCount = 0
		}

		if _, ok := c.firstByName[p.Name]; !ok {
			c.firstByName[p.Name] = i
		}
		if _, ok := c.firstByProdID[p.ProdID]; !ok {
			c.firstByProdID[p.ProdID] = i
		}
		if p.ID != "" {
			c.rowsByUser[p.ID] = append(c.rowsByUser[p.ID], i)
		}
		c.lowerNames[i] = strings.ToLower(p.Name)
	}

	return c
}

// AllProducts returns the rows in catalog order. The slice is shared with
// the catalog and must not be modified.
func (c *Catalog) AllProducts() []Product {
	return c.products
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.products)
}

// At returns a reference to row i.
func (c *Catalog) At(i int) *Product {
	return &c.products[i]
}

// IndexOfName returns the first row whose Name equals name exactly.
func (c *Catalog) IndexOfName(name string) (int, bool) {
	i, ok := c.firstByName[name]
	return i, ok
}

// IndexOfProdID returns the first row carrying prodID.
func (c *Catalog) IndexOfProdID(prodID string) (int, bool) {
	i, ok := c.firstByProdID[prodID]
	return i, ok
}

// ProductByID returns the first row carrying prodID.
func (c *Catalog) ProductByID(prodID string) (*Product, error) {
	i, ok := c.firstByProdID[strings.TrimSpace(prodID)]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &c.products[i], nil
}

// RowsForUser returns the row indexes whose ID equals userID after trimming.
// The returned slice is shared and must not be modified.
func (c *Catalog) RowsForUser(userID string) []int {
	return c.rowsByUser[strings.TrimSpace(userID)]
}

// Search returns the first row whose Name contains query, ignoring case.
// An empty query matches nothing.
func (c *Catalog) Search(query string) (*Product, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false
	}
	for i, name := range c.lowerNames {
		if strings.Contains(name, q) {
			return &c.products[i], true
		}
	}
	return nil, false
}

// Fingerprint returns a hex SHA-256 digest over the row count and each row's
// Name and Tags, in order. Two catalogs with the same fingerprint produce
// the same similarity index.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(c.products)))
	_, _ = h.Write(buf[:])
	for i := range c.products {
		writeField(h, c.products[i].Name)
		writeField(h, c.products[i].Tags)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, s string) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(s))
}
