// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ErrIndexBuild is returned when the catalog cannot be indexed.
var ErrIndexBuild = errors.New("index build failed")

// cancelCheckInterval is how many rows are processed between context checks.
const cancelCheckInterval = 1024

// ContentIndex is a TF-IDF vector space over product tags.
//
// Each row's vector holds, per term t:
//
//	tf(t, row) * idf(t),  idf(t) = ln((1 + N) / (1 + df(t))) + 1
//
// where tf is the raw term count, N the row count and df the number of rows
// containing t. Vectors are L2-normalized, so cosine similarity is a dot
// product. Rows whose tags are empty or only stop words have a zero vector
// and score 0 against everything.
//
// Queries walk the inverted index of the query row's terms only, which costs
// the total posting length of those terms rather than a full pairwise pass.
// The index is read-only after construction and safe for concurrent use.
type ContentIndex struct {
	catalog    *catalog.Catalog
	vocabulary []string
	idf        []float64
	rows       []sparseVector
	postings   [][]posting
}

// sparseVector holds term ids in ascending order with their weights.
type sparseVector struct {
	terms   []int32
	weights []float64
}

type posting struct {
	row    int32
	weight float64
}

// BuildContentIndex analyzes every row's Tags and builds the index.
// It fails with ErrIndexBuild when a row's tags are not valid UTF-8.
func BuildContentIndex(ctx context.Context, cat *catalog.Catalog) (*ContentIndex, error) {
	analyzer, err := newTagAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}

	products := cat.AllProducts()
	counts := make([]map[string]int, len(products))
	df := make(map[string]int)

	for i := range products {
		if i%cancelCheckInterval == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		tags := products[i].Tags
		if !utf8.ValidString(tags) {
			return nil, fmt.Errorf("%w: row %d (prod_id %q) has invalid UTF-8 tags", ErrIndexBuild, i, products[i].ProdID)
		}

		terms := analyzer.Terms(tags)
		if len(terms) == 0 {
			continue
		}
		tf := make(map[string]int, len(terms))
		for _, t := range terms {
			tf[t]++
		}
		for t := range tf {
			df[t]++
		}
		counts[i] = tf
	}

	vocabulary := make([]string, 0, len(df))
	for t := range df {
		vocabulary = append(vocabulary, t)
	}
	sort.Strings(vocabulary)

	termIDs := make(map[string]int32, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	n := float64(len(products))
	for id, t := range vocabulary {
		termIDs[t] = int32(id)
		idf[id] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	rows := make([]sparseVector, len(products))
	for i, tf := range counts {
		if len(tf) == 0 {
			continue
		}
		v := sparseVector{
			terms:   make([]int32, 0, len(tf)),
			weights: make([]float64, 0, len(tf)),
		}
		for t := range tf {
			v.terms = append(v.terms, termIDs[t])
		}
		sort.Slice(v.terms, func(a, b int) bool { return v.terms[a] < v.terms[b] })

		var norm float64
		for _, id := range v.terms {
			w := float64(tf[vocabulary[id]]) * idf[id]
			v.weights = append(v.weights, w)
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for k := range v.weights {
			v.weights[k] /= norm
		}
		rows[i] = v
	}

	return newContentIndex(cat, vocabulary, idf, rows), nil
}

func newContentIndex(cat *catalog.Catalog, vocabulary []string, idf []float64, rows []sparseVector) *ContentIndex {
	postings := make([][]posting, len(vocabulary))
	for i, v := range rows {
		for k, id := range v.terms {
			postings[id] = append(postings[id], posting{row: int32(i), weight: v.weights[k]})
		}
	}

	return &ContentIndex{
		catalog:    cat,
		vocabulary: vocabulary,
		idf:        idf,
		rows:       rows,
		postings:   postings,
	}
}

// Similar returns up to n products ranked by cosine similarity to the first
// row named productName. The query product never appears in its own
// results: rows sharing its name or ProdID are excluded. Ties, including the
// zero-similarity tail, follow catalog order. An unknown name yields an
// empty list.
func (ix *ContentIndex) Similar(productName string, n int) recommend.List {
	if n <= 0 {
		return recommend.List{}
	}
	q, ok := ix.catalog.IndexOfName(productName)
	if !ok {
		return recommend.List{}
	}

	scores := ix.scoresFor(q)
	query := ix.catalog.At(q)

	var positive []scoredRow
	for row, s := range scores {
		if s > 0 {
			positive = append(positive, scoredRow{row: row, score: s})
		}
	}
	sortScoredRows(positive)

	out := make(recommend.List, 0, min(n, len(scores)))
	seen := map[string]struct{}{query.ProdID: {}}
	add := func(row int, score float64) bool {
		p := ix.catalog.At(row)
		if row == q || p.Name == query.Name {
			return false
		}
		if _, dup := seen[p.ProdID]; dup {
			return false
		}
		seen[p.ProdID] = struct{}{}
		out = append(out, recommend.Item{Product: p, Score: score, Source: recommend.StrategyContent.String()})
		return len(out) == n
	}

	for _, s := range positive {
		if add(s.row, s.score) {
			return out
		}
	}
	for row, s := range scores {
		if s > 0 {
			continue
		}
		if add(row, 0) {
			return out
		}
	}
	return out
}

// Similarity returns the cosine similarity of rows a and b.
func (ix *ContentIndex) Similarity(a, b int) float64 {
	va, vb := ix.rows[a], ix.rows[b]
	var dot float64
	i, j := 0, 0
	for i < len(va.terms) && j < len(vb.terms) {
		switch {
		case va.terms[i] == vb.terms[j]:
			dot += va.weights[i] * vb.weights[j]
			i++
			j++
		case va.terms[i] < vb.terms[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// VocabularySize returns the number of distinct terms.
func (ix *ContentIndex) VocabularySize() int {
	return len(ix.vocabulary)
}

// Terms returns the indexed terms of row i in vocabulary order.
func (ix *ContentIndex) Terms(i int) []string {
	v := ix.rows[i]
	terms := make([]string, len(v.terms))
	for k, id := range v.terms {
		terms[k] = ix.vocabulary[id]
	}
	return terms
}

// scoresFor accumulates the dot product of row q against every row.
func (ix *ContentIndex) scoresFor(q int) []float64 {
	scores := make([]float64, len(ix.rows))
	v := ix.rows[q]
	for k, id := range v.terms {
		w := v.weights[k]
		for _, p := range ix.postings[id] {
			scores[p.row] += w * p.weight
		}
	}
	return scores
}
