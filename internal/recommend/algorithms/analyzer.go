// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"fmt"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// minTermRunes drops one-character tokens such as stray letters and digits.
const minTermRunes = 2

// tagAnalyzer turns tag text into index terms: Unicode word segmentation,
// lowercasing, possessive stripping ("men's" indexes as "men"), then English
// stop-word removal.
type tagAnalyzer struct {
	tokenizer analysis.Tokenizer
	filters   []analysis.TokenFilter
}

func newTagAnalyzer() (*tagAnalyzer, error) {
	stopWords := analysis.NewTokenMap()
	if err := stopWords.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("load english stop words: %w", err)
	}

	return &tagAnalyzer{
		tokenizer: unicode.NewUnicodeTokenizer(),
		filters: []analysis.TokenFilter{
			lowercase.NewLowerCaseFilter(),
			en.NewPossessiveFilter(),
			stop.NewStopTokensFilter(stopWords),
		},
	}, nil
}

// Terms returns the terms of text in order of appearance, repeats included.
func (a *tagAnalyzer) Terms(text string) []string {
	if text == "" {
		return nil
	}

	stream := a.tokenizer.Tokenize([]byte(text))
	for _, f := range a.filters {
		stream = f.Filter(stream)
	}

	terms := make([]string, 0, len(stream))
	for _, tok := range stream {
		if utf8.RuneCount(tok.Term) < minTermRunes {
			continue
		}
		terms = append(terms, string(tok.Term))
	}
	return terms
}
