// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/metrics"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ErrSnapshotNotFound is returned by a SnapshotStore with no snapshot for
// the requested fingerprint.
var ErrSnapshotNotFound = errors.New("index snapshot not found")

// ErrSnapshotMismatch is returned when a snapshot does not fit the catalog
// it is restored against.
var ErrSnapshotMismatch = errors.New("index snapshot does not match catalog")

// IndexFormatVersion identifies the term analysis and weighting that produce
// snapshot vectors. Bump it whenever either changes so stored snapshots are
// rebuilt instead of restored.
const IndexFormatVersion = 2

// IndexSnapshot is the serializable form of a ContentIndex.
type IndexSnapshot struct {
	FormatVersion int `json:"format_version"`

	// Fingerprint is the catalog fingerprint the index was built from.
	Fingerprint string        `json:"fingerprint"`
	Vocabulary  []string      `json:"vocabulary"`
	IDF         []float64     `json:"idf"`
	Rows        []SnapshotRow `json:"rows"`
	BuiltAt     time.Time     `json:"built_at"`
}

// SnapshotRow is one sparse row vector.
type SnapshotRow struct {
	Terms   []int32   `json:"t,omitempty"`
	Weights []float64 `json:"w,omitempty"`
}

// SnapshotStore persists index snapshots keyed by catalog fingerprint.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, fingerprint string) (*IndexSnapshot, error)
	SaveSnapshot(ctx context.Context, snap *IndexSnapshot) error
}

// Snapshot exports the index.
func (ix *ContentIndex) Snapshot() *IndexSnapshot {
	rows := make([]SnapshotRow, len(ix.rows))
	for i, v := range ix.rows {
		rows[i] = SnapshotRow{Terms: v.terms, Weights: v.weights}
	}
	return &IndexSnapshot{
		FormatVersion: IndexFormatVersion,
		Fingerprint:   ix.catalog.Fingerprint(),
		Vocabulary:    ix.vocabulary,
		IDF:           ix.idf,
		Rows:          rows,
		BuiltAt:       time.Now().UTC(),
	}
}

// RestoreContentIndex rebuilds an index from snap. The snapshot must carry
// the current IndexFormatVersion, cat's fingerprint and one row per catalog
// row.
func RestoreContentIndex(cat *catalog.Catalog, snap *IndexSnapshot) (*ContentIndex, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrSnapshotMismatch)
	}
	if snap.FormatVersion != IndexFormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrSnapshotMismatch, snap.FormatVersion, IndexFormatVersion)
	}
	if snap.Fingerprint != cat.Fingerprint() {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrSnapshotMismatch, snap.Fingerprint)
	}
	if len(snap.Rows) != cat.Len() {
		return nil, fmt.Errorf("%w: %d rows, catalog has %d", ErrSnapshotMismatch, len(snap.Rows), cat.Len())
	}
	if len(snap.IDF) != len(snap.Vocabulary) {
		return nil, fmt.Errorf("%w: %d idf values for %d terms", ErrSnapshotMismatch, len(snap.IDF), len(snap.Vocabulary))
	}

	vocabSize := int32(len(snap.Vocabulary))
	rows := make([]sparseVector, len(snap.Rows))
	for i, r := range snap.Rows {
		if len(r.Terms) != len(r.Weights) {
			return nil, fmt.Errorf("%w: row %d has %d terms and %d weights", ErrSnapshotMismatch, i, len(r.Terms), len(r.Weights))
		}
		for k, id := range r.Terms {
			if id < 0 || id >= vocabSize || (k > 0 && r.Terms[k-1] >= id) {
				return nil, fmt.Errorf("%w: row %d has invalid term id %d", ErrSnapshotMismatch, i, id)
			}
		}
		rows[i] = sparseVector{terms: r.Terms, weights: r.Weights}
	}

	return newContentIndex(cat, snap.Vocabulary, snap.IDF, rows), nil
}

// NewIndexBuilder returns an IndexBuilder that restores the index from store
// when a snapshot for the catalog exists, and otherwise builds it and saves
// a snapshot. A nil store always builds. Store failures are logged and never
// fail the build.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIndexBuilder(store SnapshotStore, logger zerolog.Logger) recommend.IndexBuilder {
	logger = logger.With().Str("component", "similarity-index").Logger()

	return func(ctx context.Context, cat *catalog.Catalog) (recommend.SimilarityIndex, error) {
		start := time.Now()

		if store != nil {
			if idx := restoreFromStore(ctx, store, cat, logger); idx != nil {
				metrics.RecordIndexBuild("snapshot", time.Since(start), idx.VocabularySize(), nil)
				return idx, nil
			}
		}

		idx, err := BuildContentIndex(ctx, cat)
		if err != nil {
			metrics.RecordIndexBuild("computed", time.Since(start), 0, err)
			return nil, err
		}
		metrics.RecordIndexBuild("computed", time.Since(start), idx.VocabularySize(), nil)

		if store != nil {
			if err := store.SaveSnapshot(ctx, idx.Snapshot()); err != nil {
				metrics.RecordSnapshotOperation("save", metrics.OutcomeError)
				logger.Warn().Err(err).Msg("failed to save index snapshot")
			} else {
				metrics.RecordSnapshotOperation("save", metrics.OutcomeOK)
				logger.Debug().Int("vocabulary", idx.VocabularySize()).Msg("index snapshot saved")
			}
		}

		return idx, nil
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func restoreFromStore(ctx context.Context, store SnapshotStore, cat *catalog.Catalog, logger zerolog.Logger) *ContentIndex {
	fingerprint := cat.Fingerprint()

	snap, err := store.LoadSnapshot(ctx, fingerprint)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		metrics.RecordSnapshotOperation("load", "miss")
		return nil
	case err != nil:
		metrics.RecordSnapshotOperation("load", metrics.OutcomeError)
		logger.Warn().Err(err).Msg("failed to load index snapshot, rebuilding")
		return nil
	}

	idx, err := RestoreContentIndex(cat, snap)
	if err != nil {
		metrics.RecordSnapshotOperation("load", metrics.OutcomeError)
		logger.Warn().Err(err).Msg("discarding unusable index snapshot")
		return nil
	}

	metrics.RecordSnapshotOperation("load", "hit")
	logger.Info().
		Str("fingerprint", fingerprint).
		Time("built_at", snap.BuiltAt).
		Msg("similarity index restored from snapshot")
	return idx
}
