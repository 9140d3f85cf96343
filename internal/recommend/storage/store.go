// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

const snapshotKeyPrefix = "index/"

// ErrChecksumMismatch is returned when a stored payload fails verification.
var ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

// Options configures Open.
type Options struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory only.
	InMemory bool
}

// SnapshotMetadata describes a stored snapshot.
type SnapshotMetadata struct {
	Fingerprint    string    `json:"fingerprint"`
	FormatVersion  int       `json:"format_version"`
	VocabularySize int       `json:"vocabulary_size"`
	Rows           int       `json:"rows"`
	BuiltAt        time.Time `json:"built_at"`
	SavedAt        time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// record is the stored value format.
type record struct {
	Metadata SnapshotMetadata `json:"metadata"`
	Payload  []byte           `json:"payload"`
}

// Store persists index snapshots. It implements algorithms.SnapshotStore.
type Store struct {
	db     *badger.DB
	ownsDB bool
}

var _ algorithms.SnapshotStore = (*Store)(nil)

// Open opens (or creates) a snapshot store.
func Open(opts Options) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("snapshot store path is required")
		}
		if err := os.MkdirAll(opts.Path, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}
	return &Store{db: db, ownsDB: true}, nil
}

// NewStoreFromDB wraps an already open database. Close does not close db.
func NewStoreFromDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close releases the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot stores snap under its fingerprint, replacing any previous one.
func (s *Store) SaveSnapshot(ctx context.Context, snap *algorithms.IndexSnapshot) error {
	if snap == nil || snap.Fingerprint == "" {
		return errors.New("snapshot fingerprint is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	rec := record{
		Metadata: SnapshotMetadata{
			Fingerprint:    snap.Fingerprint,
			FormatVersion:  snap.FormatVersion,
			VocabularySize: len(snap.Vocabulary),
			Rows:           len(snap.Rows),
			BuiltAt:        snap.BuiltAt,
			SavedAt:        time.Now().UTC(),
			Checksum:       hex.EncodeToString(hash[:]),
			SizeBytes:      int64(compressed.Len()),
		},
		Payload: compressed.Bytes(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode snapshot record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(snapshotKey(snap.Fingerprint), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		return nil
	})
}

// LoadSnapshot returns the snapshot for fingerprint, or
// algorithms.ErrSnapshotNotFound.
func (s *Store) LoadSnapshot(ctx context.Context, fingerprint string) (*algorithms.IndexSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec, err := s.getRecord(fingerprint)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(rec.Payload))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed snapshot: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != rec.Metadata.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, rec.Metadata.Checksum, checksum)
	}

	var snap algorithms.IndexSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Metadata returns the metadata of the snapshot for fingerprint.
func (s *Store) Metadata(fingerprint string) (*SnapshotMetadata, error) {
	rec, err := s.getRecord(fingerprint)
	if err != nil {
		return nil, err
	}
	return &rec.Metadata, nil
}

// List returns metadata for every stored snapshot in key order.
func (s *Store) List(ctx context.Context) ([]SnapshotMetadata, error) {
	var out []SnapshotMetadata

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(snapshotKeyPrefix), PrefetchValues: true, PrefetchSize: 16})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode snapshot record %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec.Metadata)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the snapshot for fingerprint. Deleting a missing snapshot
// is not an error.
func (s *Store) Delete(_ context.Context, fingerprint string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(snapshotKey(fingerprint)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete snapshot: %w", err)
		}
		return nil
	})
}

// PruneExcept deletes every snapshot whose fingerprint is not keep and
// returns how many were removed.
func (s *Store) PruneExcept(ctx context.Context, keep string) (int, error) {
	var stale [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if strings.TrimPrefix(string(key), snapshotKeyPrefix) != keep {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete snapshot %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (s *Store) getRecord(fingerprint string) (*record, error) {
	var rec record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(fingerprint))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return algorithms.ErrSnapshotNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func snapshotKey(fingerprint string) []byte {
	return []byte(snapshotKeyPrefix + fingerprint)
}
