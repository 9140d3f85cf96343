// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend/algorithms"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCatalog(tags ...string) *catalog.Catalog {
	products := make([]catalog.Product, len(tags))
	for i, tag := range tags {
		products[i] = catalog.Product{
			ProdID: string(rune('a' + i)),
			Name:   "product " + string(rune('a'+i)),
			Tags:   tag,
		}
	}
	return catalog.New(products)
}

func testSnapshot(t *testing.T, cat *catalog.Catalog) *algorithms.IndexSnapshot {
	t.Helper()
	idx, err := algorithms.BuildContentIndex(context.Background(), cat)
	if err != nil {
		t.Fatalf("BuildContentIndex() error = %v", err)
	}
	return idx.Snapshot()
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    func(t *testing.T) Options
		wantErr bool
	}{
		{
			name:    "in memory",
			opts:    func(t *testing.T) Options { return Options{InMemory: true} },
			wantErr: false,
		},
		{
			name:    "creates directory if not exists",
			opts:    func(t *testing.T) Options { return Options{Path: filepath.Join(t.TempDir(), "snapshots")} },
			wantErr: false,
		},
		{
			name:    "missing path",
			opts:    func(t *testing.T) Options { return Options{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.opts(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				if err := store.Close(); err != nil {
					t.Errorf("Close() error = %v", err)
				}
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	cat := testCatalog("red shoe", "red sneaker", "blue hat", "")
	snap := testSnapshot(t, cat)

	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, snap.Fingerprint)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}

	if !slices.Equal(loaded.Vocabulary, snap.Vocabulary) {
		t.Errorf("Vocabulary = %v, want %v", loaded.Vocabulary, snap.Vocabulary)
	}
	if !slices.Equal(loaded.IDF, snap.IDF) {
		t.Errorf("IDF = %v, want %v", loaded.IDF, snap.IDF)
	}
	if len(loaded.Rows) != len(snap.Rows) {
		t.Fatalf("len(Rows) = %d, want %d", len(loaded.Rows), len(snap.Rows))
	}
	for i := range snap.Rows {
		if !slices.Equal(loaded.Rows[i].Terms, snap.Rows[i].Terms) || !slices.Equal(loaded.Rows[i].Weights, snap.Rows[i].Weights) {
			t.Errorf("row %d = %+v, want %+v", i, loaded.Rows[i], snap.Rows[i])
		}
	}
	if !loaded.BuiltAt.Equal(snap.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", loaded.BuiltAt, snap.BuiltAt)
	}
	if loaded.FormatVersion != algorithms.IndexFormatVersion {
		t.Errorf("FormatVersion = %d, want %d", loaded.FormatVersion, algorithms.IndexFormatVersion)
	}

	// The restored index must rank exactly like the freshly built one.
	if _, err := algorithms.RestoreContentIndex(cat, loaded); err != nil {
		t.Errorf("RestoreContentIndex() error = %v", err)
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LoadSnapshot(context.Background(), "missing")
	if !errors.Is(err, algorithms.ErrSnapshotNotFound) {
		t.Errorf("LoadSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestStore_SaveRequiresFingerprint(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SaveSnapshot(context.Background(), nil); err == nil {
		t.Error("SaveSnapshot(nil) should fail")
	}
	if err := store.SaveSnapshot(context.Background(), &algorithms.IndexSnapshot{}); err == nil {
		t.Error("SaveSnapshot() without fingerprint should fail")
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap := testSnapshot(t, testCatalog("red shoe"))
	if err := store.SaveSnapshot(ctx, snap); !errors.Is(err, context.Canceled) {
		t.Errorf("SaveSnapshot() error = %v, want context.Canceled", err)
	}
	if _, err := store.LoadSnapshot(ctx, snap.Fingerprint); !errors.Is(err, context.Canceled) {
		t.Errorf("LoadSnapshot() error = %v, want context.Canceled", err)
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	snap := testSnapshot(t, testCatalog("red shoe", "blue hat"))
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	// Rewrite the record with a bogus checksum.
	rec, err := store.getRecord(snap.Fingerprint)
	if err != nil {
		t.Fatalf("getRecord() error = %v", err)
	}
	rec.Metadata.Checksum = "deadbeef"
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	err = store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snap.Fingerprint), data)
	})
	if err != nil {
		t.Fatalf("rewrite record: %v", err)
	}

	if _, err := store.LoadSnapshot(ctx, snap.Fingerprint); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("LoadSnapshot() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestStore_MetadataAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := testSnapshot(t, testCatalog("red shoe", "blue hat"))
	second := testSnapshot(t, testCatalog("green lamp"))
	for _, s := range []*algorithms.IndexSnapshot{first, second} {
		if err := store.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
	}

	meta, err := store.Metadata(first.Fingerprint)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if meta.Rows != 2 || meta.VocabularySize != len(first.Vocabulary) {
		t.Errorf("Metadata() = %+v, want 2 rows and %d terms", meta, len(first.Vocabulary))
	}
	if meta.Checksum == "" || meta.SizeBytes <= 0 {
		t.Errorf("Metadata() missing checksum or size: %+v", meta)
	}
	if time.Since(meta.SavedAt) > time.Minute {
		t.Errorf("SavedAt = %v, want recent", meta.SavedAt)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List() returned %d snapshots, want 2", len(list))
	}
}

func TestStore_DeleteAndPrune(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	snaps := []*algorithms.IndexSnapshot{
		testSnapshot(t, testCatalog("red shoe")),
		testSnapshot(t, testCatalog("blue hat")),
		testSnapshot(t, testCatalog("green lamp")),
	}
	for _, s := range snaps {
		if err := store.SaveSnapshot(ctx, s); err != nil {
			t.Fatalf("SaveSnapshot() error = %v", err)
		}
	}

	if err := store.Delete(ctx, snaps[0].Fingerprint); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.LoadSnapshot(ctx, snaps[0].Fingerprint); !errors.Is(err, algorithms.ErrSnapshotNotFound) {
		t.Errorf("deleted snapshot still loads: %v", err)
	}
	if err := store.Delete(ctx, "never-stored"); err != nil {
		t.Errorf("Delete() of missing snapshot error = %v", err)
	}

	removed, err := store.PruneExcept(ctx, snaps[2].Fingerprint)
	if err != nil {
		t.Fatalf("PruneExcept() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("PruneExcept() removed %d, want 1", removed)
	}
	if _, err := store.LoadSnapshot(ctx, snaps[2].Fingerprint); err != nil {
		t.Errorf("kept snapshot failed to load: %v", err)
	}

	if removed, _ := store.PruneExcept(ctx, snaps[2].Fingerprint); removed != 0 {
		t.Errorf("second PruneExcept() removed %d, want 0", removed)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	snap := testSnapshot(t, testCatalog("red shoe", "blue hat"))

	store, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	if _, err := reopened.LoadSnapshot(ctx, snap.Fingerprint); err != nil {
		t.Errorf("LoadSnapshot() after reopen error = %v", err)
	}
}

func TestStore_WithIndexBuilder(t *testing.T) {
	store := setupTestStore(t)
	cat := testCatalog("red shoe", "red sneaker", "blue hat")
	build := algorithms.NewIndexBuilder(store, zerolog.Nop())

	built, err := build(context.Background(), cat)
	if err != nil {
		t.Fatalf("first build error = %v", err)
	}
	if _, err := store.Metadata(cat.Fingerprint()); err != nil {
		t.Fatalf("builder did not save a snapshot: %v", err)
	}

	restored, err := build(context.Background(), cat)
	if err != nil {
		t.Fatalf("second build error = %v", err)
	}

	want := built.Similar("product a", 2)
	got := restored.Similar("product a", 2)
	if !slices.Equal(got.ProdIDs(), want.ProdIDs()) {
		t.Errorf("restored Similar() = %v, want %v", got.ProdIDs(), want.ProdIDs())
	}
	for i := range want {
		if got[i].Score != want[i].Score {
			t.Errorf("restored score[%d] = %v, want %v", i, got[i].Score, want[i].Score)
		}
	}
}

func TestNewStoreFromDB(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStoreFromDB(db)
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The borrowed database stays open.
	snap := testSnapshot(t, testCatalog("red shoe"))
	if err := store.SaveSnapshot(context.Background(), snap); err != nil {
		t.Errorf("SaveSnapshot() after Close() error = %v", err)
	}
}
