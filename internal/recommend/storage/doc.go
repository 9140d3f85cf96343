// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

// Package storage persists similarity index snapshots in BadgerDB.
//
// Building the TF-IDF index over a full catalog export is the slowest part of
// startup. The store keeps one snapshot per catalog fingerprint so a restart
// against an unchanged catalog restores the index instead of rebuilding it.
//
// # Storage Format
//
// Each snapshot lives under a single key:
//
//	index/{fingerprint}
//
// The value is a JSON record holding SnapshotMetadata and the gzip-compressed
// JSON encoding of the snapshot. The metadata carries a SHA-256 checksum of
// the uncompressed payload, verified on every load.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Options{Path: "/data/snapshots"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	build := algorithms.NewIndexBuilder(store, logger)
//
// Snapshots for catalogs other than the current one can be removed with
// PruneExcept once the catalog is loaded.
//
// # Thread Safety
//
// Store is safe for concurrent use. BadgerDB transactions provide isolation
// between readers and writers.
package storage
