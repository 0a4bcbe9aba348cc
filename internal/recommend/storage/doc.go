// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package storage persists neighborhood tables in BadgerDB so repeated runs
// over an unchanged dataset skip the similarity computation.
//
// # Keys
//
// Tables are stored under "neighborhood:" + recommend.NeighborhoodKey, which
// combines the SHA-256 fingerprint of the rating matrix with K. A changed
// matrix or a different K never hits a stale entry.
//
// # Storage Format
//
// Each value is a gob-encoded envelope:
//
//	storedEntry
//	  Metadata        ModelMetadata   (items, K, checksum, sizes, saved_at)
//	  CompressedData  gzip(gob(NeighborhoodTable))
//
// The checksum is the SHA-256 of the uncompressed gob bytes and is verified
// on every load; a mismatch is reported as ErrCorrupt.
//
// # Usage
//
//	store, err := storage.Open(storage.Config{Path: "/var/lib/itemcf/models"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	engine.SetModelStore(store)
//
// # Thread Safety
//
// Store is safe for concurrent use; BadgerDB transactions provide isolation.
package storage
