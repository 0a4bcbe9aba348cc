// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package storage

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/itemcf/internal/recommend"
)

func sampleTable() recommend.NeighborhoodTable {
	return recommend.NeighborhoodTable{
		{{Weight: 0.5, Index: 2}, {Weight: 0.5, Index: 1}},
		{{Weight: 0.5, Index: 2}, {Weight: 0.5, Index: 0}},
		{{Weight: 0.5, Index: 1}, {Weight: 0.5, Index: 0}},
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(t *testing.T) Config
		wantErr bool
	}{
		{
			name:    "in memory",
			cfg:     func(*testing.T) Config { return Config{InMemory: true} },
			wantErr: false,
		},
		{
			name: "creates directory if not exists",
			cfg: func(t *testing.T) Config {
				return Config{Path: filepath.Join(t.TempDir(), "models")}
			},
			wantErr: false,
		},
		{
			name:    "path required on disk",
			cfg:     func(*testing.T) Config { return Config{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg(t))
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
	store := openTestStore(t)
	ctx := context.Background()
	table := sampleTable()

	meta, err := store.Save(ctx, "abc:k=2", table)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Items != 3 || meta.Neighbors != 2 || meta.Key != "abc:k=2" {
		t.Errorf("metadata = %+v", meta)
	}
	if len(meta.Checksum) != 64 || meta.SizeBytes == 0 || meta.RawBytes == 0 {
		t.Errorf("checksum/sizes not populated: %+v", meta)
	}

	loaded, loadedMeta, err := store.Load(ctx, "abc:k=2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, table) {
		t.Errorf("Load() = %v, want %v", loaded, table)
	}
	if loadedMeta.Checksum != meta.Checksum {
		t.Errorf("checksum = %s, want %s", loadedMeta.Checksum, meta.Checksum)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store := openTestStore(t)

	if _, _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}

	table, found, err := store.LoadNeighborhood(context.Background(), "missing")
	if err != nil || found || table != nil {
		t.Errorf("LoadNeighborhood() = %v, %v, %v; want nil, false, nil", table, found, err)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Not a gob envelope at all.
	err := store.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixNeighborhood+"garbage"), []byte("not gob"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(ctx, "garbage"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load(garbage) error = %v, want ErrCorrupt", err)
	}

	// Valid envelope with a wrong checksum.
	if _, err := store.Save(ctx, "tampered", sampleTable()); err != nil {
		t.Fatal(err)
	}
	err = store.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixNeighborhood + "tampered"))
		if err != nil {
			return err
		}
		var entry storedEntry
		if err := item.Value(func(val []byte) error { return decodeEntry(val, &entry) }); err != nil {
			return err
		}
		entry.Metadata.Checksum = "deadbeef"
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(entry); err != nil {
			return err
		}
		return txn.Set([]byte(prefixNeighborhood+"tampered"), buf.Bytes())
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(ctx, "tampered"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load(tampered) error = %v, want ErrCorrupt", err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(Config{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, "persist", sampleTable()); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = reopened.Close() }()

	table, found, err := reopened.LoadNeighborhood(ctx, "persist")
	if err != nil || !found {
		t.Fatalf("LoadNeighborhood() found = %v, err = %v", found, err)
	}
	if !reflect.DeepEqual(table, sampleTable()) {
		t.Errorf("reopened table = %v", table)
	}
}

func TestStore_ListDeletePrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if _, err := store.Save(ctx, key, sampleTable()); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	models, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 3 || models[0].Key != "c" || models[2].Key != "a" {
		t.Fatalf("List() = %+v, want c, b, a", models)
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "never-saved"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}

	deleted, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d, want 1", deleted)
	}
	models, err = store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 || models[0].Key != "c" {
		t.Errorf("after prune List() = %+v, want only c", models)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "k", sampleTable()); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if _, _, err := store.Load(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestStore_AsEngineModelStore(t *testing.T) {
	store := openTestStore(t)

	cfg := recommend.DefaultConfig()
	cfg.Neighbors = 2
	cfg.Recommendations = 1
	engine, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	engine.SetModelStore(store)

	m := recommend.RatingMatrix{{1, 2, 3}, {4, 5, 6}, {1, 0, 2}}
	first, err := engine.Evaluate(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Evaluate(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("cache hits = %v, %v; want false, true", first.CacheHit, second.CacheHit)
	}
	if first.HitRate != second.HitRate {
		t.Errorf("hit rate changed from %v to %v", first.HitRate, second.HitRate)
	}

	models, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 1 || models[0].Neighbors != 2 || models[0].Items != 3 {
		t.Errorf("List() = %+v", models)
	}
}
