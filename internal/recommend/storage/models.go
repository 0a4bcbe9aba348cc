// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/itemcf/internal/logging"
	"github.com/tomtom215/itemcf/internal/recommend"
)

// Key prefix for neighborhood tables.
const prefixNeighborhood = "neighborhood:"

var (
	// ErrNotFound is returned by Load when no table is stored under the key.
	ErrNotFound = errors.New("model not found")

	// ErrCorrupt is returned when a stored value fails its checksum or
	// cannot be decoded.
	ErrCorrupt = errors.New("model corrupt")
)

// Config configures the model store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests and one-off runs.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// TTL expires entries after the given duration. Zero keeps them forever.
	TTL time.Duration
}

// ModelMetadata contains information about a stored neighborhood table.
type ModelMetadata struct {
	// Key is the caller's key without the storage prefix.
	Key string `json:"key"`

	// Items is the number of rows in the table.
	Items int `json:"items"`

	// Neighbors is the table width K.
	Neighbors int `json:"neighbors"`

	// SavedAt is when the table was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed encoding.
	Checksum string `json:"checksum"`

	// RawBytes is the uncompressed encoding size.
	RawBytes int64 `json:"raw_bytes"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedEntry is the value format.
type storedEntry struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store persists neighborhood tables in BadgerDB. It implements
// recommend.ModelStore.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

var _ recommend.ModelStore = (*Store)(nil)

// Open opens (or creates) a model store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("model store path is required unless in-memory")
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("ttl", cfg.TTL).
		Msg("model store opened")

	return &Store{db: db, ttl: cfg.TTL}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}

// Save encodes, compresses and stores table under key.
func (s *Store) Save(ctx context.Context, key string, table recommend.NeighborhoodTable) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(table); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := ModelMetadata{
		Key:       key,
		Items:     len(table),
		Neighbors: table.K(),
		SavedAt:   time.Now().UTC(),
		Checksum:  hex.EncodeToString(hash[:]),
		RawBytes:  int64(raw.Len()),
		SizeBytes: int64(compressed.Len()),
	}

	var value bytes.Buffer
	if err := gob.NewEncoder(&value).Encode(storedEntry{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(prefixNeighborhood+key), value.Bytes())
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return nil, fmt.Errorf("write to BadgerDB: %w", err)
	}

	logging.Debug().
		Str("key", key).
		Int("items", meta.Items).
		Int("neighbors", meta.Neighbors).
		Int64("size_bytes", meta.SizeBytes).
		Msg("neighborhood saved")

	return &meta, nil
}

// Load returns the table stored under key, or ErrNotFound.
func (s *Store) Load(ctx context.Context, key string) (recommend.NeighborhoodTable, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var entry storedEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixNeighborhood + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decodeEntry(val, &entry)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("read from BadgerDB: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(entry.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decompress model: %v", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read decompressed data: %v", ErrCorrupt, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != entry.Metadata.Checksum {
		return nil, nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", ErrCorrupt, entry.Metadata.Checksum, checksum)
	}

	var table recommend.NeighborhoodTable
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&table); err != nil {
		return nil, nil, fmt.Errorf("%w: decode model: %v", ErrCorrupt, err)
	}

	return table, &entry.Metadata, nil
}

// LoadNeighborhood implements recommend.ModelStore.
func (s *Store) LoadNeighborhood(ctx context.Context, key string) (recommend.NeighborhoodTable, bool, error) {
	table, _, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return table, true, nil
}

// SaveNeighborhood implements recommend.ModelStore.
func (s *Store) SaveNeighborhood(ctx context.Context, key string, table recommend.NeighborhoodTable) error {
	_, err := s.Save(ctx, key, table)
	return err
}

// List returns metadata for every stored table, newest first.
func (s *Store) List(ctx context.Context) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var models []ModelMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixNeighborhood)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var entry storedEntry
				if err := decodeEntry(val, &entry); err != nil {
					return err
				}
				models = append(models, entry.Metadata)
				return nil
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping unreadable model entry")
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate BadgerDB: %w", err)
	}

	slices.SortFunc(models, func(a, b ModelMetadata) int {
		if c := b.SavedAt.Compare(a.SavedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return models, nil
}

// Delete removes the table stored under key. Deleting a missing key is not
// an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixNeighborhood + key))
	})
	if err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}

// Prune keeps the keep most recently saved tables and deletes the rest.
// It returns the number of deleted tables.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	models, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(models) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, m := range models[keep:] {
		if err := s.Delete(ctx, m.Key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func decodeEntry(val []byte, entry *storedEntry) error {
	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(entry); err != nil {
		return fmt.Errorf("%w: decode entry: %v", ErrCorrupt, err)
	}
	return nil
}
