// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/itemcf/internal/config"
	"github.com/tomtom215/itemcf/internal/logging"
	"github.com/tomtom215/itemcf/internal/recommend"
	"github.com/tomtom215/itemcf/internal/recommend/storage"
	"github.com/tomtom215/itemcf/internal/supervisor/services"
)

// RecommendComponents holds the engine and its optional model store.
type RecommendComponents struct {
	Engine *recommend.Engine
	Store  *storage.Store
}

// initRecommend builds the engine and, when the cache is enabled, opens
// the neighborhood store and attaches it.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	engine, err := recommend.NewEngine(cfg.Engine.RecommendConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	c := &RecommendComponents{Engine: engine}

	if !cfg.Cache.Enabled {
		logger.Debug().Msg("neighborhood cache disabled")
		return c, nil
	}

	store, err := storage.Open(storage.Config{
		Path:     cfg.Cache.Path,
		InMemory: cfg.Cache.InMemory,
		TTL:      cfg.Cache.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open neighborhood store %s: %w", cfg.Cache.Path, err)
	}
	engine.SetModelStore(store)
	c.Store = store

	logger.Info().
		Str("path", cfg.Cache.Path).
		Bool("in_memory", cfg.Cache.InMemory).
		Dur("ttl", cfg.Cache.TTL).
		Int("keep", cfg.Cache.Keep).
		Msg("neighborhood cache enabled")
	return c, nil
}

// pruner returns the store as a ModelPruner, or nil without a store.
func (c *RecommendComponents) pruner() services.ModelPruner {
	if c.Store == nil {
		return nil
	}
	return c.Store
}

// Close releases the model store.
func (c *RecommendComponents) Close() {
	if c.Store == nil {
		return
	}
	if err := c.Store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing neighborhood store")
	}
}
