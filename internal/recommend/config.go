// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"fmt"
	"runtime"
)

// Config contains all configuration for the collaborative filtering engine.
type Config struct {
	// Neighbors is K, the number of similar items kept per item.
	Neighbors int `json:"neighbors"`

	// Recommendations is N, the number of items recommended per user.
	Recommendations int `json:"recommendations"`

	// TrainPercent is the probability (in percent) that a cell lands in the
	// training set during evaluation.
	TrainPercent int `json:"train_percent"`

	// KnownItems is the number of leading item columns that are observed in
	// blank rows. Later columns are predicted.
	KnownItems int `json:"known_items"`

	// KnownUsers is the number of leading rows that are fully observed.
	// Later rows are blank rows to complete.
	KnownUsers int `json:"known_users"`

	// Seed drives the train/test split. Zero selects DefaultSeed.
	Seed int64 `json:"seed"`

	// Workers bounds the goroutines used by data-parallel stages.
	// Zero means runtime.NumCPU().
	Workers int `json:"workers"`

	// MaxItems is the largest catalog the engine will build a similarity
	// matrix for.
	MaxItems int `json:"max_items"`
}

// DefaultConfig returns the configuration the reference dataset was tuned
// with: 20 neighbors, 10 recommendations, a 75/25 split, 4100 fully known
// users and 2700 known items per blank row.
func DefaultConfig() *Config {
	return &Config{
		Neighbors:       20,
		Recommendations: 10,
		TrainPercent:    75,
		KnownItems:      2700,
		KnownUsers:      4100,
		Seed:            DefaultSeed,
		Workers:         0,
		MaxItems:        20000,
	}
}

// Validate checks the dataset-independent constraints. Limits that depend
// on the catalog size are checked by Engine.CheckDataset.
func (c *Config) Validate() error {
	if c.Neighbors < 1 {
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrConfiguration, c.Neighbors)
	}
	if c.Recommendations < 1 {
		return fmt.Errorf("%w: recommendations must be positive, got %d", ErrConfiguration, c.Recommendations)
	}
	if c.TrainPercent < 0 || c.TrainPercent > 100 {
		return fmt.Errorf("%w: train_percent must be in [0, 100], got %d", ErrConfiguration, c.TrainPercent)
	}
	if c.KnownItems < 0 {
		return fmt.Errorf("%w: known_items must be non-negative, got %d", ErrConfiguration, c.KnownItems)
	}
	if c.KnownUsers < 0 {
		return fmt.Errorf("%w: known_users must be non-negative, got %d", ErrConfiguration, c.KnownUsers)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrConfiguration, c.Workers)
	}
	if c.MaxItems < 1 {
		return fmt.Errorf("%w: max_items must be positive, got %d", ErrConfiguration, c.MaxItems)
	}
	return nil
}

// EffectiveSeed returns Seed, or DefaultSeed when Seed is zero.
func (c *Config) EffectiveSeed() int64 {
	if c.Seed == 0 {
		return DefaultSeed
	}
	return c.Seed
}

// EffectiveWorkers returns Workers, or the CPU count when Workers is zero.
func (c *Config) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
