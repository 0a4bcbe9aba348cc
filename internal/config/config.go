// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package config loads itemcf configuration from struct defaults, an optional
// YAML file and environment variables, in that order of precedence (lowest
// first), using koanf v2.
//
// Configuration Sections:
//   - engine: collaborative filtering parameters (K, N, train split, seed)
//   - input: rating matrix location
//   - output: completed matrix and run report locations
//   - server: optional HTTP surface for health, report and metrics
//   - cache: optional badger store for neighborhood tables
//   - logging: zerolog level and format
package config

import (
	"time"

	"github.com/tomtom215/itemcf/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `koanf:"engine"`
	Input   InputConfig   `koanf:"input"`
	Output  OutputConfig  `koanf:"output"`
	Server  ServerConfig  `koanf:"server"`
	Cache   CacheConfig   `koanf:"cache"`
	Logging LoggingConfig `koanf:"logging"`
}

// EngineConfig mirrors recommend.Config with koanf keys.
type EngineConfig struct {
	// Neighbors is K, the neighborhood size per item.
	Neighbors int `koanf:"neighbors" validate:"min=1"`

	// Recommendations is N, the list length per user.
	Recommendations int `koanf:"recommendations" validate:"min=1"`

	// TrainPercent is the chance, in percent, that a rating stays in the
	// training matrix.
	TrainPercent int `koanf:"train_percent" validate:"min=0,max=100"`

	// KnownItems is the number of leading item columns that are never predicted.
	KnownItems int `koanf:"known_items" validate:"min=0"`

	// KnownUsers is the number of leading rows with complete ratings.
	KnownUsers int `koanf:"known_users" validate:"min=0"`

	// Seed drives the train/test split. 0 selects the default seed.
	Seed int64 `koanf:"seed"`

	// Workers bounds data-parallel stages. 0 = runtime.NumCPU().
	Workers int `koanf:"workers" validate:"min=0"`

	// MaxItems caps the catalog size (the similarity matrix is items² float64s).
	MaxItems int `koanf:"max_items" validate:"min=1"`
}

// InputConfig locates the rating matrix.
type InputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// OutputConfig locates the batch outputs.
type OutputConfig struct {
	// PredictionPath receives the known rows followed by the completed rows.
	PredictionPath string `koanf:"prediction_path" validate:"required"`

	// ReportPath receives the JSON run report. Empty disables the file.
	ReportPath string `koanf:"report_path"`
}

// ServerConfig configures the optional HTTP surface.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Addr            string        `koanf:"addr" validate:"omitempty,hostname_port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`

	// RateLimitReqs requests per RateLimitWindow per client IP. 0 disables.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=0"`
}

// CacheConfig configures the badger neighborhood store.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Path     string        `koanf:"path"`
	InMemory bool          `koanf:"in_memory"`
	TTL      time.Duration `koanf:"ttl" validate:"min=0"`

	// Keep bounds how many tables survive a prune after each save. 0 keeps all.
	Keep int `koanf:"keep" validate:"min=0"`
}

// LoggingConfig configures the zerolog global logger.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is the output format: json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// RecommendConfig converts the engine section for recommend.NewEngine.
func (c *EngineConfig) RecommendConfig() *recommend.Config {
	return &recommend.Config{
		Neighbors:       c.Neighbors,
		Recommendations: c.Recommendations,
		TrainPercent:    c.TrainPercent,
		KnownItems:      c.KnownItems,
		KnownUsers:      c.KnownUsers,
		Seed:            c.Seed,
		Workers:         c.Workers,
		MaxItems:        c.MaxItems,
	}
}
