// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/itemcf/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"itemcf.yaml",
	"itemcf.yml",
	"config.yaml",
	"config.yml",
	"/etc/itemcf/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Neighbors:       engine.Neighbors,
			Recommendations: engine.Recommendations,
			TrainPercent:    engine.TrainPercent,
			KnownItems:      engine.KnownItems,
			KnownUsers:      engine.KnownUsers,
			Seed:            engine.Seed,
			Workers:         engine.Workers, // 0 = use runtime.NumCPU()
			MaxItems:        engine.MaxItems,
		},
		Input: InputConfig{
			Path: "./col_matrix.csv",
		},
		Output: OutputConfig{
			PredictionPath: "test_prediction.csv",
			ReportPath:     "",
		},
		Server: ServerConfig{
			Enabled:         false, // batch mode by default
			Addr:            ":9464",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Cache: CacheConfig{
			Enabled:  false,
			Path:     "./data/neighborhoods",
			InMemory: false,
			TTL:      0, // no expiry
			Keep:     8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: built-in values from recommend.DefaultConfig and above
//  2. Config File: optional YAML file (path, CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: override any mapped setting
//
// An explicit path that does not exist is an error; the implicit search is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// ITEMCF_NEIGHBORS -> engine.neighbors
	// LOG_LEVEL -> logging.level
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveConfigPath returns the file to load, or "" when none applies.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	return findConfigFile(), nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unlisted variables are ignored so the process environment cannot leak
// into the configuration.
var envMappings = map[string]string{
	// Engine mappings
	"itemcf_neighbors":       "engine.neighbors",
	"itemcf_recommendations": "engine.recommendations",
	"itemcf_train_percent":   "engine.train_percent",
	"itemcf_known_items":     "engine.known_items",
	"itemcf_known_users":     "engine.known_users",
	"itemcf_seed":            "engine.seed",
	"itemcf_workers":         "engine.workers",
	"itemcf_max_items":       "engine.max_items",

	// Input/output mappings
	"itemcf_input":           "input.path",
	"itemcf_prediction_path": "output.prediction_path",
	"itemcf_report_path":     "output.report_path",

	// Server mappings
	"itemcf_server_enabled": "server.enabled",
	"http_addr":             "server.addr",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",

	// Cache mappings
	"itemcf_cache_enabled":   "cache.enabled",
	"itemcf_cache_path":      "cache.path",
	"itemcf_cache_in_memory": "cache.in_memory",
	"itemcf_cache_ttl":       "cache.ttl",
	"itemcf_cache_keep":      "cache.keep",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - ITEMCF_NEIGHBORS -> engine.neighbors
//   - ITEMCF_CACHE_TTL -> cache.ttl
//   - HTTP_ADDR -> server.addr
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
