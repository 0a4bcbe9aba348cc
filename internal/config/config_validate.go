// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tomtom215/itemcf/internal/validation"
)

// Validate checks field constraints, then the rules that span sections.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.Engine.RecommendConfig().Validate(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	return c.validatePaths()
}

func (c *Config) validateServer() error {
	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.addr is required when server.enabled=true")
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return errors.New("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && !c.Cache.InMemory && c.Cache.Path == "" {
		return errors.New("cache.path is required unless cache.in_memory=true")
	}
	return nil
}

// validatePaths rejects outputs that would overwrite the input matrix.
func (c *Config) validatePaths() error {
	in := filepath.Clean(c.Input.Path)
	if filepath.Clean(c.Output.PredictionPath) == in {
		return fmt.Errorf("output.prediction_path must differ from input.path (%s)", c.Input.Path)
	}
	if c.Output.ReportPath != "" && filepath.Clean(c.Output.ReportPath) == in {
		return fmt.Errorf("output.report_path must differ from input.path (%s)", c.Input.Path)
	}
	return nil
}

// normalize lowercases enumerated values so LOG_LEVEL=DEBUG is accepted.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}
