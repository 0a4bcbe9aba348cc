// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package main is the entry point for the itemcf batch runner.
//
// One run loads a user x item rating matrix from CSV, measures the
// recommender hit-rate on the fully known users, predicts the blank cells
// of the remaining users and writes the completed matrix.
//
// # Application Architecture
//
//  1. Configuration: defaults, optional YAML file, environment (Koanf v2)
//  2. Logging: zerolog, bridged to slog for the supervisor
//  3. Engine: recommend.Engine, optionally backed by a BadgerDB neighborhood store
//  4. Supervisor tree: the batch job, plus the HTTP API when server.enabled
//
// Without the API the process exits once the run is finished. With it the
// report stays available on /api/v1/report until SIGINT or SIGTERM.
//
// # Example Usage
//
//	./itemcf -config itemcf.yaml
//
//	ITEMCF_INPUT=./col_matrix.csv ITEMCF_NEIGHBORS=20 ./itemcf
//
//	ITEMCF_SERVER_ENABLED=true HTTP_ADDR=:9464 ./itemcf
//
// # Exit Codes
//
//	0  run succeeded
//	1  run failed or the process could not start
//	2  invalid configuration
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/itemcf/internal/api"
	"github.com/tomtom215/itemcf/internal/config"
	"github.com/tomtom215/itemcf/internal/logging"
	"github.com/tomtom215/itemcf/internal/metrics"
	"github.com/tomtom215/itemcf/internal/supervisor"
	"github.com/tomtom215/itemcf/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (default: search itemcf.yaml, config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 2
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("input", cfg.Input.Path).
		Str("prediction", cfg.Output.PredictionPath).
		Int("neighbors", cfg.Engine.Neighbors).
		Int("recommendations", cfg.Engine.Recommendations).
		Int("train_percent", cfg.Engine.TrainPercent).
		Bool("server_enabled", cfg.Server.Enabled).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Configuration loaded")

	components, err := initRecommend(cfg, logging.Logger())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize recommendation engine")
		return 1
	}
	defer components.Close()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	job := services.NewJobService(components.Engine, components.pruner(), services.JobConfig{
		InputPath:      cfg.Input.Path,
		PredictionPath: cfg.Output.PredictionPath,
		ReportPath:     cfg.Output.ReportPath,
		ExitWhenDone:   !cfg.Server.Enabled,
		CacheEnabled:   components.Store != nil,
		CacheKeep:      cfg.Cache.Keep,
	}, logging.WithComponent("job"))
	tree.AddJobService(job)

	if cfg.Server.Enabled {
		router := api.NewRouter(job, api.RouterConfig{
			RateLimitRequests: cfg.Server.RateLimitReqs,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
			Version:           version,
		})
		server := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           router.Handler(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Addr, cfg.Server.ShutdownTimeout, logging.WithComponent("api")))
		logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)
	switch {
	case err == nil, supervisor.IsTermination(err):
	case errors.Is(err, context.Canceled):
		logging.Info().Msg("Shutdown requested")
	default:
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	if jobErr := job.Err(); jobErr != nil {
		logging.Error().Err(jobErr).Msg("Run failed")
		return 1
	}
	if !isDone(job) {
		logging.Warn().Msg("Stopped before the run finished")
		return 1
	}

	logging.Info().Msg("Application stopped gracefully")
	return 0
}

func isDone(job *services.JobService) bool {
	select {
	case <-job.Done():
		return true
	default:
		return false
	}
}
