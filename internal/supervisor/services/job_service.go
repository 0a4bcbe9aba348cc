// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/itemcf/internal/dataset"
	"github.com/tomtom215/itemcf/internal/logging"
	"github.com/tomtom215/itemcf/internal/metrics"
	"github.com/tomtom215/itemcf/internal/recommend"
)

// BatchEngine is the part of *recommend.Engine the job drives.
type BatchEngine interface {
	Config() recommend.Config
	CheckDataset(m recommend.RatingMatrix) error
	Evaluate(ctx context.Context, m recommend.RatingMatrix) (*recommend.Evaluation, error)
	Complete(ctx context.Context, full, blank recommend.RatingMatrix) (recommend.RatingMatrix, error)
}

// ModelPruner trims the neighborhood store after a run.
type ModelPruner interface {
	Prune(ctx context.Context, keep int) (int, error)
}

// JobConfig holds configuration for the batch job.
type JobConfig struct {
	InputPath      string
	PredictionPath string

	// ReportPath receives the JSON run report. Empty skips the file.
	ReportPath string

	// ExitWhenDone ends the supervisor tree after the run. Otherwise the job
	// steps aside and the rest of the tree keeps running.
	ExitWhenDone bool

	// CacheEnabled reports whether the engine has a model store, so cache
	// lookups are counted.
	CacheEnabled bool

	// CacheKeep is passed to ModelPruner.Prune after the run. 0 skips pruning.
	CacheKeep int
}

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// RunTimings are the wall-clock durations of the batch phases.
type RunTimings struct {
	Load     time.Duration `json:"load"`
	Evaluate time.Duration `json:"evaluate"`
	Complete time.Duration `json:"complete"`
	Save     time.Duration `json:"save"`
}

// RunReport describes one batch run. It is written to the report file and
// served by the API.
type RunReport struct {
	RunID          string                `json:"run_id"`
	Status         string                `json:"status"`
	Error          string                `json:"error,omitempty"`
	ErrorKind      string                `json:"error_kind,omitempty"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     *time.Time            `json:"finished_at,omitempty"`
	InputPath      string                `json:"input_path"`
	PredictionPath string                `json:"prediction_path"`
	Users          int                   `json:"users"`
	Items          int                   `json:"items"`
	KnownUsers     int                   `json:"known_users"`
	BlankUsers     int                   `json:"blank_users"`
	PredictedCells int                   `json:"predicted_cells"`
	Evaluation     *recommend.Evaluation `json:"evaluation,omitempty"`
	Timings        RunTimings            `json:"timings"`
}

// JobService runs the batch once under supervision: load the matrix,
// evaluate the hit-rate on the known rows, predict the blank rows and save
// the known rows followed by the predictions.
type JobService struct {
	engine BatchEngine
	pruner ModelPruner
	config JobConfig
	logger zerolog.Logger
	name   string

	mu     sync.RWMutex
	report *RunReport
	err    error

	done     chan struct{}
	doneOnce sync.Once
}

// NewJobService creates a new batch job service. pruner may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJobService(engine BatchEngine, pruner ModelPruner, cfg JobConfig, logger zerolog.Logger) *JobService {
	return &JobService{
		engine: engine,
		pruner: pruner,
		config: cfg,
		logger: logger.With().Str("service", "job").Logger(),
		name:   "job-service",
		done:   make(chan struct{}),
	}
}

// Serve implements suture.Service. The run is never retried: the service
// returns suture.ErrDoNotRestart or suture.ErrTerminateSupervisorTree
// whatever the outcome, and the outcome is available from Err and Report.
func (s *JobService) Serve(ctx context.Context) error {
	select {
	case <-s.done:
		return suture.ErrDoNotRestart
	default:
	}

	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	ctx = logging.ContextWithLogger(ctx, s.logger)

	report := &RunReport{
		RunID:          runID,
		Status:         StatusRunning,
		StartedAt:      time.Now().UTC(),
		InputPath:      s.config.InputPath,
		PredictionPath: s.config.PredictionPath,
	}
	s.publish(report)

	err := s.run(ctx, report)
	s.finish(ctx, report, err)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.config.ExitWhenDone {
		return fmt.Errorf("batch run %s finished: %w", runID, suture.ErrTerminateSupervisorTree)
	}
	return suture.ErrDoNotRestart
}

// run fills report as phases complete and publishes a copy after each one.
func (s *JobService) run(ctx context.Context, report *RunReport) error {
	log := logging.Ctx(ctx)
	log.Info().
		Str("input", s.config.InputPath).
		Str("output", s.config.PredictionPath).
		Msg("batch run starting")

	start := time.Now()
	m, err := dataset.ReadFile(s.config.InputPath)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	report.Timings.Load = time.Since(start)
	report.Users = m.Users()
	report.Items = m.Items()
	s.publish(report)
	metrics.RecordPhase(metrics.PhaseLoad, report.Timings.Load)
	log.Info().
		Int("users", report.Users).
		Int("items", report.Items).
		Dur("duration", report.Timings.Load).
		Msg("dataset loaded")

	if err := s.engine.CheckDataset(m); err != nil {
		return err
	}
	known, blank, err := dataset.Partition(m, s.engine.Config().KnownUsers)
	if err != nil {
		return err
	}
	report.KnownUsers = known.Users()
	report.BlankUsers = blank.Users()
	s.publish(report)

	start = time.Now()
	eval, err := s.engine.Evaluate(ctx, known)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	report.Timings.Evaluate = time.Since(start)
	report.Evaluation = eval
	s.publish(report)
	s.recordEvaluation(eval)
	log.Info().
		Float64("hit_rate", eval.HitRate).
		Dur("duration", report.Timings.Evaluate).
		Msg("hit rate measured")

	start = time.Now()
	predicted, err := s.engine.Complete(ctx, known, blank)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	report.Timings.Complete = time.Since(start)
	report.PredictedCells = blank.Users() * (m.Items() - s.engine.Config().KnownItems)
	metrics.RecordPhase(metrics.PhaseComplete, report.Timings.Complete)
	metrics.RecordPredictions(report.PredictedCells)

	start = time.Now()
	if err := dataset.WriteFile(s.config.PredictionPath, known, predicted); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	report.Timings.Save = time.Since(start)
	metrics.RecordPhase(metrics.PhaseSave, report.Timings.Save)
	log.Info().
		Str("output", s.config.PredictionPath).
		Int("predicted_cells", report.PredictedCells).
		Dur("complete", report.Timings.Complete).
		Dur("save", report.Timings.Save).
		Msg("predictions saved")

	s.prune(ctx)
	return nil
}

func (s *JobService) recordEvaluation(eval *recommend.Evaluation) {
	metrics.RecordEvaluation(eval.HitRate, eval.Hits, eval.Users)
	metrics.RecordRecommendations(eval.Users * eval.Recommendations)
	metrics.RecordPhase(metrics.PhaseSplit, eval.Timings.Split)
	metrics.RecordPhase(metrics.PhaseScoring, eval.Timings.Scoring)
	if s.config.CacheEnabled {
		metrics.RecordModelCache(eval.CacheHit)
	}
	if !eval.CacheHit {
		metrics.RecordSimilarity(recommend.SimilarityCells(eval.Items))
		metrics.RecordPhase(metrics.PhaseSimilarity, eval.Timings.Similarity)
		metrics.RecordPhase(metrics.PhaseNeighborhood, eval.Timings.Neighborhood)
	}
}

// prune failures are logged only; the run already succeeded.
func (s *JobService) prune(ctx context.Context) {
	if s.pruner == nil || s.config.CacheKeep <= 0 {
		return
	}
	deleted, err := s.pruner.Prune(ctx, s.config.CacheKeep)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("model store prune failed")
		return
	}
	if deleted > 0 {
		logging.Ctx(ctx).Debug().Int("deleted", deleted).Msg("model store pruned")
	}
}

func (s *JobService) finish(ctx context.Context, report *RunReport, err error) {
	log := logging.Ctx(ctx)
	finished := time.Now().UTC()

	report.FinishedAt = &finished
	if err != nil {
		report.Status = StatusFailure
		report.Error = err.Error()
		report.ErrorKind = recommend.ErrorKind(err)
	} else {
		report.Status = StatusSuccess
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.publish(report)

	metrics.RecordRun(finished, report.ErrorKind, err)

	if err != nil {
		log.Error().Err(err).Str("kind", report.ErrorKind).Msg("batch run failed")
	} else {
		log.Info().Dur("total", finished.Sub(report.StartedAt)).Msg("batch run complete")
	}

	if s.config.ReportPath != "" {
		if werr := writeReport(s.config.ReportPath, *report); werr != nil {
			log.Warn().Err(werr).Str("path", s.config.ReportPath).Msg("failed to write run report")
		}
	}

	s.doneOnce.Do(func() { close(s.done) })
}

// publish stores a copy of r for concurrent readers.
func (s *JobService) publish(r *RunReport) {
	cp := *r
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &cp
}

// Report returns a copy of the current or last run report. ok is false
// before the job has started.
func (s *JobService) Report() (report RunReport, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return RunReport{}, false
	}
	return *s.report, true
}

// Done is closed when the run has finished.
func (s *JobService) Done() <-chan struct{} {
	return s.done
}

// Err returns the run error, nil on success or before the run finished.
func (s *JobService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// String returns the service name for logging.
func (s *JobService) String() string {
	return s.name
}

// writeReport writes r as indented JSON, creating parent directories.
func writeReport(path string, r RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
