// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Note: This package has no dependencies on other internal packages.
// Persistence is plugged in through the ModelStore interface.

// ModelStore persists neighborhood tables between runs. Implementations
// must be safe for concurrent use.
type ModelStore interface {
	// LoadNeighborhood returns the table stored under key. found is false
	// when nothing is stored.
	LoadNeighborhood(ctx context.Context, key string) (table NeighborhoodTable, found bool, err error)

	// SaveNeighborhood stores table under key, replacing any previous value.
	SaveNeighborhood(ctx context.Context, key string, table NeighborhoodTable) error
}

// NeighborhoodKey identifies the neighborhood table of m at width k.
func NeighborhoodKey(m RatingMatrix, k int) string {
	return m.Fingerprint() + ":k=" + strconv.Itoa(k)
}

// PhaseTimings records wall-clock time spent in each evaluation stage.
type PhaseTimings struct {
	Split        time.Duration `json:"split"`
	Similarity   time.Duration `json:"similarity"`
	Neighborhood time.Duration `json:"neighborhood"`
	Scoring      time.Duration `json:"scoring"`
}

// Evaluation is the outcome of Engine.Evaluate.
type Evaluation struct {
	HitRate         float64      `json:"hit_rate"`
	Hits            int          `json:"hits"`
	Users           int          `json:"users"`
	Items           int          `json:"items"`
	Neighbors       int          `json:"neighbors"`
	Recommendations int          `json:"recommendations"`
	TrainPercent    int          `json:"train_percent"`
	Seed            int64        `json:"seed"`
	TrainRatings    int          `json:"train_ratings"`
	TestRatings     int          `json:"test_ratings"`
	CacheHit        bool         `json:"cache_hit"`
	Timings         PhaseTimings `json:"timings"`
}

// Engine runs the evaluation and completion flows with a fixed
// configuration. It holds no state derived from the data and is safe for
// concurrent use.
type Engine struct {
	config   Config
	logger   zerolog.Logger
	splitter *Splitter

	storeMu sync.RWMutex
	store   ModelStore
}

// NewEngine creates a new engine. A nil cfg selects DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:   *cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		splitter: NewSplitter(cfg.EffectiveSeed()),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// SetModelStore enables neighborhood caching. Passing nil disables it.
func (e *Engine) SetModelStore(store ModelStore) {
	e.storeMu.Lock()
	defer e.storeMu.Unlock()
	e.store = store
}

func (e *Engine) modelStore() ModelStore {
	e.storeMu.RLock()
	defer e.storeMu.RUnlock()
	return e.store
}

// checkSize rejects empty catalogs and those whose similarity matrix would
// exceed max_items.
func (e *Engine) checkSize(items int) error {
	if items == 0 {
		return fmt.Errorf("%w: matrix has no items", ErrData)
	}
	if items > e.config.MaxItems {
		return fmt.Errorf("%w: %d items exceed max_items %d (similarity would need %d bytes)",
			ErrResource, items, e.config.MaxItems, SimilarityBytes(items))
	}
	return nil
}

// checkCatalog is checkSize plus K and N, which must fit the catalog to
// avoid a padded neighborhood or a short recommendation list.
func (e *Engine) checkCatalog(items int) error {
	if err := e.checkSize(items); err != nil {
		return err
	}
	if e.config.Neighbors > items {
		return fmt.Errorf("%w: neighbors (%d) exceeds catalog size (%d)", ErrConfiguration, e.config.Neighbors, items)
	}
	if e.config.Recommendations > items {
		return fmt.Errorf("%w: recommendations (%d) exceeds catalog size (%d)", ErrConfiguration, e.config.Recommendations, items)
	}
	return nil
}

// CheckDataset verifies that the whole input fits the configuration: the
// matrix is rectangular and non-empty, K and N fit the catalog, and the
// known user and item boundaries lie inside the matrix.
func (e *Engine) CheckDataset(m RatingMatrix) error {
	if m.Users() == 0 {
		return fmt.Errorf("%w: matrix has no users", ErrData)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if err := e.checkCatalog(m.Items()); err != nil {
		return err
	}
	if e.config.KnownUsers > m.Users() {
		return fmt.Errorf("%w: known_users (%d) exceeds user count (%d)", ErrConfiguration, e.config.KnownUsers, m.Users())
	}
	if e.config.KnownItems > m.Items() {
		return fmt.Errorf("%w: known_items (%d) exceeds item count (%d)", ErrConfiguration, e.config.KnownItems, m.Items())
	}
	return nil
}

// Evaluate splits m into train and test, builds the neighborhood table from
// train and measures the hit-rate of the top-N recommendations.
func (e *Engine) Evaluate(ctx context.Context, m RatingMatrix) (*Evaluation, error) {
	if m.Users() == 0 {
		return nil, fmt.Errorf("%w: evaluation requires at least one user", ErrData)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := e.checkCatalog(m.Items()); err != nil {
		return nil, err
	}

	eval := &Evaluation{
		Users:           m.Users(),
		Items:           m.Items(),
		Neighbors:       e.config.Neighbors,
		Recommendations: e.config.Recommendations,
		TrainPercent:    e.config.TrainPercent,
		Seed:            e.splitter.Seed(),
	}

	start := time.Now()
	train, test, err := e.splitter.Split(m, e.config.TrainPercent)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	eval.Timings.Split = time.Since(start)
	eval.TrainRatings = countRatings(train)
	eval.TestRatings = countRatings(test)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, cacheHit, err := e.neighborhood(ctx, train, &eval.Timings)
	if err != nil {
		return nil, err
	}
	eval.CacheHit = cacheHit

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	hc, err := CountHits(train, test, table, e.config.Recommendations, e.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("hit rate: %w", err)
	}
	eval.Timings.Scoring = time.Since(start)
	eval.Hits = hc.Hits
	eval.HitRate = hc.Rate()

	e.logger.Info().
		Float64("hit_rate", eval.HitRate).
		Int("hits", eval.Hits).
		Int("users", eval.Users).
		Int("items", eval.Items).
		Bool("cache_hit", eval.CacheHit).
		Dur("split", eval.Timings.Split).
		Dur("similarity", eval.Timings.Similarity).
		Dur("neighborhood", eval.Timings.Neighborhood).
		Dur("scoring", eval.Timings.Scoring).
		Msg("evaluation complete")

	return eval, nil
}

// RecommendForUser builds the neighborhood table over all of m and returns
// the top-N unrated items for row user.
func (e *Engine) RecommendForUser(ctx context.Context, m RatingMatrix, user int) ([]ScoredCandidate, error) {
	if m.Users() == 0 {
		return nil, fmt.Errorf("%w: matrix has no users", ErrData)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if user < 0 || user >= m.Users() {
		return nil, fmt.Errorf("%w: user %d out of range [0, %d)", ErrConfiguration, user, m.Users())
	}
	if err := e.checkCatalog(m.Items()); err != nil {
		return nil, err
	}

	table, _, err := e.neighborhood(ctx, m, nil)
	if err != nil {
		return nil, err
	}
	return Recommend(table, m[user], e.config.Recommendations)
}

// Complete predicts the unknown suffix of every blank row from the
// similarity of the fully known rows. The result has one row per blank row.
func (e *Engine) Complete(ctx context.Context, full, blank RatingMatrix) (RatingMatrix, error) {
	if full.Users() == 0 {
		return nil, fmt.Errorf("%w: completion requires at least one known user", ErrData)
	}
	if err := full.Validate(); err != nil {
		return nil, err
	}
	if err := e.checkSize(full.Items()); err != nil {
		return nil, err
	}
	if err := blank.Validate(); err != nil {
		return nil, err
	}
	if blank.Users() > 0 && blank.Items() != full.Items() {
		return nil, fmt.Errorf("%w: blank rows have %d items, known rows have %d", ErrData, blank.Items(), full.Items())
	}
	if e.config.KnownItems > full.Items() {
		return nil, fmt.Errorf("%w: known_items (%d) exceeds item count (%d)", ErrConfiguration, e.config.KnownItems, full.Items())
	}

	start := time.Now()
	sim, err := e.similarity(full)
	if err != nil {
		return nil, err
	}
	simTime := time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	out, err := PredictBlanks(sim, blank, e.config.KnownItems, e.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	e.logger.Info().
		Int("known_users", full.Users()).
		Int("blank_users", blank.Users()).
		Int("known_items", e.config.KnownItems).
		Int("predicted_cells", blank.Users()*(full.Items()-e.config.KnownItems)).
		Dur("similarity", simTime).
		Dur("prediction", time.Since(start)).
		Msg("completion complete")

	return out, nil
}

// similarity logs the matrix footprint and computes it.
func (e *Engine) similarity(m RatingMatrix) (*SimilarityMatrix, error) {
	e.logger.Debug().
		Int("items", m.Items()).
		Int64("cells", SimilarityCells(m.Items())).
		Int64("bytes", SimilarityBytes(m.Items())).
		Msg("computing similarity matrix")

	sim, err := ComputeSimilarity(m, e.config.Workers)
	if err != nil {
		return nil, fmt.Errorf("similarity: %w", err)
	}
	return sim, nil
}

// neighborhood returns the K-neighborhood table of m, from the model store
// when one is configured and holds it. timings may be nil.
func (e *Engine) neighborhood(ctx context.Context, m RatingMatrix, timings *PhaseTimings) (NeighborhoodTable, bool, error) {
	store := e.modelStore()
	key := ""
	if store != nil {
		key = NeighborhoodKey(m, e.config.Neighbors)
		table, found, err := store.LoadNeighborhood(ctx, key)
		switch {
		case err != nil:
			e.logger.Warn().Err(err).Str("key", key).Msg("model store load failed, recomputing")
		case found && len(table) == m.Items() && table.K() == e.config.Neighbors:
			e.logger.Debug().Str("key", key).Msg("neighborhood loaded from model store")
			return table, true, nil
		case found:
			e.logger.Warn().Str("key", key).Msg("stored neighborhood has wrong shape, recomputing")
		}
	}

	start := time.Now()
	sim, err := e.similarity(m)
	if err != nil {
		return nil, false, err
	}
	if timings != nil {
		timings.Similarity = time.Since(start)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	start = time.Now()
	table, err := TopK(sim, e.config.Neighbors, e.config.Workers)
	if err != nil {
		return nil, false, fmt.Errorf("neighborhood: %w", err)
	}
	if timings != nil {
		timings.Neighborhood = time.Since(start)
	}

	if store != nil {
		if err := store.SaveNeighborhood(ctx, key, table); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("model store save failed")
		}
	}
	return table, false, nil
}

func countRatings(m RatingMatrix) int {
	n := 0
	for _, row := range m {
		for _, score := range row {
			if score != 0 {
				n++
			}
		}
	}
	return n
}
