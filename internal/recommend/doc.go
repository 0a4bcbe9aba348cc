// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

// Package recommend implements an item-based collaborative filtering engine
// over a dense user×item rating matrix.
//
// # Pipeline
//
// The engine is a pure batch transformation:
//
//	RatingMatrix ─ Splitter ─► train, test
//	train ─ ComputeSimilarity ─► SimilarityMatrix ─ TopK ─► NeighborhoodTable
//	NeighborhoodTable + train, test ─ HitRate ─► precision@N
//	full rows ─ ComputeSimilarity ─► SimilarityMatrix ─ PredictBlanks(blank rows) ─► completed rows
//
// # Similarity
//
// Item similarity is co-occurrence strength: the number of users who rated
// both items, divided by sqrt(popularity(a) * popularity(b)). Rating
// magnitude is ignored when building the model; it only weights the
// aggregation in Recommend and PredictBlanks.
//
// # Ordering
//
// Every ranking in this package (neighborhoods and recommendations) sorts by
// weight descending and breaks ties by index descending. Predictions are
// rounded half away from zero. Both rules are part of the contract: two runs
// over the same input produce identical tables.
//
// # Resources
//
// The similarity matrix holds nItems² float64 cells. A 4,000-item catalog
// needs 16M cells (128 MB). Config.MaxItems bounds the catalog size the
// engine will accept.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	eval, err := engine.Evaluate(ctx, matrix)
//	completed, err := engine.Complete(ctx, fullRows, blankRows)
//
// # Thread Safety
//
// All exported functions are safe for concurrent use; none of them mutate
// their inputs. Engine only holds configuration and an optional ModelStore.
package recommend
