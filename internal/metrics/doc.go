// ItemCF - Item-Based Collaborative Filtering Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemcf

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and are
exposed at /metrics when the HTTP server is enabled:

	curl http://localhost:9464/metrics

# Available Metrics

Run Metrics:
  - itemcf_phase_duration_seconds: Time spent per phase (histogram)
    Labels: phase (load, split, similarity, neighborhood, scoring, complete, save)
  - itemcf_runs_total: Finished batch runs (counter)
    Labels: status (success, failure)
  - itemcf_last_run_timestamp: Unix time of the last finished run (gauge)
  - itemcf_errors_total: Failed runs by error class (counter)
    Labels: kind (configuration, data, resource, internal)

Model Metrics:
  - itemcf_hit_rate: Hit-rate of the last evaluation (gauge)
  - itemcf_evaluation_hits: Hits of the last evaluation (gauge)
  - itemcf_evaluation_users: Users scored by the last evaluation (gauge)
  - itemcf_similarity_cells: Cells of the last similarity matrix (gauge)
  - itemcf_recommendations_total: Recommended items produced (counter)
  - itemcf_predictions_total: Blank cells predicted (counter)
  - itemcf_model_cache_total: Neighborhood store lookups (counter)
    Labels: result (hit, miss)

HTTP Metrics:
  - itemcf_http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - itemcf_http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - itemcf_http_requests_in_flight: Active requests (gauge)

# Usage

	start := time.Now()
	eval, err := engine.Evaluate(ctx, matrix)
	if err != nil {
		metrics.RecordError(recommend.ErrorKind(err))
		return err
	}
	metrics.RecordEvaluation(eval.HitRate, eval.Hits, eval.Users)
	metrics.RecordPhase(metrics.PhaseSimilarity, eval.Timings.Similarity)

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
