// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
served by promhttp at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Requests by method, endpoint (route pattern) and status_code (counter)
  - api_request_duration_seconds: Request latency by method and endpoint (histogram)
  - api_active_requests: Requests in flight (gauge)

Recommendation Metrics:
  - recommend_requests_total: Queries by strategy and outcome (counter)
  - recommend_duration_seconds: Query latency by strategy (histogram)
  - recommend_result_size: Items returned per query (histogram)
  - recommend_preference_fallback_total: Unknown users served the popularity ranking (counter)
  - recommend_cache_hits_total, recommend_cache_misses_total: Response cache lookups (counter)

Similarity Index Metrics:
  - similarity_index_builds_total: Builds by source (computed, snapshot) and outcome (counter)
  - similarity_index_build_duration_seconds: Build time (histogram)
  - similarity_index_vocabulary_size: Distinct terms in the index (gauge)
  - similarity_index_snapshot_operations_total: Store loads and saves by outcome (counter)

Catalog Metrics:
  - catalog_products: Rows in the loaded catalog (gauge)
  - catalog_load_duration_seconds: Load time (histogram)

# Usage

Callers use the Record helpers instead of touching collectors directly:

	start := time.Now()
	items, err := engine.TopRated(ctx, 5)
	metrics.RecordRecommendation("popularity", metrics.OutcomeOK, len(items), time.Since(start))

# Example Queries

Request rate by endpoint:

	sum(rate(api_requests_total[5m])) by (endpoint)

p95 recommendation latency per strategy:

	histogram_quantile(0.95, sum(rate(recommend_duration_seconds_bucket[5m])) by (le, strategy))

Cache hit ratio:

	rate(recommend_cache_hits_total[5m]) /
	  (rate(recommend_cache_hits_total[5m]) + rate(recommend_cache_misses_total[5m]))
*/
package metrics
