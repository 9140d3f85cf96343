// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package middleware provides the HTTP middleware shared by the Shelfwise API.

Every middleware has the chi signature func(http.Handler) http.Handler, so
the router composes them with r.Use:

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger, 500*time.Millisecond))
	r.Use(middleware.PrometheusMetrics)

Components:

  - RequestID: reads or generates X-Request-ID and stores it, together
    with a short correlation ID, in the logging context
  - AccessLog: one structured zerolog line per request, escalated to warn
    above a latency threshold
  - PrometheusMetrics: request counts, latencies and in-flight gauge,
    labelled by chi route pattern to keep label cardinality bounded

Status codes are captured with chi's WrapResponseWriter, which preserves
Flusher and Hijacker on the underlying writer.
*/
package middleware
