// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package api exposes the recommendation engine over HTTP.

Routes are registered on a chi router under /api/v1:

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /api/v1/recommendations/top?n=
	GET  /api/v1/recommendations/similar?name=&n=
	GET  /api/v1/recommendations/user/{userID}?n=
	GET  /api/v1/recommendations/hybrid?user_id=&name=&n=
	POST /api/v1/recommendations
	GET  /api/v1/products/search?q=
	GET  /api/v1/products/{prodID}
	GET  /api/v1/users/{userID}/dashboard?n=
	GET  /metrics

Every JSON response uses the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 1}
	}

Errors set status to "error" and carry an APIError with a machine-readable
code. Engine errors map to HTTP statuses as follows:

  - recommend.ErrInvalidArgument: 400 INVALID_ARGUMENT
  - recommend.ErrIndexUnavailable: 503 INDEX_UNAVAILABLE
  - catalog.ErrProductNotFound: 404 NOT_FOUND

An unknown product name or user is not an error: the response is 200 with
an empty item list, or the popularity fallback for users.
*/
package api
