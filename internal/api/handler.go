// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

// ProductPageN is the number of content recommendations shown with a
// product.
const ProductPageN = 10

// defaultRequestTimeout bounds a single engine call.
const defaultRequestTimeout = 10 * time.Second

// Handler serves the recommendation endpoints.
type Handler struct {
	engine         *recommend.Engine
	catalog        *catalog.Catalog
	defaultN       int
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates a handler backed by engine. A non-positive timeout
// selects the default of 10s.
func NewHandler(engine *recommend.Engine, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Handler{
		engine:         engine,
		catalog:        engine.Catalog(),
		defaultN:       engine.Config().Limits.DefaultN,
		requestTimeout: requestTimeout,
		startTime:      time.Now(),
	}
}

// requestContext derives the per-call deadline from the request context.
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

// serve runs req and writes either the response or the mapped error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, start time.Time, req recommend.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	req.RequestID = logging.RequestIDFromContext(r.Context())
	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, resp)
}
