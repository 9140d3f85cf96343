// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// TopRated handles GET /api/v1/recommendations/top
//
// @Summary Highest mean-rated products
// @Tags Recommendations
// @Produce json
// @Param n query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Router /recommendations/top [get]
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := queryN(r, h.defaultN)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	req := topRequest{N: n}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	h.serve(w, r, start, recommend.Request{Strategy: recommend.StrategyPopularity, N: req.N})
}

// Similar handles GET /api/v1/recommendations/similar
// Returns 503 when the similarity index could not be built.
//
// @Summary Products with similar tags
// @Tags Recommendations
// @Produce json
// @Param name query string true "Exact product name"
// @Param n query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Failure 503 {object} APIResponse
// @Router /recommendations/similar [get]
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := queryN(r, h.defaultN)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	req := similarRequest{Name: r.URL.Query().Get("name"), N: n}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	h.serve(w, r, start, recommend.Request{
		Strategy:    recommend.StrategyContent,
		ProductName: req.Name,
		N:           req.N,
	})
}

// ForUser handles GET /api/v1/recommendations/user/{userID}
// Unknown users receive the top-rated list.
//
// @Summary Co-rating recommendations for a user
// @Tags Recommendations
// @Produce json
// @Param userID path string true "User ID"
// @Param n query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Router /recommendations/user/{userID} [get]
func (h *Handler) ForUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := queryN(r, h.defaultN)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	req := userRequest{UserID: chi.URLParam(r, "userID"), N: n}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	h.serve(w, r, start, recommend.Request{
		Strategy: recommend.StrategyPreference,
		UserID:   req.UserID,
		N:        req.N,
	})
}

// Hybrid handles GET /api/v1/recommendations/hybrid
//
// @Summary Content then preference recommendations, deduplicated
// @Tags Recommendations
// @Produce json
// @Param user_id query string false "User ID"
// @Param name query string false "Exact product name"
// @Param n query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Router /recommendations/hybrid [get]
func (h *Handler) Hybrid(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := queryN(r, h.defaultN)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	q := r.URL.Query()
	req := hybridRequest{UserID: q.Get("user_id"), Name: q.Get("name"), N: n}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	h.serve(w, r, start, recommend.Request{
		Strategy:    recommend.StrategyHybrid,
		UserID:      req.UserID,
		ProductName: req.Name,
		N:           req.N,
	})
}

// Recommend handles POST /api/v1/recommendations
// The strategy selector accepts the canonical names and their aliases
// (rating, top, user).
//
// @Summary Generic recommendation dispatch
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body RecommendRequest true "Recommendation request"
// @Success 200 {object} APIResponse{data=recommend.Response}
// @Failure 400 {object} APIResponse
// @Router /recommendations [post]
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body RecommendRequest
	if err := decodeJSONBody(w, r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&body); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	strategy, err := recommend.ParseStrategy(body.Strategy)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if body.N == 0 {
		body.N = h.defaultN
	}

	h.serve(w, r, start, recommend.Request{
		Strategy:    strategy,
		UserID:      body.UserID,
		ProductName: body.ProductName,
		N:           body.N,
	})
}

// Dashboard handles GET /api/v1/users/{userID}/dashboard
//
// @Summary Per-user landing view
// @Tags Users
// @Produce json
// @Param userID path string true "User ID"
// @Param n query int false "Maximum results per list"
// @Success 200 {object} APIResponse{data=recommend.Dashboard}
// @Router /users/{userID}/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := queryN(r, h.defaultN)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	req := userRequest{UserID: chi.URLParam(r, "userID"), N: n}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	dashboard, err := h.engine.Dashboard(ctx, req.UserID, req.N)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, start, dashboard)
}
