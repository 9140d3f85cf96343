// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// respondEngineError maps engine and catalog errors to HTTP responses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidArgument):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidArgument, err.Error(), nil)
	case errors.Is(err, recommend.ErrIndexUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("content query without similarity index")
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeIndexUnavailable,
			"content recommendations are temporarily unavailable", nil)
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "product not found", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out", nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("request cancelled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("recommendation failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error", nil)
	}
}

// respondValidationError writes a 400 with per-field details.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	respondError(w, r, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Details())
}
