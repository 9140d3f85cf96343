// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 64 << 10

// Key lengths are capped in the validate tags: 256 bytes for user IDs and
// search queries, 1024 for product names.

// topRequest is the query of GET /recommendations/top.
type topRequest struct {
	N int `json:"n" validate:"min=1"`
}

// similarRequest is the query of GET /recommendations/similar.
type similarRequest struct {
	Name string `json:"name" validate:"required,notblank,max=1024"`
	N    int    `json:"n" validate:"min=1"`
}

// userRequest is the path and query of GET /recommendations/user/{userID}
// and GET /users/{userID}/dashboard.
type userRequest struct {
	UserID string `json:"user_id" validate:"required,max=256"`
	N      int    `json:"n" validate:"min=1"`
}

// hybridRequest is the query of GET /recommendations/hybrid. Both keys are
// optional: a missing name degrades to the preference side and a missing
// user to the popularity fallback.
type hybridRequest struct {
	UserID string `json:"user_id" validate:"max=256"`
	Name   string `json:"name" validate:"max=1024"`
	N      int    `json:"n" validate:"min=1"`
}

// RecommendRequest is the body of POST /recommendations.
type RecommendRequest struct {
	Strategy    string `json:"strategy" validate:"required,strategy"`
	UserID      string `json:"user_id,omitempty" validate:"max=256"`
	ProductName string `json:"product_name,omitempty" validate:"max=1024"`
	N           int    `json:"n,omitempty" validate:"omitempty,min=1"`
}

// searchRequest is the query of GET /products/search.
type searchRequest struct {
	Query string `json:"q" validate:"required,notblank,max=256"`
}

// errInvalidN is returned for a non-integer n parameter.
var errInvalidN = errors.New("n must be an integer")

// queryN reads the n parameter, returning def when it is absent.
func queryN(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("n"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidN, raw)
	}
	return n, nil
}

// decodeJSONBody decodes a single JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
