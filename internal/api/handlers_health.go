// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/shelfwise/internal/recommend"
)

// HealthLive handles liveness probe requests.
// Returns 200 OK while the process is serving, regardless of the index.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, r, start, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// ReadyStatus is the payload of the readiness probe.
type ReadyStatus struct {
	Ready         bool            `json:"ready"`
	CatalogLoaded bool            `json:"catalog_loaded"`
	IndexState    string          `json:"index_state"`
	Uptime        float64         `json:"uptime"`
	Stats         recommend.Stats `json:"stats"`
}

// HealthReady handles readiness probe requests.
// The service is ready once the catalog is loaded. The similarity index
// state is reported but does not gate readiness: non-content strategies
// keep serving while it builds or after it fails.
//
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse{data=ReadyStatus}
// @Failure 503 {object} APIResponse{data=ReadyStatus}
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := ReadyStatus{
		CatalogLoaded: h.catalog.Len() > 0,
		IndexState:    h.engine.IndexState().String(),
		Uptime:        time.Since(h.startTime).Seconds(),
		Stats:         h.engine.Stats(),
	}
	status.Ready = status.CatalogLoaded

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, &APIResponse{
		Status:   StatusSuccess,
		Data:     status,
		Metadata: newMetadata(r, start),
	})
}
