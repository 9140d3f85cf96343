// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/logging"
	"github.com/tomtom215/shelfwise/internal/recommend"
	"github.com/tomtom215/shelfwise/internal/validation"
)

// ProductPage is a product with its content recommendations.
type ProductPage struct {
	Product         *catalog.Product `json:"product"`
	Recommendations recommend.List   `json:"recommendations"`

	// RecommendationsAvailable is false when the similarity index is
	// unavailable; the product itself is still returned.
	RecommendationsAvailable bool `json:"recommendations_available"`
}

// SearchProducts handles GET /api/v1/products/search
// Returns the first product whose name contains q, case-insensitively.
//
// @Summary Find a product by name
// @Tags Products
// @Produce json
// @Param q query string true "Name substring"
// @Success 200 {object} APIResponse{data=ProductPage}
// @Failure 404 {object} APIResponse
// @Router /products/search [get]
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := searchRequest{Query: r.URL.Query().Get("q")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	product, ok := h.catalog.Search(req.Query)
	if !ok {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "no product matches the query", nil)
		return
	}
	h.productPage(w, r, start, product)
}

// GetProduct handles GET /api/v1/products/{prodID}
//
// @Summary Product page
// @Tags Products
// @Produce json
// @Param prodID path string true "Product ID"
// @Success 200 {object} APIResponse{data=ProductPage}
// @Failure 404 {object} APIResponse
// @Router /products/{prodID} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	product, err := h.catalog.ProductByID(chi.URLParam(r, "prodID"))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	h.productPage(w, r, start, product)
}

func (h *Handler) productPage(w http.ResponseWriter, r *http.Request, start time.Time, product *catalog.Product) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	page := ProductPage{Product: product, Recommendations: recommend.List{}}

	recs, err := h.engine.ContentSimilar(ctx, product.Name, ProductPageN)
	switch {
	case err == nil:
		page.Recommendations = recs
		page.RecommendationsAvailable = true
	case errors.Is(err, recommend.ErrIndexUnavailable):
		logging.Ctx(r.Context()).Warn().Err(err).Str("prod_id", product.ProdID).Msg("product page without recommendations")
	default:
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, start, page)
}
