// Shelfwise - Catalog Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfwise/internal/catalog"
	"github.com/tomtom215/shelfwise/internal/recommend"
)

func TestQueryN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "absent", query: "", want: 5},
		{name: "blank", query: "?n=%20", want: 5},
		{name: "value", query: "?n=12", want: 12},
		{name: "padded", query: "?n=%203", want: 3},
		{name: "zero passes through", query: "?n=0", want: 0},
		{name: "negative passes through", query: "?n=-4", want: -4},
		{name: "float", query: "?n=2.5", wantErr: true},
		{name: "word", query: "?n=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			got, err := queryN(r, 5)
			if tt.wantErr {
				if !errors.Is(err, errInvalidN) {
					t.Errorf("queryN() error = %v, want errInvalidN", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("queryN() = %d, %v; want %d", got, err, tt.want)
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"strategy":"hybrid","user_id":"u1","product_name":"A","n":3}`},
		{name: "empty", body: "", wantErr: true},
		{name: "unknown field", body: `{"strategy":"top","extra":1}`, wantErr: true},
		{name: "wrong type", body: `{"strategy":"top","n":"3"}`, wantErr: true},
		{name: "two objects", body: `{"strategy":"top"} {"strategy":"top"}`, wantErr: true},
		{name: "too large", body: `{"strategy":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			var dst RecommendRequest
			err := decodeJSONBody(httptest.NewRecorder(), r, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSONBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (dst.Strategy != "hybrid" || dst.N != 3 || dst.ProductName != "A") {
				t.Errorf("decoded %+v", dst)
			}
		})
	}
}

func TestRespondEngineError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid argument", err: fmt.Errorf("%w: n must be positive", recommend.ErrInvalidArgument), wantStatus: http.StatusBadRequest, wantCode: ErrCodeInvalidArgument},
		{name: "index unavailable", err: fmt.Errorf("%w: boom", recommend.ErrIndexUnavailable), wantStatus: http.StatusServiceUnavailable, wantCode: ErrCodeIndexUnavailable},
		{name: "product not found", err: fmt.Errorf("lookup: %w", catalog.ErrProductNotFound), wantStatus: http.StatusNotFound, wantCode: ErrCodeNotFound},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout, wantCode: ErrCodeTimeout},
		{name: "other", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantCode: ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			respondEngineError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp APIResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != StatusError || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("response = %+v, want code %s", resp, tt.wantCode)
			}
			if tt.wantCode == ErrCodeInternalError && strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error details leaked to the client")
			}
		})
	}
}

func TestRespondEngineError_Cancelled(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondEngineError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), context.Canceled)
	if rec.Body.Len() != 0 {
		t.Errorf("cancelled request wrote body %q", rec.Body.String())
	}
}
