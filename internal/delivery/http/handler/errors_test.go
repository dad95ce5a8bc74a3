package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails bool
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "Resource not found", false},
		{"validation with details",
			domain.NewError(domain.ErrInvalidInput, "validation failed").WithDetails(map[string]any{"rating": "max"}),
			http.StatusBadRequest, "validation failed", true},
		{"forbidden hides message",
			domain.NewError(domain.ErrForbidden, "order belongs to someone else"),
			http.StatusForbidden, "Access denied", false},
		{"amount mismatch",
			domain.NewError(domain.ErrAmountMismatch, "payment amount does not match order total").
				WithDetails(map[string]any{"expected": 5000, "received": 4999}),
			http.StatusUnprocessableEntity, "payment amount does not match order total", true},
		{"window expired", domain.ErrRefundWindowExpired, http.StatusUnprocessableEntity, "Request cannot be processed", false},
		{"state conflict", domain.NewError(domain.ErrStateConflict, "refund request is not pending"), http.StatusConflict, "refund request is not pending", false},
		{"dependency", domain.WrapError(domain.ErrDependency, errors.New("timeout"), "payment provider unavailable"), http.StatusBadGateway, "payment provider unavailable", false},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			writeError(w, r, logger.New("test"), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body["error"])
			_, hasDetails := body["details"]
			assert.Equal(t, tt.wantDetails, hasDetails)
		})
	}
}
