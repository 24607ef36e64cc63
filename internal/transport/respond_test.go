package transport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shoe-storefront/internal/checkout"
	"shoe-storefront/internal/repository"
	"shoe-storefront/internal/service"
	"shoe-storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRespondWithServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", repository.ErrProductNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("failed to load: %w", repository.ErrOrderNotFound), http.StatusNotFound},
		{"conflict", repository.ErrUserAlreadyExists, http.StatusConflict},
		{"transition", fmt.Errorf("%w: delivered -> cancelled", service.ErrInvalidTransition), http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"empty basket", service.ErrEmptyBasket, http.StatusUnprocessableEntity},
		{"reason", service.ErrCancellationReasonRequired, http.StatusBadRequest},
		{"media type", fmt.Errorf("%w: got text/plain", storage.ErrUnsupportedMediaType), http.StatusUnsupportedMediaType},
		{"too large", storage.ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
		{"unknown", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/x", nil)

			respondWithServiceError(w, r, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRespondWithServiceError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	respondWithServiceError(w, httptest.NewRequest(http.MethodGet, "/x", nil), zap.NewNop(), fmt.Errorf("pq: password authentication failed"))

	var env errorEnvelope
	decodeBody(t, w, &env)
	assert.Equal(t, "internal server error", env.Error.Message)
}

func TestRespondWithServiceError_CheckoutFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	errs := checkout.ValidationErrors{
		checkout.FieldAddress:      "select a delivery address",
		checkout.FieldDeliveryTime: "select a delivery time",
	}

	respondWithServiceError(w, httptest.NewRequest(http.MethodPost, "/api/orders", nil), zap.NewNop(), errs)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var env errorEnvelope
	decodeBody(t, w, &env)
	fields, ok := env.Error.Details["fields"].(map[string]interface{})
	if assert.True(t, ok) {
		assert.Len(t, fields, 2)
		assert.Contains(t, fields, checkout.FieldAddress)
	}
}
