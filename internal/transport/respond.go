package transport

import (
	"errors"
	"net/http"

	"shoe-storefront/internal/checkout"
	"shoe-storefront/internal/middleware"
	"shoe-storefront/internal/repository"
	"shoe-storefront/internal/service"
	"shoe-storefront/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorStatuses maps known errors to HTTP statuses. The first match wins.
var errorStatuses = []struct {
	err    error
	status int
}{
	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrCategoryNotFound, http.StatusNotFound},
	{repository.ErrColorNotFound, http.StatusNotFound},
	{repository.ErrSizeNotFound, http.StatusNotFound},
	{repository.ErrAddressNotFound, http.StatusNotFound},
	{repository.ErrBasketItemNotFound, http.StatusNotFound},
	{repository.ErrWishlistItemNotFound, http.StatusNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrVariantNotFound, http.StatusNotFound},

	{repository.ErrUserAlreadyExists, http.StatusConflict},
	{repository.ErrCategoryAlreadyExists, http.StatusConflict},
	{repository.ErrSizeAlreadyExists, http.StatusConflict},
	{repository.ErrOrderStatusConflict, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenExpired, http.StatusUnauthorized},

	{service.ErrEmptyBasket, http.StatusUnprocessableEntity},
	{service.ErrProductUnavailable, http.StatusUnprocessableEntity},

	{service.ErrCancellationReasonRequired, http.StatusBadRequest},
	{service.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrUnknownSize, http.StatusBadRequest},
	{service.ErrInvalidVariant, http.StatusBadRequest},
	{service.ErrInvalidPhone, http.StatusBadRequest},
	{service.ErrInvalidMedia, http.StatusBadRequest},
	{storage.ErrEmptyUpload, http.StatusBadRequest},

	{storage.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{storage.ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
}

// respondWithServiceError translates err into an error response. Unknown
// errors are logged and reported as 500 without their text.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var fieldErrs checkout.ValidationErrors
	if errors.As(err, &fieldErrs) {
		middleware.RespondWithFieldErrors(w, "checkout validation failed", fieldErrs)
		return
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			if e.status >= http.StatusInternalServerError {
				logger.Error("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
			}
			middleware.RespondWithError(w, e.status, err.Error())
			return
		}
	}

	logger.Error("Request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// decodeRequest decodes and validates the JSON body into v. It writes the
// error response and returns false when the body is unusable.
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(w, r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// currentUser returns the authenticated user's id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the named URL parameter as a UUID or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
