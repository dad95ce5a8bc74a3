package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/auth"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// errorStatus maps a domain error kind to an HTTP status and a fallback message
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, domain.ErrRefundWindowExpired), errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusUnprocessableEntity, "Request cannot be processed"
	case errors.Is(err, domain.ErrStateConflict):
		return http.StatusConflict, "Operation not allowed in the current state"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "Resource already exists"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Conflict - resource was modified by another request"
	case errors.Is(err, domain.ErrDependency):
		return http.StatusBadGateway, "Upstream service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError handles service layer errors and returns appropriate HTTP responses.
// Authorization failures and server errors never echo internal messages.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status, message := errorStatus(err)

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), log).Error("Request failed", err)
		if status == http.StatusInternalServerError {
			response.Error(w, status, message)
			return
		}
	}

	var details map[string]any
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		if de, ok := domain.AsError(err); ok {
			if de.Message != "" {
				message = de.Message
			}
			details = de.Details
		}
	}

	response.ErrorWithDetails(w, status, message, details)
}

// caller returns the authenticated identity; routes behind RequireAuth always have one
func caller(r *http.Request) (auth.Identity, bool) {
	return middleware.IdentityFrom(r.Context())
}

// cartOwner resolves the cart of the caller: the user's when signed in, else the guest session's
func cartOwner(r *http.Request) domain.CartOwner {
	if id, ok := caller(r); ok {
		return domain.UserOwner(id.UserID)
	}
	return domain.GuestOwner(middleware.GuestSessionFrom(r.Context()))
}
