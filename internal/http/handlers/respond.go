package handlers

import (
	"errors"
	"net/http"

	"adforge-server/internal/domain"
)

// domainError translates sentinel domain errors into HTTP responses.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientCredits):
		a.error(w, http.StatusPaymentRequired, "not enough credits")
	case errors.Is(err, domain.ErrInvalidTransition):
		a.error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDuplicateOperation):
		a.error(w, http.StatusConflict, "operation already applied")
	default:
		// Vendor failures stay opaque to clients.
		a.Log.Error().Err(err).Msg("internal error")
		a.error(w, http.StatusInternalServerError, "internal server error")
	}
}
