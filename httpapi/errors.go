package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"movemarket/auth"
	"movemarket/bid"
	"movemarket/livefeed"
	"movemarket/request"
)

// respondError maps domain sentinel errors to HTTP statuses. Anything
// unmapped is a 500 and gets logged; domain errors speak for themselves.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotVerified),
		errors.Is(err, auth.ErrPendingApproval),
		errors.Is(err, auth.ErrBanned):
		http.Error(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, request.ErrForbidden),
		errors.Is(err, bid.ErrForbidden),
		errors.Is(err, bid.ErrNotOwner),
		errors.Is(err, livefeed.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, request.ErrNotFound),
		errors.Is(err, bid.ErrNotFound),
		errors.Is(err, bid.ErrRequestNotFound),
		errors.Is(err, livefeed.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)

	case errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, bid.ErrAlreadyBid),
		errors.Is(err, bid.ErrRequestClosed):
		http.Error(w, err.Error(), http.StatusConflict)

	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrInvalidCode),
		errors.Is(err, auth.ErrInvalidVerificationType),
		errors.Is(err, bid.ErrInvalidPrice),
		errors.Is(err, request.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)

	default:
		h.logger.Error("internal error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
