package handler

import (
	"errors"
	"net/http"

	kirje_errors "saunakirje/pkg/errors"
)

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, kirje_errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, kirje_errors.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, kirje_errors.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, kirje_errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, kirje_errors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, kirje_errors.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	default:
		return http.StatusInternalServerError, "REQUEST_FAILED"
	}
}
