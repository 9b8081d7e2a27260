package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// RespondError maps domain errors to the API error envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, err.Error())
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
