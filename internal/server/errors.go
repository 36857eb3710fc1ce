package server

import (
	"errors"
	"net/http"

	"parking-garage/internal/garage"
)

// statusFor maps garage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, garage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, garage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, garage.ErrNoCapacity), errors.Is(err, garage.ErrDuplicateAdmission):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
