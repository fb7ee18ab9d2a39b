package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrMissingSalt = New(
		CodeConfiguration,
		"LEDGER_HASH_SALT is not configured",
		http.StatusInternalServerError,
	)

	ErrStoreUnavailable = New(
		CodeStoreUnavailable,
		"The backing store is unavailable",
		http.StatusServiceUnavailable,
	)
)

// HasCode reports whether err is (or wraps) an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
