package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
	"github.com/mandibook/mandiledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAmountExceedsBalance):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidRate):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidLendType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateInvoice):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransactionSettled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrMirrorDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter with a default value.
func parseDateQuery(r *http.Request, key string, defaultValue time.Time) time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	d, err := time.Parse("2006-01-02", val)
	if err != nil {
		return defaultValue
	}
	return d
}
