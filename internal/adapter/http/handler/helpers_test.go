package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mandibook/mandiledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrTransactionNotFound, http.StatusNotFound},
		{domain.ErrPaymentNotFound, http.StatusNotFound},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrAmountExceedsBalance, http.StatusBadRequest},
		{domain.ErrMissingField, http.StatusBadRequest},
		{domain.ErrInvalidLendType, http.StatusBadRequest},
		{domain.ErrDuplicateInvoice, http.StatusConflict},
		{domain.ErrNoSession, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMapDomainErrorUnwrapsContext(t *testing.T) {
	wrapped := fmt.Errorf("add payment: %w: quantity", domain.ErrInvalidAmount)
	if got := mapDomainError(wrapped); got != http.StatusBadRequest {
		t.Fatalf("wrapped error mapped to %d, want 400", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=abc", nil)

	if got := parseIntQuery(req, "limit", 20); got != 5 {
		t.Errorf("limit = %d, want 5", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Errorf("bad = %d, want default 20", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Errorf("missing = %d, want default 20", got)
	}
}

func TestParseDateQuery(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	req := httptest.NewRequest(http.MethodGet, "/?from=2026-03-14&bad=14-03-2026", nil)

	if got := parseDateQuery(req, "from", fallback); !got.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %s", got)
	}
	if got := parseDateQuery(req, "bad", fallback); !got.Equal(fallback) {
		t.Errorf("bad = %s, want fallback", got)
	}
}
