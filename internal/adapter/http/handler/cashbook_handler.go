package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
)

// CashBookService defines the behavior needed by CashBookHandler.
type CashBookService interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	Override(ctx context.Context, value decimal.Decimal) error
	Reset(ctx context.Context) error
}

// CashBookHandler handles cash book HTTP requests.
type CashBookHandler struct {
	cashUC CashBookService
}

// NewCashBookHandler creates a new CashBookHandler.
func NewCashBookHandler(cashUC CashBookService) *CashBookHandler {
	return &CashBookHandler{cashUC: cashUC}
}

// Balance returns the current cash position.
func (h *CashBookHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.cashUC.Balance(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to read cash balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashBalanceResponse{Balance: balance})
}

// Override sets the cash balance to an absolute value. A physical drawer
// count wins over the derived figure.
func (h *CashBookHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req dto.OverrideCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.cashUC.Override(r.Context(), req.Balance); err != nil {
		writeError(w, mapDomainError(err), "failed to override cash balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashBalanceResponse{Balance: req.Balance})
}

// Reset zeroes the cash balance.
func (h *CashBookHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.cashUC.Reset(r.Context()); err != nil {
		writeError(w, mapDomainError(err), "failed to reset cash balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashBalanceResponse{Balance: decimal.Zero})
}
