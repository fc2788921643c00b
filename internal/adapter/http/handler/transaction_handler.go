package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateBuy(ctx context.Context, input usecase.CreateBuyInput) (*domain.BuyTransaction, error)
	CreateSell(ctx context.Context, input usecase.CreateSellInput) (*domain.SellTransaction, error)
	CreateLend(ctx context.Context, input usecase.CreateLendInput) (*domain.LendTransaction, error)
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error)
	UpdateBuy(ctx context.Context, id string, input usecase.CreateBuyInput) (*domain.BuyTransaction, error)
	UpdateSell(ctx context.Context, id string, input usecase.CreateSellInput) (*domain.SellTransaction, error)
	UpdateLend(ctx context.Context, id string, input usecase.CreateLendInput) (*domain.LendTransaction, error)
	UpdateExpense(ctx context.Context, id string, input usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error)
	DeleteTransaction(ctx context.Context, txType domain.TransactionType, id string) error
	GetBuy(ctx context.Context, id string) (*domain.BuyTransaction, error)
	GetSell(ctx context.Context, id string) (*domain.SellTransaction, error)
	GetLend(ctx context.Context, id string) (*domain.LendTransaction, error)
	GetExpense(ctx context.Context, id string) (*domain.ExpenseTransaction, error)
	ListBuys(ctx context.Context, limit, offset int) ([]*domain.BuyTransaction, error)
	ListSells(ctx context.Context, limit, offset int) ([]*domain.SellTransaction, error)
	ListLends(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error)
	ListExpenses(ctx context.Context, limit, offset int) ([]*domain.ExpenseTransaction, error)
	SearchBuys(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error)
	SearchSells(ctx context.Context, query string, limit, offset int) ([]*domain.SellTransaction, error)
	SearchLends(ctx context.Context, query string, limit, offset int) ([]*domain.LendTransaction, error)
}

// TransactionHandler handles transaction HTTP requests.
type TransactionHandler struct {
	txUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC}
}

// CreateBuy records a grain purchase.
func (h *TransactionHandler) CreateBuy(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	buy, err := h.txUC.CreateBuy(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.BuyFromDomain(buy))
}

// GetBuy retrieves a purchase by ID.
func (h *TransactionHandler) GetBuy(w http.ResponseWriter, r *http.Request) {
	buy, err := h.txUC.GetBuy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BuyFromDomain(buy))
}

// ListBuys lists purchases, newest first. A q parameter filters by farmer
// name or phone.
func (h *TransactionHandler) ListBuys(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	var buys []*domain.BuyTransaction
	var err error
	if q := r.URL.Query().Get("q"); q != "" {
		buys, err = h.txUC.SearchBuys(r.Context(), q, limit, offset)
	} else {
		buys, err = h.txUC.ListBuys(r.Context(), limit, offset)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list purchases", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BuysFromDomain(buys))
}

// UpdateBuy edits an unsettled purchase.
func (h *TransactionHandler) UpdateBuy(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	buy, err := h.txUC.UpdateBuy(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update purchase", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BuyFromDomain(buy))
}

// CreateSell records a grain sale.
func (h *TransactionHandler) CreateSell(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sell, err := h.txUC.CreateSell(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record sale", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SellFromDomain(sell))
}

// GetSell retrieves a sale by ID.
func (h *TransactionHandler) GetSell(w http.ResponseWriter, r *http.Request) {
	sell, err := h.txUC.GetSell(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SellFromDomain(sell))
}

// ListSells lists sales, newest first. A q parameter filters by customer
// name or phone.
func (h *TransactionHandler) ListSells(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	var sells []*domain.SellTransaction
	var err error
	if q := r.URL.Query().Get("q"); q != "" {
		sells, err = h.txUC.SearchSells(r.Context(), q, limit, offset)
	} else {
		sells, err = h.txUC.ListSells(r.Context(), limit, offset)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list sales", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SellsFromDomain(sells))
}

// UpdateSell edits an unsettled sale, replacing its line items.
func (h *TransactionHandler) UpdateSell(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	sell, err := h.txUC.UpdateSell(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update sale", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SellFromDomain(sell))
}

// CreateLend records a loan.
func (h *TransactionHandler) CreateLend(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lend, err := h.txUC.CreateLend(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LendFromDomain(lend))
}

// GetLend retrieves a loan by ID.
func (h *TransactionHandler) GetLend(w http.ResponseWriter, r *http.Request) {
	lend, err := h.txUC.GetLend(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LendFromDomain(lend))
}

// ListLends lists loans, newest first. A q parameter filters by borrower
// name or phone.
func (h *TransactionHandler) ListLends(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	var lends []*domain.LendTransaction
	var err error
	if q := r.URL.Query().Get("q"); q != "" {
		lends, err = h.txUC.SearchLends(r.Context(), q, limit, offset)
	} else {
		lends, err = h.txUC.ListLends(r.Context(), limit, offset)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LendsFromDomain(lends))
}

// UpdateLend edits a loan with no repayments yet.
func (h *TransactionHandler) UpdateLend(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	lend, err := h.txUC.UpdateLend(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LendFromDomain(lend))
}

// CreateExpense records an expense.
func (h *TransactionHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.txUC.CreateExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record expense", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// GetExpense retrieves an expense by ID.
func (h *TransactionHandler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.txUC.GetExpense(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// ListExpenses lists expenses, newest first.
func (h *TransactionHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	expenses, err := h.txUC.ListExpenses(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list expenses", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpensesFromDomain(expenses))
}

// UpdateExpense edits an expense; the cash book absorbs the difference.
func (h *TransactionHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.txUC.UpdateExpense(r.Context(), chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update expense", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete returns a handler that removes a transaction of the given type and
// reverses every ledger effect it had.
func (h *TransactionHandler) Delete(txType domain.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.txUC.DeleteTransaction(r.Context(), txType, chi.URLParam(r, "id")); err != nil {
			writeError(w, mapDomainError(err), "failed to delete transaction", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
