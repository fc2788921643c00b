package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	AddPayment(ctx context.Context, input usecase.AddPaymentInput) (*domain.Payment, error)
	DeletePayment(ctx context.Context, paymentID string) error
	ListPayments(ctx context.Context, txType domain.TransactionType, txID string) ([]*domain.Payment, error)
}

// LendService defines the loan settlement behavior needed by PaymentHandler.
type LendService interface {
	PreviewAccrual(ctx context.Context, transactionID string, asOf time.Time) (*usecase.AccrualPreview, error)
	AddLendPayment(ctx context.Context, input usecase.AddLendPaymentInput) (*domain.Payment, error)
}

// PaymentHandler handles settlement HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
	lendUC    LendService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService, lendUC LendService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC, lendUC: lendUC}
}

// Add applies a payment to a buy or sell transaction.
func (h *PaymentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.AddPayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add payment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// Delete removes a payment and reverses its effect on the parent
// transaction and the cash book.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.paymentUC.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, mapDomainError(err), "failed to delete payment", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByTransaction returns a handler that lists payments against one
// transaction of the given type, oldest first.
func (h *PaymentHandler) ListByTransaction(txType domain.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := h.paymentUC.ListPayments(r.Context(), txType, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, mapDomainError(err), "failed to list payments", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
	}
}

// PreviewAccrual returns the interest position of a loan as of a date.
func (h *PaymentHandler) PreviewAccrual(w http.ResponseWriter, r *http.Request) {
	asOf := parseDateQuery(r, "as_of", time.Now())

	preview, err := h.lendUC.PreviewAccrual(r.Context(), chi.URLParam(r, "id"), asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute accrual", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccrualPreviewFromUseCase(preview))
}

// AddLendPayment applies a repayment to a loan. Interest is settled before
// principal; a final repayment derives its amount server-side.
func (h *PaymentHandler) AddLendPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.AddLendPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.lendUC.AddLendPayment(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add repayment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}
