package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/adapter/http/dto"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

type transactionServiceStub struct {
	createBuyFn     func(ctx context.Context, input usecase.CreateBuyInput) (*domain.BuyTransaction, error)
	createSellFn    func(ctx context.Context, input usecase.CreateSellInput) (*domain.SellTransaction, error)
	createLendFn    func(ctx context.Context, input usecase.CreateLendInput) (*domain.LendTransaction, error)
	createExpenseFn func(ctx context.Context, input usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error)
	updateBuyFn     func(ctx context.Context, id string, input usecase.CreateBuyInput) (*domain.BuyTransaction, error)
	deleteFn        func(ctx context.Context, txType domain.TransactionType, id string) error
	getBuyFn        func(ctx context.Context, id string) (*domain.BuyTransaction, error)
	listLendsFn     func(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error)
	searchBuysFn    func(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error)
}

func (s *transactionServiceStub) CreateBuy(ctx context.Context, input usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
	return s.createBuyFn(ctx, input)
}

func (s *transactionServiceStub) CreateSell(ctx context.Context, input usecase.CreateSellInput) (*domain.SellTransaction, error) {
	return s.createSellFn(ctx, input)
}

func (s *transactionServiceStub) CreateLend(ctx context.Context, input usecase.CreateLendInput) (*domain.LendTransaction, error) {
	return s.createLendFn(ctx, input)
}

func (s *transactionServiceStub) CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	return s.createExpenseFn(ctx, input)
}

func (s *transactionServiceStub) UpdateBuy(ctx context.Context, id string, input usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
	return s.updateBuyFn(ctx, id, input)
}

func (s *transactionServiceStub) UpdateSell(context.Context, string, usecase.CreateSellInput) (*domain.SellTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) UpdateLend(context.Context, string, usecase.CreateLendInput) (*domain.LendTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) UpdateExpense(context.Context, string, usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) DeleteTransaction(ctx context.Context, txType domain.TransactionType, id string) error {
	return s.deleteFn(ctx, txType, id)
}

func (s *transactionServiceStub) GetBuy(ctx context.Context, id string) (*domain.BuyTransaction, error) {
	return s.getBuyFn(ctx, id)
}

func (s *transactionServiceStub) GetSell(context.Context, string) (*domain.SellTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) GetLend(context.Context, string) (*domain.LendTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) GetExpense(context.Context, string) (*domain.ExpenseTransaction, error) {
	return nil, domain.ErrTransactionNotFound
}

func (s *transactionServiceStub) ListBuys(context.Context, int, int) ([]*domain.BuyTransaction, error) {
	return nil, nil
}

func (s *transactionServiceStub) ListSells(context.Context, int, int) ([]*domain.SellTransaction, error) {
	return nil, nil
}

func (s *transactionServiceStub) ListLends(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error) {
	return s.listLendsFn(ctx, limit, offset)
}

func (s *transactionServiceStub) ListExpenses(context.Context, int, int) ([]*domain.ExpenseTransaction, error) {
	return nil, nil
}

func (s *transactionServiceStub) SearchBuys(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error) {
	return s.searchBuysFn(ctx, query, limit, offset)
}

func (s *transactionServiceStub) SearchSells(context.Context, string, int, int) ([]*domain.SellTransaction, error) {
	return nil, nil
}

func (s *transactionServiceStub) SearchLends(context.Context, string, int, int) ([]*domain.LendTransaction, error) {
	return nil, nil
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func TestTransactionHandler_CreateBuy_Success(t *testing.T) {
	buy := &domain.BuyTransaction{
		ID:            "buy-1",
		FarmerName:    "Ramesh",
		TotalAmount:   decimal.NewFromInt(10000),
		InvoiceNumber: "20260314B0001",
		PaymentStatus: domain.StatusPending,
	}

	var captured usecase.CreateBuyInput
	handler := NewTransactionHandler(&transactionServiceStub{
		createBuyFn: func(ctx context.Context, input usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
			captured = input
			return buy, nil
		},
	})

	body, _ := json.Marshal(dto.CreateBuyRequest{
		Date:       time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		FarmerName: "Ramesh",
		GrainType:  "wheat",
		Quantity:   decimal.NewFromInt(10),
		Rate:       decimal.NewFromInt(1000),
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/buy", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateBuy(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.FarmerName != "Ramesh" || !captured.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.BuyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.InvoiceNumber != "20260314B0001" {
		t.Fatalf("expected invoice number, got %s", resp.InvoiceNumber)
	}
}

func TestTransactionHandler_CreateBuy_InvalidJSON(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		createBuyFn: func(ctx context.Context, input usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
			t.Fatal("CreateBuy should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/buy", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	handler.CreateBuy(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_CreateSell_ValidationError(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		createSellFn: func(ctx context.Context, input usecase.CreateSellInput) (*domain.SellTransaction, error) {
			return nil, domain.ErrMissingField
		},
	})

	body, _ := json.Marshal(dto.CreateSellRequest{CustomerName: "Gupta Traders"})
	req := httptest.NewRequest(http.MethodPost, "/transactions/sell", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreateSell(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_GetBuy_NotFound(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getBuyFn: func(ctx context.Context, id string) (*domain.BuyTransaction, error) {
			return nil, domain.ErrTransactionNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/buy/missing", nil)
	req = setChiURLParam(req, "id", "missing")
	rec := httptest.NewRecorder()

	handler.GetBuy(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransactionHandler_Delete(t *testing.T) {
	var gotType domain.TransactionType
	var gotID string
	handler := NewTransactionHandler(&transactionServiceStub{
		deleteFn: func(ctx context.Context, txType domain.TransactionType, id string) error {
			gotType, gotID = txType, id
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/transactions/lend/lend-1", nil)
	req = setChiURLParam(req, "id", "lend-1")
	rec := httptest.NewRecorder()

	handler.Delete(domain.TypeLend)(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if gotType != domain.TypeLend || gotID != "lend-1" {
		t.Fatalf("expected lend/lend-1, got %s/%s", gotType, gotID)
	}
}

func TestTransactionHandler_ListLends_PassesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	handler := NewTransactionHandler(&transactionServiceStub{
		listLendsFn: func(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error) {
			gotLimit, gotOffset = limit, offset
			return []*domain.LendTransaction{{ID: "lend-1", LendType: domain.LendMoney}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/lend?limit=5&offset=10", nil)
	rec := httptest.NewRecorder()

	handler.ListLends(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 || gotOffset != 10 {
		t.Fatalf("expected limit=5 offset=10, got %d/%d", gotLimit, gotOffset)
	}

	var resp []*dto.LendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != "lend-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTransactionHandler_UpdateBuy(t *testing.T) {
	var gotID string
	handler := NewTransactionHandler(&transactionServiceStub{
		updateBuyFn: func(ctx context.Context, id string, input usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
			gotID = id
			return &domain.BuyTransaction{
				ID:          id,
				FarmerName:  input.FarmerName,
				TotalAmount: input.Quantity.Mul(input.Rate),
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateBuyRequest{
		FarmerName:  "Ramesh",
		FarmerPhone: "+919876543210",
		GrainType:   "wheat",
		Quantity:    decimal.NewFromInt(10),
		Rate:        decimal.NewFromInt(20),
	})
	req := httptest.NewRequest(http.MethodPut, "/transactions/buy/buy-1", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "buy-1")
	rec := httptest.NewRecorder()

	handler.UpdateBuy(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != "buy-1" {
		t.Fatalf("expected id buy-1, got %s", gotID)
	}
}

func TestTransactionHandler_ListBuys_QueryRoutesToSearch(t *testing.T) {
	var gotQuery string
	handler := NewTransactionHandler(&transactionServiceStub{
		searchBuysFn: func(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error) {
			gotQuery = query
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/buy?q=ramesh", nil)
	rec := httptest.NewRecorder()

	handler.ListBuys(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotQuery != "ramesh" {
		t.Fatalf("expected search query ramesh, got %q", gotQuery)
	}
}
