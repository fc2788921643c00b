package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/adapter/http/handler"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/auth"
	"github.com/mandibook/mandiledger/internal/usecase"
)

type fakeTransactionService struct{}

func (fakeTransactionService) CreateBuy(context.Context, usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
	return &domain.BuyTransaction{ID: "buy-1", PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) CreateSell(context.Context, usecase.CreateSellInput) (*domain.SellTransaction, error) {
	return &domain.SellTransaction{ID: "sell-1", PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) CreateLend(context.Context, usecase.CreateLendInput) (*domain.LendTransaction, error) {
	return &domain.LendTransaction{ID: "lend-1", PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) CreateExpense(context.Context, usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	return &domain.ExpenseTransaction{ID: "exp-1"}, nil
}

func (fakeTransactionService) UpdateBuy(_ context.Context, id string, _ usecase.CreateBuyInput) (*domain.BuyTransaction, error) {
	return &domain.BuyTransaction{ID: id, PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) UpdateSell(_ context.Context, id string, _ usecase.CreateSellInput) (*domain.SellTransaction, error) {
	return &domain.SellTransaction{ID: id, PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) UpdateLend(_ context.Context, id string, _ usecase.CreateLendInput) (*domain.LendTransaction, error) {
	return &domain.LendTransaction{ID: id, PaymentStatus: domain.StatusPending}, nil
}

func (fakeTransactionService) UpdateExpense(_ context.Context, id string, _ usecase.CreateExpenseInput) (*domain.ExpenseTransaction, error) {
	return &domain.ExpenseTransaction{ID: id}, nil
}

func (fakeTransactionService) DeleteTransaction(context.Context, domain.TransactionType, string) error {
	return nil
}

func (fakeTransactionService) GetBuy(context.Context, string) (*domain.BuyTransaction, error) {
	return &domain.BuyTransaction{ID: "buy-1"}, nil
}

func (fakeTransactionService) GetSell(context.Context, string) (*domain.SellTransaction, error) {
	return &domain.SellTransaction{ID: "sell-1"}, nil
}

func (fakeTransactionService) GetLend(context.Context, string) (*domain.LendTransaction, error) {
	return &domain.LendTransaction{ID: "lend-1"}, nil
}

func (fakeTransactionService) GetExpense(context.Context, string) (*domain.ExpenseTransaction, error) {
	return &domain.ExpenseTransaction{ID: "exp-1"}, nil
}

func (fakeTransactionService) ListBuys(context.Context, int, int) ([]*domain.BuyTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) ListSells(context.Context, int, int) ([]*domain.SellTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) ListLends(context.Context, int, int) ([]*domain.LendTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) ListExpenses(context.Context, int, int) ([]*domain.ExpenseTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) SearchBuys(context.Context, string, int, int) ([]*domain.BuyTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) SearchSells(context.Context, string, int, int) ([]*domain.SellTransaction, error) {
	return nil, nil
}

func (fakeTransactionService) SearchLends(context.Context, string, int, int) ([]*domain.LendTransaction, error) {
	return nil, nil
}

type fakePaymentService struct{}

func (fakePaymentService) AddPayment(context.Context, usecase.AddPaymentInput) (*domain.Payment, error) {
	return &domain.Payment{ID: "pay-1"}, nil
}

func (fakePaymentService) DeletePayment(context.Context, string) error { return nil }

func (fakePaymentService) ListPayments(context.Context, domain.TransactionType, string) ([]*domain.Payment, error) {
	return nil, nil
}

type fakeLendService struct{}

func (fakeLendService) PreviewAccrual(context.Context, string, time.Time) (*usecase.AccrualPreview, error) {
	return &usecase.AccrualPreview{}, nil
}

func (fakeLendService) AddLendPayment(context.Context, usecase.AddLendPaymentInput) (*domain.Payment, error) {
	return &domain.Payment{ID: "pay-1"}, nil
}

type fakeDashboardService struct{}

func (fakeDashboardService) GetSummary(context.Context, time.Time, time.Time) (*usecase.Summary, error) {
	return &usecase.Summary{}, nil
}

type fakeCashBookService struct{}

func (fakeCashBookService) Balance(context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(3800), nil
}

func (fakeCashBookService) Override(context.Context, decimal.Decimal) error { return nil }
func (fakeCashBookService) Reset(context.Context) error                     { return nil }

type fakeSyncService struct{ swept bool }

func (s *fakeSyncService) SyncData(context.Context) (*domain.SyncLog, error) {
	s.swept = true
	return &domain.SyncLog{ID: "sweep-1", Status: domain.SyncStatusOK}, nil
}

func (s *fakeSyncService) ListRecentLogs(context.Context, int) ([]*domain.SyncLog, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, jwtManager *auth.JWTManager, syncSvc *fakeSyncService) http.Handler {
	t.Helper()

	return NewRouter(RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(fakeTransactionService{}),
		PaymentHandler:     handler.NewPaymentHandler(fakePaymentService{}, fakeLendService{}),
		DashboardHandler:   handler.NewDashboardHandler(fakeDashboardService{}),
		CashBookHandler:    handler.NewCashBookHandler(fakeCashBookService{}),
		SyncHandler:        handler.NewSyncHandler(syncSvc),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
		JWTManager:         jwtManager,
		Logger:             zerolog.Nop(),
	})
}

func TestRouterDispatch(t *testing.T) {
	router := newTestRouter(t, nil, &fakeSyncService{})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/api/v1/transactions/buy", "{}", http.StatusCreated},
		{http.MethodGet, "/api/v1/transactions/buy", "", http.StatusOK},
		{http.MethodGet, "/api/v1/transactions/buy?q=ramesh", "", http.StatusOK},
		{http.MethodGet, "/api/v1/transactions/buy/buy-1", "", http.StatusOK},
		{http.MethodPut, "/api/v1/transactions/buy/buy-1", "{}", http.StatusOK},
		{http.MethodDelete, "/api/v1/transactions/buy/buy-1", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/transactions/lend/lend-1/accrual", "", http.StatusOK},
		{http.MethodPost, "/api/v1/transactions/lend/lend-1/payments", "{}", http.StatusCreated},
		{http.MethodPost, "/api/v1/payments", "{}", http.StatusCreated},
		{http.MethodDelete, "/api/v1/payments/pay-1", "", http.StatusNoContent},
		{http.MethodGet, "/api/v1/dashboard/summary", "", http.StatusOK},
		{http.MethodGet, "/api/v1/cashbook", "", http.StatusOK},
		{http.MethodPut, "/api/v1/cashbook/override", `{"balance":"500"}`, http.StatusOK},
		{http.MethodGet, "/api/v1/sync/logs", "", http.StatusOK},
	}

	for _, tt := range tests {
		var req *http.Request
		if tt.body != "" {
			req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		} else {
			req = httptest.NewRequest(tt.method, tt.path, nil)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestRouterSyncNowNeedsSession(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Minute)
	syncSvc := &fakeSyncService{}
	router := newTestRouter(t, jwtManager, syncSvc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous sync = %d, want 401", rec.Code)
	}
	if syncSvc.swept {
		t.Fatal("sweep must not run without a session")
	}

	token, err := jwtManager.Generate("trader-1", "")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/sync/now", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated sync = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !syncSvc.swept {
		t.Fatal("sweep did not run")
	}
}
