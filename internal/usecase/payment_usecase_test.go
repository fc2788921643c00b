package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
	"github.com/mandibook/mandiledger/internal/usecase/mocks"
)

type paymentFixture struct {
	uc       *usecase.PaymentUseCase
	buyRepo  *mocks.MockBuyRepository
	sellRepo *mocks.MockSellRepository
	lendRepo *mocks.MockLendRepository
	payRepo  *mocks.MockPaymentRepository
	cashRepo *mocks.MockCashBookRepository
	notifier *mocks.MockSyncNotifier
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		buyRepo:  mocks.NewMockBuyRepository(),
		sellRepo: mocks.NewMockSellRepository(),
		lendRepo: mocks.NewMockLendRepository(),
		payRepo:  mocks.NewMockPaymentRepository(),
		cashRepo: mocks.NewMockCashBookRepository(),
		notifier: mocks.NewMockSyncNotifier(),
	}
	cashUC := usecase.NewCashBookUseCase(f.cashRepo, zerolog.Nop())
	f.uc = usecase.NewPaymentUseCase(
		mocks.NewMockTransactionManager(),
		f.buyRepo, f.sellRepo, f.lendRepo, f.payRepo,
		cashUC, f.notifier, mocks.NewMockIDGenerator(), nil,
	)
	return f
}

func seedBuy(t *testing.T, f *paymentFixture, id string, total int64) {
	t.Helper()
	amount := decimal.NewFromInt(total)
	err := f.buyRepo.Create(context.Background(), nil, &domain.BuyTransaction{
		ID:            id,
		Date:          time.Now().UTC(),
		FarmerName:    "Ramesh",
		GrainType:     "wheat",
		TotalAmount:   amount,
		PaidAmount:    decimal.Zero,
		BalanceAmount: amount,
		PaymentStatus: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed buy: %v", err)
	}
}

func seedSell(t *testing.T, f *paymentFixture, id string, total int64) {
	t.Helper()
	amount := decimal.NewFromInt(total)
	err := f.sellRepo.Create(context.Background(), nil, &domain.SellTransaction{
		ID:             id,
		Date:           time.Now().UTC(),
		CustomerName:   "Suresh Traders",
		GrainType:      "wheat",
		TotalAmount:    amount,
		ReceivedAmount: decimal.Zero,
		BalanceAmount:  amount,
		PaymentStatus:  domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed sell: %v", err)
	}
}

func TestPaymentUseCase_AddPayment(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.AddPaymentInput
		expectError bool
		errorType   error
	}{
		{
			name: "partial buy payment",
			input: usecase.AddPaymentInput{
				TransactionID:   "buy-1",
				TransactionType: domain.TypeBuy,
				Amount:          decimal.NewFromInt(4000),
			},
		},
		{
			name: "reject zero amount",
			input: usecase.AddPaymentInput{
				TransactionID:   "buy-1",
				TransactionType: domain.TypeBuy,
				Amount:          decimal.Zero,
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "reject overpayment",
			input: usecase.AddPaymentInput{
				TransactionID:   "buy-1",
				TransactionType: domain.TypeBuy,
				Amount:          decimal.NewFromInt(10001),
			},
			expectError: true,
			errorType:   domain.ErrAmountExceedsBalance,
		},
		{
			name: "reject lend type",
			input: usecase.AddPaymentInput{
				TransactionID:   "lend-1",
				TransactionType: domain.TypeLend,
				Amount:          decimal.NewFromInt(100),
			},
			expectError: true,
			errorType:   domain.ErrInvalidType,
		},
		{
			name: "unknown transaction",
			input: usecase.AddPaymentInput{
				TransactionID:   "missing",
				TransactionType: domain.TypeBuy,
				Amount:          decimal.NewFromInt(100),
			},
			expectError: true,
			errorType:   domain.ErrTransactionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture()
			seedBuy(t, f, "buy-1", 10000)

			payment, err := f.uc.AddPayment(context.Background(), tt.input)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if payment == nil {
				t.Fatal("expected payment, got nil")
			}
			if len(f.notifier.Upserted) != 1 {
				t.Errorf("expected 1 sync notification, got %d", len(f.notifier.Upserted))
			}
		})
	}
}

func TestPaymentUseCase_AddPayment_BuyLifecycle(t *testing.T) {
	f := newPaymentFixture()
	seedBuy(t, f, "buy-1", 10000)
	ctx := context.Background()

	// First installment.
	_, err := f.uc.AddPayment(ctx, usecase.AddPaymentInput{
		TransactionID:   "buy-1",
		TransactionType: domain.TypeBuy,
		Amount:          decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}

	buy, _ := f.buyRepo.GetByID(ctx, "buy-1")
	if !buy.BalanceAmount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected balance 6000, got %s", buy.BalanceAmount)
	}
	if buy.PaymentStatus != domain.StatusPartial {
		t.Errorf("expected PARTIAL, got %s", buy.PaymentStatus)
	}

	// Paying a farmer drains cash.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-4000)) {
		t.Errorf("expected cash -4000, got %s", balance)
	}

	// Settle the remainder.
	_, err = f.uc.AddPayment(ctx, usecase.AddPaymentInput{
		TransactionID:   "buy-1",
		TransactionType: domain.TypeBuy,
		Amount:          decimal.NewFromInt(6000),
	})
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}

	buy, _ = f.buyRepo.GetByID(ctx, "buy-1")
	if !buy.BalanceAmount.IsZero() {
		t.Errorf("expected zero balance, got %s", buy.BalanceAmount)
	}
	if buy.PaymentStatus != domain.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", buy.PaymentStatus)
	}
}

func TestPaymentUseCase_AddPayment_SellMovesCashIn(t *testing.T) {
	f := newPaymentFixture()
	seedSell(t, f, "sell-1", 8000)
	ctx := context.Background()

	_, err := f.uc.AddPayment(ctx, usecase.AddPaymentInput{
		TransactionID:   "sell-1",
		TransactionType: domain.TypeSell,
		Amount:          decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected cash 3000, got %s", balance)
	}

	sell, _ := f.sellRepo.GetByID(ctx, "sell-1")
	if !sell.ReceivedAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected received 3000, got %s", sell.ReceivedAmount)
	}
}

func TestPaymentUseCase_DeletePayment_RestoresBuy(t *testing.T) {
	f := newPaymentFixture()
	seedBuy(t, f, "buy-1", 10000)
	ctx := context.Background()

	payment, err := f.uc.AddPayment(ctx, usecase.AddPaymentInput{
		TransactionID:   "buy-1",
		TransactionType: domain.TypeBuy,
		Amount:          decimal.NewFromInt(4000),
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}

	if err := f.uc.DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}

	buy, _ := f.buyRepo.GetByID(ctx, "buy-1")
	if !buy.BalanceAmount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected balance restored to 10000, got %s", buy.BalanceAmount)
	}
	if buy.PaymentStatus != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", buy.PaymentStatus)
	}

	// Cash returns to its pre-payment value.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.IsZero() {
		t.Errorf("expected cash conserved at zero, got %s", balance)
	}

	if _, err := f.payRepo.GetByID(ctx, payment.ID); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("expected payment row gone, got %v", err)
	}
}

func TestPaymentUseCase_DeletePayment_LendReversesPrincipalOnly(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	amount := decimal.NewFromInt(10000)
	if err := f.lendRepo.Create(ctx, nil, &domain.LendTransaction{
		ID:             "lend-1",
		Date:           time.Now().UTC().AddDate(0, 0, -15),
		BorrowerName:   "Mahesh",
		BorrowerPhone:  "+919876543210",
		LendType:       domain.LendMoney,
		Amount:         amount,
		ReturnedAmount: decimal.NewFromInt(200),
		BalanceAmount:  decimal.NewFromInt(9800),
		PaymentStatus:  domain.StatusPartial,
	}); err != nil {
		t.Fatalf("seed lend: %v", err)
	}

	// A repayment of 300 that split 100 interest / 200 principal.
	if err := f.payRepo.Create(ctx, nil, &domain.Payment{
		ID:              "pay-1",
		TransactionID:   "lend-1",
		TransactionType: domain.TypeLend,
		Amount:          decimal.NewFromInt(300),
		PrincipalAmount: decimal.NewFromInt(200),
		InterestAmount:  decimal.NewFromInt(100),
		PaymentDate:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if err := f.uc.DeletePayment(ctx, "pay-1"); err != nil {
		t.Fatalf("delete payment: %v", err)
	}

	lend, _ := f.lendRepo.GetByID(ctx, "lend-1")
	if !lend.ReturnedAmount.IsZero() {
		t.Errorf("expected returned amount back to zero, got %s", lend.ReturnedAmount)
	}
	if !lend.BalanceAmount.Equal(amount) {
		t.Errorf("expected balance restored to 10000, got %s", lend.BalanceAmount)
	}

	// Cash reversal uses the gross 300, not the 200 principal.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("expected cash -300, got %s", balance)
	}
}
