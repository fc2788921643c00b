package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
	"github.com/mandibook/mandiledger/internal/usecase/mocks"
)

type txFixture struct {
	uc          *usecase.TransactionUseCase
	buyRepo     *mocks.MockBuyRepository
	sellRepo    *mocks.MockSellRepository
	lendRepo    *mocks.MockLendRepository
	expenseRepo *mocks.MockExpenseRepository
	payRepo     *mocks.MockPaymentRepository
	mappingRepo *mocks.MockMappingRepository
	cashRepo    *mocks.MockCashBookRepository
	notifier    *mocks.MockSyncNotifier
}

func newTxFixture() *txFixture {
	f := &txFixture{
		buyRepo:     mocks.NewMockBuyRepository(),
		sellRepo:    mocks.NewMockSellRepository(),
		lendRepo:    mocks.NewMockLendRepository(),
		expenseRepo: mocks.NewMockExpenseRepository(),
		payRepo:     mocks.NewMockPaymentRepository(),
		mappingRepo: mocks.NewMockMappingRepository(),
		cashRepo:    mocks.NewMockCashBookRepository(),
		notifier:    mocks.NewMockSyncNotifier(),
	}
	cashUC := usecase.NewCashBookUseCase(f.cashRepo, zerolog.Nop())
	f.uc = usecase.NewTransactionUseCase(
		mocks.NewMockTransactionManager(),
		f.buyRepo, f.sellRepo, f.lendRepo, f.expenseRepo, f.payRepo,
		mocks.NewMockInvoiceSequenceRepository(), f.mappingRepo,
		cashUC, f.notifier, mocks.NewMockIDGenerator(), nil,
	)
	return f
}

func TestTransactionUseCase_CreateBuy(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	buy, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
		Date:             date,
		FarmerName:       "Ramesh",
		FarmerPhone:      "+919876543210",
		GrainType:        "wheat",
		Quantity:         decimal.NewFromInt(50),
		Rate:             decimal.NewFromInt(200),
		CommissionAmount: decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !buy.TotalAmount.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected total 10000, got %s", buy.TotalAmount)
	}
	if !buy.BalanceAmount.Equal(buy.TotalAmount) {
		t.Errorf("expected balance equal to total, got %s", buy.BalanceAmount)
	}
	if buy.PaymentStatus != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", buy.PaymentStatus)
	}
	if buy.InvoiceNumber != "20260314B0001" {
		t.Errorf("expected invoice 20260314B0001, got %s", buy.InvoiceNumber)
	}

	// Second purchase the same day gets the next sequence.
	buy2, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
		Date:        date,
		FarmerName:  "Suresh",
		GrainType:   "wheat",
		Quantity:    decimal.NewFromInt(10),
		Rate:        decimal.NewFromInt(100),
		FarmerPhone: "+919876543211",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buy2.InvoiceNumber != "20260314B0002" {
		t.Errorf("expected invoice 20260314B0002, got %s", buy2.InvoiceNumber)
	}

	// Creation alone moves no cash; payments do.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.IsZero() {
		t.Errorf("expected zero cash, got %s", balance)
	}

	if len(f.notifier.Upserted) != 2 {
		t.Errorf("expected 2 sync notifications, got %d", len(f.notifier.Upserted))
	}
}

func TestTransactionUseCase_CreateBuy_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*usecase.CreateBuyInput)
		errorType error
	}{
		{
			name:      "missing farmer name",
			mutate:    func(in *usecase.CreateBuyInput) { in.FarmerName = "" },
			errorType: domain.ErrMissingField,
		},
		{
			name:      "zero quantity",
			mutate:    func(in *usecase.CreateBuyInput) { in.Quantity = decimal.Zero },
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:      "negative rate",
			mutate:    func(in *usecase.CreateBuyInput) { in.Rate = decimal.NewFromInt(-1) },
			errorType: domain.ErrInvalidAmount,
		},
		{
			name:      "missing grain type",
			mutate:    func(in *usecase.CreateBuyInput) { in.GrainType = "" },
			errorType: domain.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTxFixture()
			input := usecase.CreateBuyInput{
				FarmerName:  "Ramesh",
				FarmerPhone: "+919876543210",
				GrainType:   "wheat",
				Quantity:    decimal.NewFromInt(50),
				Rate:        decimal.NewFromInt(200),
			}
			tt.mutate(&input)

			_, err := f.uc.CreateBuy(context.Background(), input)
			if !errors.Is(err, tt.errorType) {
				t.Errorf("expected %v, got %v", tt.errorType, err)
			}
		})
	}
}

func TestTransactionUseCase_CreateSell_MultiItem(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	sell, err := f.uc.CreateSell(ctx, usecase.CreateSellInput{
		Date:          date,
		CustomerName:  "Suresh Traders",
		CustomerPhone: "+919876543211",
		Items: []usecase.SellItemInput{
			{GrainType: "wheat", Quantity: decimal.NewFromInt(30), Rate: decimal.NewFromInt(220)},
			{GrainType: "rice", Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(400)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 30*220 + 10*400 = 10600 across both lines.
	if !sell.TotalAmount.Equal(decimal.NewFromInt(10600)) {
		t.Errorf("expected total 10600, got %s", sell.TotalAmount)
	}
	if len(sell.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sell.Items))
	}
	for _, item := range sell.Items {
		if item.SellID != sell.ID {
			t.Errorf("item not linked to parent: %s", item.SellID)
		}
	}
	if sell.InvoiceNumber != "20260314S0001" {
		t.Errorf("expected invoice 20260314S0001, got %s", sell.InvoiceNumber)
	}

	_, err = f.uc.CreateSell(ctx, usecase.CreateSellInput{
		CustomerName:  "Anil",
		CustomerPhone: "+919876543212",
	})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField for empty items, got %v", err)
	}
}

func TestTransactionUseCase_CreateLend_CashEffects(t *testing.T) {
	tests := []struct {
		name         string
		phone        string
		lendType     domain.LendType
		expectedCash int64
	}{
		{"counterparty money loan is cash out", "+919876543210", domain.LendMoney, -5000},
		{"self loan is cash in", "", domain.LendMoney, 5000},
		{"grain loan moves no cash", "+919876543210", domain.LendGrain, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTxFixture()
			ctx := context.Background()

			lend, err := f.uc.CreateLend(ctx, usecase.CreateLendInput{
				BorrowerName:         "Mahesh",
				BorrowerPhone:        tt.phone,
				LendType:             tt.lendType,
				Amount:               decimal.NewFromInt(5000),
				InterestRatePerMonth: decimal.NewFromInt(2),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if lend.InvoiceNumber == "" || lend.InvoiceNumber[len(lend.InvoiceNumber)-5] != 'L' {
				t.Errorf("expected an L invoice, got %q", lend.InvoiceNumber)
			}

			balance, _ := f.cashRepo.Balance(ctx)
			if !balance.Equal(decimal.NewFromInt(tt.expectedCash)) {
				t.Errorf("expected cash %d, got %s", tt.expectedCash, balance)
			}
		})
	}
}

func TestTransactionUseCase_CreateExpense(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	expense, err := f.uc.CreateExpense(ctx, usecase.CreateExpenseInput{
		Category: "transport",
		Amount:   decimal.NewFromInt(1200),
		PaidTo:   "Highway Carriers",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.ID == "" {
		t.Error("expected generated id")
	}

	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-1200)) {
		t.Errorf("expected cash -1200, got %s", balance)
	}

	_, err = f.uc.CreateExpense(ctx, usecase.CreateExpenseInput{Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

func TestTransactionUseCase_DeleteTransaction_ReversesEverything(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	lend, err := f.uc.CreateLend(ctx, usecase.CreateLendInput{
		BorrowerName:         "Mahesh",
		BorrowerPhone:        "+919876543210",
		LendType:             domain.LendMoney,
		Amount:               decimal.NewFromInt(5000),
		InterestRatePerMonth: decimal.NewFromInt(2),
	})
	if err != nil {
		t.Fatalf("create lend: %v", err)
	}

	// A repayment of 500 came in before the delete.
	if err := f.payRepo.Create(ctx, nil, &domain.Payment{
		ID:              "pay-1",
		TransactionID:   lend.ID,
		TransactionType: domain.TypeLend,
		Amount:          decimal.NewFromInt(500),
		PrincipalAmount: decimal.NewFromInt(500),
		PaymentDate:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	if _, err := f.cashRepo.ApplyDelta(ctx, nil, decimal.NewFromInt(500), time.Now().UTC()); err != nil {
		t.Fatalf("seed cash: %v", err)
	}

	if err := f.uc.DeleteTransaction(ctx, domain.TypeLend, lend.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.lendRepo.GetByID(ctx, lend.ID); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected lend gone, got %v", err)
	}

	payments, _ := f.payRepo.ListByTransaction(ctx, domain.TypeLend, lend.ID)
	if len(payments) != 0 {
		t.Errorf("expected payments cascaded, got %d", len(payments))
	}

	// Origination moved -5000 and the repayment +500. The delete reverses
	// both legs, leaving the balance where it started.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.IsZero() {
		t.Errorf("expected cash conserved at zero, got %s", balance)
	}

	if len(f.notifier.Deleted) != 1 || f.notifier.Deleted[0] != lend.ID {
		t.Errorf("expected delete notification for %s, got %v", lend.ID, f.notifier.Deleted)
	}
}

func TestTransactionUseCase_DeleteTransaction_Expense(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	expense, err := f.uc.CreateExpense(ctx, usecase.CreateExpenseInput{
		Category: "electricity",
		Amount:   decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := f.uc.DeleteTransaction(ctx, domain.TypeExpense, expense.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.IsZero() {
		t.Errorf("expected cash back to zero, got %s", balance)
	}
}

func TestTransactionUseCase_DeleteTransaction_UnknownType(t *testing.T) {
	f := newTxFixture()
	err := f.uc.DeleteTransaction(context.Background(), domain.TransactionType("BOGUS"), "id-1")
	if !errors.Is(err, domain.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestTransactionUseCase_ListBuys_Pagination(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
			FarmerName:  fmt.Sprintf("Farmer %d", i),
			FarmerPhone: "+919876543210",
			GrainType:   "wheat",
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(100),
		})
		if err != nil {
			t.Fatalf("create buy %d: %v", i, err)
		}
	}

	page, err := f.uc.ListBuys(ctx, 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
}

func TestTransactionUseCase_UpdateBuy(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	buy, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
		FarmerName:  "Ramesh",
		FarmerPhone: "+919876543210",
		GrainType:   "wheat",
		Quantity:    decimal.NewFromInt(50),
		Rate:        decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.uc.UpdateBuy(ctx, buy.ID, usecase.CreateBuyInput{
		FarmerName:  "Ramesh Kumar",
		FarmerPhone: "+919876543210",
		GrainType:   "bajra",
		Quantity:    decimal.NewFromInt(40),
		Rate:        decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !updated.TotalAmount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected recomputed total 6000, got %s", updated.TotalAmount)
	}
	if !updated.BalanceAmount.Equal(updated.TotalAmount) {
		t.Errorf("expected balance equal to total, got %s", updated.BalanceAmount)
	}
	if updated.InvoiceNumber != buy.InvoiceNumber {
		t.Errorf("invoice must survive an edit: %s != %s", updated.InvoiceNumber, buy.InvoiceNumber)
	}
	if updated.FarmerName != "Ramesh Kumar" {
		t.Errorf("expected new farmer name, got %s", updated.FarmerName)
	}

	// Edits re-notify the mirror.
	if len(f.notifier.Upserted) != 2 {
		t.Errorf("expected 2 upsert notifications, got %d", len(f.notifier.Upserted))
	}
}

func TestTransactionUseCase_UpdateBuy_RejectsSettled(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	buy, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
		FarmerName:  "Ramesh",
		FarmerPhone: "+919876543210",
		GrainType:   "wheat",
		Quantity:    decimal.NewFromInt(50),
		Rate:        decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	buy.PaidAmount = decimal.NewFromInt(1000)
	f.buyRepo.GetByIDFunc = func(ctx context.Context, id string) (*domain.BuyTransaction, error) {
		cp := *buy
		return &cp, nil
	}

	_, err = f.uc.UpdateBuy(ctx, buy.ID, usecase.CreateBuyInput{
		FarmerName:  "Ramesh",
		FarmerPhone: "+919876543210",
		GrainType:   "wheat",
		Quantity:    decimal.NewFromInt(10),
		Rate:        decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrTransactionSettled) {
		t.Fatalf("expected ErrTransactionSettled, got %v", err)
	}
}

func TestTransactionUseCase_UpdateLend_RederivesCash(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	lend, err := f.uc.CreateLend(ctx, usecase.CreateLendInput{
		BorrowerName:  "Mohan",
		BorrowerPhone: "+919000000001",
		LendType:      domain.LendMoney,
		Amount:        decimal.NewFromInt(5000),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Lending out 5000 left the cash book at -5000.
	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-5000)) {
		t.Fatalf("expected balance -5000 after origination, got %s", balance)
	}

	if _, err := f.uc.UpdateLend(ctx, lend.ID, usecase.CreateLendInput{
		BorrowerName:  "Mohan",
		BorrowerPhone: "+919000000001",
		LendType:      domain.LendMoney,
		Amount:        decimal.NewFromInt(3000),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	balance, _ = f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-3000)) {
		t.Errorf("expected balance -3000 after edit, got %s", balance)
	}
}

func TestTransactionUseCase_UpdateExpense_AdjustsCash(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	expense, err := f.uc.CreateExpense(ctx, usecase.CreateExpenseInput{
		Category: "transport",
		Amount:   decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.uc.UpdateExpense(ctx, expense.ID, usecase.CreateExpenseInput{
		Category: "transport",
		Amount:   decimal.NewFromInt(250),
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	balance, _ := f.cashRepo.Balance(ctx)
	if !balance.Equal(decimal.NewFromInt(-250)) {
		t.Errorf("expected balance -250 after edit, got %s", balance)
	}
}

func TestTransactionUseCase_SearchBuys(t *testing.T) {
	f := newTxFixture()
	ctx := context.Background()

	names := []string{"Ramesh", "Suresh", "Rameshwar"}
	for i, name := range names {
		if _, err := f.uc.CreateBuy(ctx, usecase.CreateBuyInput{
			FarmerName:  name,
			FarmerPhone: fmt.Sprintf("+91900000000%d", i),
			GrainType:   "wheat",
			Quantity:    decimal.NewFromInt(1),
			Rate:        decimal.NewFromInt(10),
		}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	hits, err := f.uc.SearchBuys(ctx, "ramesh", 20, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits for ramesh, got %d", len(hits))
	}
	for _, h := range hits {
		if h.FarmerName != "Ramesh" && h.FarmerName != "Rameshwar" {
			t.Errorf("unexpected hit %s", h.FarmerName)
		}
	}
}
