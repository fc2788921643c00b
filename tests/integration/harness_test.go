package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	postgresRepo "github.com/mandibook/mandiledger/internal/adapter/repository/postgres"
	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
	"github.com/mandibook/mandiledger/tests/testutil"
)

// ledger wires the full use case stack against a real database. The cloud
// mirror is optional; most tests run local-only.
type ledger struct {
	db *testutil.TestDB

	cashUC *usecase.CashBookUseCase
	txUC   *usecase.TransactionUseCase
	payUC  *usecase.PaymentUseCase
	lendUC *usecase.LendUseCase
	dashUC *usecase.DashboardUseCase
	syncUC *usecase.SyncUseCase
}

func newLedger(t *testing.T, mirror usecase.RemoteMirror) *ledger {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)
	db.TruncateAll(context.Background())

	pool := db.Pool
	txManager := postgresRepo.NewTxManager(pool)
	buyRepo := postgresRepo.NewBuyRepository(pool)
	sellRepo := postgresRepo.NewSellRepository(pool)
	lendRepo := postgresRepo.NewLendRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceSequenceRepository(pool)
	mappingRepo := postgresRepo.NewMappingRepository(pool)
	syncLogRepo := postgresRepo.NewSyncLogRepository(pool)
	cashBookRepo := postgresRepo.NewCashBookRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	logger := zerolog.Nop()

	cashUC := usecase.NewCashBookUseCase(cashBookRepo, logger)
	syncUC := usecase.NewSyncUseCase(txManager, buyRepo, sellRepo, lendRepo, expenseRepo,
		mappingRepo, syncLogRepo, mirror, idGen, logger, nil, 0)
	txUC := usecase.NewTransactionUseCase(txManager, buyRepo, sellRepo, lendRepo,
		expenseRepo, paymentRepo, invoiceRepo, mappingRepo, cashUC, syncUC, idGen, nil)
	payUC := usecase.NewPaymentUseCase(txManager, buyRepo, sellRepo, lendRepo,
		paymentRepo, cashUC, syncUC, idGen, nil)
	lendUC := usecase.NewLendUseCase(txManager, lendRepo, paymentRepo, cashUC, syncUC, idGen, nil)
	dashUC := usecase.NewDashboardUseCase(buyRepo, sellRepo, lendRepo, expenseRepo,
		paymentRepo, cashUC, nil, time.Second, logger)

	return &ledger{
		db:     db,
		cashUC: cashUC,
		txUC:   txUC,
		payUC:  payUC,
		lendUC: lendUC,
		dashUC: dashUC,
		syncUC: syncUC,
	}
}

// sessionCtx is a context carrying a logged-in proprietor.
func sessionCtx(userID string) context.Context {
	return domain.ContextWithUserID(context.Background(), userID)
}
