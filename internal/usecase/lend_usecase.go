package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/metrics"
)

// LendUseCase settles money-lend transactions with interest accrual.
// Interest accrues on the outstanding principal only, simple-interest,
// prorated by calendar days since the last reconciliation point.
type LendUseCase struct {
	txManager   TransactionManager
	lendRepo    LendRepository
	paymentRepo PaymentRepository
	cashBook    *CashBookUseCase
	syncer      SyncNotifier
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLendUseCase creates a new LendUseCase.
func NewLendUseCase(
	txManager TransactionManager,
	lendRepo LendRepository,
	paymentRepo PaymentRepository,
	cashBook *CashBookUseCase,
	syncer SyncNotifier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *LendUseCase {
	return &LendUseCase{
		txManager:   txManager,
		lendRepo:    lendRepo,
		paymentRepo: paymentRepo,
		cashBook:    cashBook,
		syncer:      syncer,
		idGen:       idGen,
		metrics:     m,
	}
}

// AddLendPaymentInput represents input for a loan repayment.
type AddLendPaymentInput struct {
	TransactionID string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMode   string
	Notes         string
	Kind          domain.PaymentKind
}

// AccrualPreview is what the settlement screen shows before a repayment.
type AccrualPreview struct {
	Days                    int64
	OutstandingPrincipal    decimal.Decimal
	TotalInterest           decimal.Decimal
	TotalAmountWithInterest decimal.Decimal
}

// PreviewAccrual computes the interest position of a loan as of a date.
func (uc *LendUseCase) PreviewAccrual(ctx context.Context, transactionID string, asOf time.Time) (*AccrualPreview, error) {
	lend, err := uc.lendRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	last, err := uc.paymentRepo.LastPaymentDate(ctx, domain.TypeLend, transactionID)
	if err != nil {
		return nil, err
	}

	since := lend.Date
	if last != nil {
		since = *last
	}

	principal := lend.OutstandingPrincipal()
	interest := lend.AccruedInterest(asOf, last)

	return &AccrualPreview{
		Days:                    domain.AccrualDays(since, asOf),
		OutstandingPrincipal:    principal,
		TotalInterest:           interest,
		TotalAmountWithInterest: principal.Add(interest),
	}, nil
}

// AddLendPayment settles a loan, splitting the amount interest-first.
// For a FINAL settlement the amount is derived (outstanding principal plus
// accrued interest); for PARTIAL the caller's amount is validated against
// that total. The next interest window starts at this payment's date on the
// reduced balance.
func (uc *LendUseCase) AddLendPayment(ctx context.Context, input AddLendPaymentInput) (*domain.Payment, error) {
	if input.Kind != domain.PaymentFinal && input.Kind != domain.PaymentPartial {
		input.Kind = domain.PaymentPartial
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	lend, err := uc.lendRepo.GetByIDForUpdate(txCtx, tx, input.TransactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	// Payments on this loan only change under the parent lock we hold.
	last, err := uc.paymentRepo.LastPaymentDate(txCtx, domain.TypeLend, input.TransactionID)
	if err != nil {
		return nil, err
	}

	principal := lend.OutstandingPrincipal()
	totalInterest := lend.AccruedInterest(paymentDate, last)
	totalWithInterest := principal.Add(totalInterest)

	var actualAmount, interestPayment, principalPayment decimal.Decimal
	switch input.Kind {
	case domain.PaymentFinal:
		actualAmount = totalWithInterest
		interestPayment = totalInterest
		principalPayment = principal
	default:
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, input.Amount)
		}
		if input.Amount.GreaterThan(totalWithInterest) {
			return nil, fmt.Errorf("%w: amount %s against principal %s plus interest %s",
				domain.ErrAmountExceedsBalance, input.Amount, principal, totalInterest)
		}
		actualAmount = input.Amount
		interestPayment, principalPayment = domain.SplitRepayment(actualAmount, totalInterest)
	}

	payment := &domain.Payment{
		ID:              uc.idGen.Generate(),
		TransactionID:   input.TransactionID,
		TransactionType: domain.TypeLend,
		Amount:          actualAmount,
		PrincipalAmount: principalPayment,
		InterestAmount:  interestPayment,
		PaymentDate:     paymentDate,
		PaymentMode:     input.PaymentMode,
		Notes:           input.Notes,
		CreatedAt:       now,
	}

	if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
		return nil, err
	}

	lend.ApplyRepayment(principalPayment, now)
	if err := uc.lendRepo.Update(txCtx, tx, lend); err != nil {
		return nil, err
	}

	// A counterparty repaying its loan is cash in; the business settling a
	// self-loan is cash out.
	if actualAmount.IsPositive() {
		if lend.IsSelfLoan() {
			err = uc.cashBook.Subtract(txCtx, tx, actualAmount, CashReasonSelfLoanSettle)
		} else {
			err = uc.cashBook.Add(txCtx, tx, actualAmount, CashReasonLendRepayment)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.WithLabelValues(string(domain.TypeLend)).Inc()
		interest, _ := interestPayment.Float64()
		uc.metrics.InterestAccrued.Observe(interest)
	}

	uc.syncer.NotifyUpserted(ctx, &domain.Transaction{Type: domain.TypeLend, Lend: lend})

	return payment, nil
}
