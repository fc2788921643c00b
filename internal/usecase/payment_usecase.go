package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/metrics"
)

// PaymentUseCase applies and reverses settlements against buy and sell
// transactions. The payment insert, the parent balance update and the cash
// delta commit atomically; the mirror upload happens after commit and never
// rolls the local write back.
type PaymentUseCase struct {
	txManager   TransactionManager
	buyRepo     BuyRepository
	sellRepo    SellRepository
	lendRepo    LendRepository
	paymentRepo PaymentRepository
	cashBook    *CashBookUseCase
	syncer      SyncNotifier
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	buyRepo BuyRepository,
	sellRepo SellRepository,
	lendRepo LendRepository,
	paymentRepo PaymentRepository,
	cashBook *CashBookUseCase,
	syncer SyncNotifier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		buyRepo:     buyRepo,
		sellRepo:    sellRepo,
		lendRepo:    lendRepo,
		paymentRepo: paymentRepo,
		cashBook:    cashBook,
		syncer:      syncer,
		idGen:       idGen,
		metrics:     m,
	}
}

// AddPaymentInput represents input for settling a buy or sell transaction.
type AddPaymentInput struct {
	TransactionID   string
	TransactionType domain.TransactionType
	Amount          decimal.Decimal
	PaymentDate     time.Time
	PaymentMode     string
	Notes           string
}

// AddPayment applies a settlement to a buy or sell transaction. A final
// settlement is just a payment whose amount equals the remaining balance;
// no separate state transition exists.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, input AddPaymentInput) (*domain.Payment, error) {
	if input.TransactionType != domain.TypeBuy && input.TransactionType != domain.TypeSell {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidType, input.TransactionType)
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, input.Amount)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	payment := &domain.Payment{
		ID:              uc.idGen.Generate(),
		TransactionID:   input.TransactionID,
		TransactionType: input.TransactionType,
		Amount:          input.Amount,
		PaymentDate:     paymentDate,
		PaymentMode:     input.PaymentMode,
		Notes:           input.Notes,
		CreatedAt:       now,
	}

	var txn *domain.Transaction

	switch input.TransactionType {
	case domain.TypeBuy:
		buy, err := uc.buyRepo.GetByIDForUpdate(txCtx, tx, input.TransactionID)
		if err != nil {
			return nil, err
		}
		if err := buy.ValidatePayment(input.Amount); err != nil {
			return nil, fmt.Errorf("%w: amount %s against balance %s", err, input.Amount, buy.BalanceAmount)
		}
		if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
			return nil, err
		}
		buy.ApplyPayment(input.Amount, now)
		if err := uc.buyRepo.Update(txCtx, tx, buy); err != nil {
			return nil, err
		}
		// Paying a farmer is cash out.
		if err := uc.cashBook.Subtract(txCtx, tx, input.Amount, CashReasonBuyPayment); err != nil {
			return nil, err
		}
		txn = &domain.Transaction{Type: domain.TypeBuy, Buy: buy}

	case domain.TypeSell:
		sell, err := uc.sellRepo.GetByIDForUpdate(txCtx, tx, input.TransactionID)
		if err != nil {
			return nil, err
		}
		if err := sell.ValidatePayment(input.Amount); err != nil {
			return nil, fmt.Errorf("%w: amount %s against balance %s", err, input.Amount, sell.BalanceAmount)
		}
		if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
			return nil, err
		}
		sell.ApplyPayment(input.Amount, now)
		if err := uc.sellRepo.Update(txCtx, tx, sell); err != nil {
			return nil, err
		}
		// A receipt from a customer is cash in.
		if err := uc.cashBook.Add(txCtx, tx, input.Amount, CashReasonSellReceipt); err != nil {
			return nil, err
		}
		txn = &domain.Transaction{Type: domain.TypeSell, Sell: sell}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.WithLabelValues(string(input.TransactionType)).Inc()
		amount, _ := input.Amount.Float64()
		uc.metrics.PaymentAmount.Observe(amount)
	}

	uc.syncer.NotifyUpserted(ctx, txn)

	return payment, nil
}

// DeletePayment fully reverses a settlement: the parent's paid and balance
// fields, its status and the cash delta all return to their pre-payment
// values, then the payment row is removed. For lend payments only the
// principal component ever touched ReturnedAmount, so only that component
// is subtracted back while the cash reversal uses the gross amount.
func (uc *PaymentUseCase) DeletePayment(ctx context.Context, paymentID string) error {
	payment, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()

	var txn *domain.Transaction

	switch payment.TransactionType {
	case domain.TypeBuy:
		buy, err := uc.buyRepo.GetByIDForUpdate(txCtx, tx, payment.TransactionID)
		if err != nil {
			return err
		}
		buy.ReversePayment(payment.Amount, now)
		if err := uc.buyRepo.Update(txCtx, tx, buy); err != nil {
			return err
		}
		if err := uc.cashBook.Add(txCtx, tx, payment.Amount, CashReasonBuyReversal); err != nil {
			return err
		}
		txn = &domain.Transaction{Type: domain.TypeBuy, Buy: buy}

	case domain.TypeSell:
		sell, err := uc.sellRepo.GetByIDForUpdate(txCtx, tx, payment.TransactionID)
		if err != nil {
			return err
		}
		sell.ReversePayment(payment.Amount, now)
		if err := uc.sellRepo.Update(txCtx, tx, sell); err != nil {
			return err
		}
		if err := uc.cashBook.Subtract(txCtx, tx, payment.Amount, CashReasonSellReversal); err != nil {
			return err
		}
		txn = &domain.Transaction{Type: domain.TypeSell, Sell: sell}

	case domain.TypeLend:
		lend, err := uc.lendRepo.GetByIDForUpdate(txCtx, tx, payment.TransactionID)
		if err != nil {
			return err
		}
		lend.ReverseRepayment(payment.PrincipalAmount, now)
		if err := uc.lendRepo.Update(txCtx, tx, lend); err != nil {
			return err
		}
		// The original repayment moved cash by the gross amount; the sign
		// depends on whether the business or a counterparty was the borrower.
		if lend.IsSelfLoan() {
			err = uc.cashBook.Add(txCtx, tx, payment.Amount, CashReasonLendReversal)
		} else {
			err = uc.cashBook.Subtract(txCtx, tx, payment.Amount, CashReasonLendReversal)
		}
		if err != nil {
			return err
		}
		txn = &domain.Transaction{Type: domain.TypeLend, Lend: lend}

	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidType, payment.TransactionType)
	}

	if err := uc.paymentRepo.Delete(txCtx, tx, paymentID); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsReversed.WithLabelValues(string(payment.TransactionType)).Inc()
	}

	uc.syncer.NotifyUpserted(ctx, txn)

	return nil
}

// ListPayments returns the settlements recorded against a transaction.
func (uc *PaymentUseCase) ListPayments(ctx context.Context, txType domain.TransactionType, txID string) ([]*domain.Payment, error) {
	return uc.paymentRepo.ListByTransaction(ctx, txType, txID)
}
