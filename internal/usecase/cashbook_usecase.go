package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
)

// CashBookUseCase owns the single running cash figure. Every ledger event
// that moves money goes through Add or Subtract exactly once, inside the
// same storage transaction as the event itself; Override and Reset are the
// only absolute writes and are reserved for explicit user action.
type CashBookUseCase struct {
	repo   CashBookRepository
	logger zerolog.Logger
}

// NewCashBookUseCase creates a new CashBookUseCase.
func NewCashBookUseCase(repo CashBookRepository, logger zerolog.Logger) *CashBookUseCase {
	return &CashBookUseCase{repo: repo, logger: logger}
}

// Balance returns the current cash balance.
func (uc *CashBookUseCase) Balance(ctx context.Context) (decimal.Decimal, error) {
	return uc.repo.Balance(ctx)
}

// Add credits the cash book inside the caller's transaction.
func (uc *CashBookUseCase) Add(ctx context.Context, tx Transaction, amount decimal.Decimal, reason string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	return uc.applyDelta(ctx, tx, amount, reason)
}

// Subtract debits the cash book inside the caller's transaction.
func (uc *CashBookUseCase) Subtract(ctx context.Context, tx Transaction, amount decimal.Decimal, reason string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	return uc.applyDelta(ctx, tx, amount.Neg(), reason)
}

func (uc *CashBookUseCase) applyDelta(ctx context.Context, tx Transaction, delta decimal.Decimal, reason string) error {
	balance, err := uc.repo.ApplyDelta(ctx, tx, delta, time.Now().UTC())
	if err != nil {
		return err
	}

	uc.logger.Info().
		Str("reason", reason).
		Str("delta", delta.String()).
		Str("balance", balance.String()).
		Msg("cash book updated")

	return nil
}

// Override replaces the balance with a user-supplied value.
func (uc *CashBookUseCase) Override(ctx context.Context, value decimal.Decimal) error {
	if err := uc.repo.Set(ctx, value, time.Now().UTC()); err != nil {
		return err
	}

	uc.logger.Warn().
		Str("reason", CashReasonUserOverride).
		Str("balance", value.String()).
		Msg("cash book overridden")

	return nil
}

// Reset zeroes the balance.
func (uc *CashBookUseCase) Reset(ctx context.Context) error {
	if err := uc.repo.Set(ctx, decimal.Zero, time.Now().UTC()); err != nil {
		return err
	}

	uc.logger.Warn().Str("reason", CashReasonReset).Msg("cash book reset")

	return nil
}
