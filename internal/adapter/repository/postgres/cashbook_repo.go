package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/usecase"
)

// CashBookRepository implements usecase.CashBookRepository on a single-row
// table. The row is created by the migration, so reads never miss.
type CashBookRepository struct {
	pool *pgxpool.Pool
}

// NewCashBookRepository creates a new CashBookRepository.
func NewCashBookRepository(pool *pgxpool.Pool) *CashBookRepository {
	return &CashBookRepository{pool: pool}
}

// Balance returns the running cash balance.
func (r *CashBookRepository) Balance(ctx context.Context) (decimal.Decimal, error) {
	var balance pgtype.Numeric

	err := r.pool.QueryRow(ctx, `SELECT balance FROM cash_book WHERE id = 1`).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// ApplyDelta atomically adds a signed delta inside the caller's transaction
// and returns the new balance.
func (r *CashBookRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	var balance pgtype.Numeric

	err := txQuerier(tx).QueryRow(ctx, `UPDATE cash_book
		SET balance = balance + $1, updated_at = $2
		WHERE id = 1
		RETURNING balance`,
		decimalToNumeric(delta), timeToPgTimestamptz(at)).Scan(&balance)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(balance), nil
}

// Set overwrites the balance with an absolute value.
func (r *CashBookRepository) Set(ctx context.Context, value decimal.Decimal, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE cash_book SET balance = $1, updated_at = $2 WHERE id = 1`,
		decimalToNumeric(value), timeToPgTimestamptz(at))

	return err
}
