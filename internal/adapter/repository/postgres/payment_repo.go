package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, transaction_id, transaction_type, amount, principal_amount,
	interest_amount, payment_date, payment_mode, notes, created_at`

// Create inserts a payment inside the given transaction.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	_, err := txQuerier(tx).Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		payment.ID,
		payment.TransactionID,
		string(payment.TransactionType),
		decimalToNumeric(payment.Amount),
		decimalToNumeric(payment.PrincipalAmount),
		decimalToNumeric(payment.InterestAmount),
		timeToPgTimestamptz(payment.PaymentDate),
		payment.PaymentMode,
		payment.Notes,
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

// GetByID retrieves a payment by id.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)

	return scanPayment(row)
}

// Delete removes a payment inside the given transaction.
func (r *PaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// DeleteByTransaction removes every payment on a transaction.
func (r *PaymentRepository) DeleteByTransaction(ctx context.Context, tx usecase.Transaction, txType domain.TransactionType, txID string) error {
	_, err := txQuerier(tx).Exec(ctx,
		`DELETE FROM payments WHERE transaction_type = $1 AND transaction_id = $2`,
		string(txType), txID)

	return err
}

// ListByTransaction returns a transaction's payments in date order.
func (r *PaymentRepository) ListByTransaction(ctx context.Context, txType domain.TransactionType, txID string) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE transaction_type = $1 AND transaction_id = $2
		ORDER BY payment_date, created_at`,
		string(txType), txID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayments(rows)
}

// LastPaymentDate returns the most recent payment date on a transaction, or
// nil if it has never been settled.
func (r *PaymentRepository) LastPaymentDate(ctx context.Context, txType domain.TransactionType, txID string) (*time.Time, error) {
	var ts pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `SELECT MAX(payment_date) FROM payments
		WHERE transaction_type = $1 AND transaction_id = $2`,
		string(txType), txID).Scan(&ts)
	if err != nil {
		return nil, err
	}
	if !ts.Valid {
		return nil, nil
	}

	t := ts.Time

	return &t, nil
}

// ListByTypeBetween returns payments of one transaction type dated within
// [from, to].
func (r *PaymentRepository) ListByTypeBetween(ctx context.Context, txType domain.TransactionType, from, to time.Time) ([]*domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
		WHERE transaction_type = $1 AND payment_date >= $2 AND payment_date <= $3
		ORDER BY payment_date, created_at`,
		string(txType), timeToPgTimestamptz(from), timeToPgTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayments(rows)
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		payment                     domain.Payment
		amount, principal, interest pgtype.Numeric
		txType                      string
		paymentDate, createdAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&payment.ID, &payment.TransactionID, &txType,
		&amount, &principal, &interest,
		&paymentDate, &payment.PaymentMode, &payment.Notes, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}

		return nil, err
	}

	payment.TransactionType = domain.TransactionType(txType)
	payment.Amount = numericToDecimal(amount)
	payment.PrincipalAmount = numericToDecimal(principal)
	payment.InterestAmount = numericToDecimal(interest)
	payment.PaymentDate = pgTimestamptzToTime(paymentDate)
	payment.CreatedAt = pgTimestamptzToTime(createdAt)

	return &payment, nil
}

func scanPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
