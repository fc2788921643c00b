package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// LendRepository implements usecase.LendRepository.
type LendRepository struct {
	pool *pgxpool.Pool
}

// NewLendRepository creates a new LendRepository.
func NewLendRepository(pool *pgxpool.Pool) *LendRepository {
	return &LendRepository{pool: pool}
}

const lendColumns = `id, date, borrower_name, borrower_phone, lend_type, amount,
	returned_amount, balance_amount, payment_status, interest_rate_per_month,
	invoice_number, description, created_at, updated_at`

const insertLendSQL = `INSERT INTO lend_transactions (` + lendColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

// Create inserts a lend transaction inside the given transaction.
func (r *LendRepository) Create(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertLendSQL, lendArgs(lend)...)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInvoice
	}

	return err
}

// GetByID retrieves a lend transaction by id.
func (r *LendRepository) GetByID(ctx context.Context, id string) (*domain.LendTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+lendColumns+` FROM lend_transactions WHERE id = $1`, id)

	return scanLend(row)
}

// GetByIDForUpdate retrieves a lend transaction with a FOR UPDATE lock.
func (r *LendRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LendTransaction, error) {
	row := txQuerier(tx).QueryRow(ctx,
		`SELECT `+lendColumns+` FROM lend_transactions WHERE id = $1 FOR UPDATE`, id)

	return scanLend(row)
}

// GetByInvoiceNumber retrieves a lend transaction by its invoice number.
func (r *LendRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.LendTransaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+lendColumns+` FROM lend_transactions WHERE invoice_number = $1`, invoiceNumber)

	return scanLend(row)
}

// Update rewrites every mutable column; id, invoice number and creation
// time never change.
func (r *LendRepository) Update(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	tag, err := txQuerier(tx).Exec(ctx, `UPDATE lend_transactions
		SET date = $2, borrower_name = $3, borrower_phone = $4, lend_type = $5,
			amount = $6, returned_amount = $7, balance_amount = $8,
			payment_status = $9, interest_rate_per_month = $10,
			description = $11, updated_at = $12
		WHERE id = $1`,
		lend.ID,
		timeToPgTimestamptz(lend.Date),
		lend.BorrowerName,
		lend.BorrowerPhone,
		string(lend.LendType),
		decimalToNumeric(lend.Amount),
		decimalToNumeric(lend.ReturnedAmount),
		decimalToNumeric(lend.BalanceAmount),
		string(lend.PaymentStatus),
		decimalToNumeric(lend.InterestRatePerMonth),
		lend.Description,
		timeToPgTimestamptz(lend.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a lend transaction.
func (r *LendRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM lend_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List returns lend transactions newest first.
func (r *LendRepository) List(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lendColumns+` FROM lend_transactions
		ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLends(rows)
}

// ListAll returns every lend transaction.
// Search filters by borrower name or phone, newest first.
func (r *LendRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.LendTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lendColumns+` FROM lend_transactions
		WHERE borrower_name ILIKE '%' || $1 || '%' OR borrower_phone ILIKE '%' || $1 || '%'
		ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLends(rows)
}

func (r *LendRepository) ListAll(ctx context.Context) ([]*domain.LendTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lendColumns+` FROM lend_transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLends(rows)
}

// UpsertFromCloud writes a cloud-origin copy, inserting or overwriting by id.
func (r *LendRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertLendSQL+`
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			borrower_name = EXCLUDED.borrower_name,
			borrower_phone = EXCLUDED.borrower_phone,
			lend_type = EXCLUDED.lend_type,
			amount = EXCLUDED.amount,
			returned_amount = EXCLUDED.returned_amount,
			balance_amount = EXCLUDED.balance_amount,
			payment_status = EXCLUDED.payment_status,
			interest_rate_per_month = EXCLUDED.interest_rate_per_month,
			invoice_number = EXCLUDED.invoice_number,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		lendArgs(lend)...)

	return err
}

func lendArgs(lend *domain.LendTransaction) []any {
	return []any{
		lend.ID,
		timeToPgTimestamptz(lend.Date),
		lend.BorrowerName,
		lend.BorrowerPhone,
		string(lend.LendType),
		decimalToNumeric(lend.Amount),
		decimalToNumeric(lend.ReturnedAmount),
		decimalToNumeric(lend.BalanceAmount),
		string(lend.PaymentStatus),
		decimalToNumeric(lend.InterestRatePerMonth),
		lend.InvoiceNumber,
		lend.Description,
		timeToPgTimestamptz(lend.CreatedAt),
		timeToPgTimestamptz(lend.UpdatedAt),
	}
}

func scanLend(row pgx.Row) (*domain.LendTransaction, error) {
	var (
		lend                             domain.LendTransaction
		amount, returned, balance, rate  pgtype.Numeric
		lendType, status                 string
		date, createdAt, updatedAt       pgtype.Timestamptz
	)

	err := row.Scan(
		&lend.ID, &date, &lend.BorrowerName, &lend.BorrowerPhone, &lendType,
		&amount, &returned, &balance, &status, &rate,
		&lend.InvoiceNumber, &lend.Description, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	lend.Date = pgTimestamptzToTime(date)
	lend.LendType = domain.LendType(lendType)
	lend.Amount = numericToDecimal(amount)
	lend.ReturnedAmount = numericToDecimal(returned)
	lend.BalanceAmount = numericToDecimal(balance)
	lend.PaymentStatus = domain.PaymentStatus(status)
	lend.InterestRatePerMonth = numericToDecimal(rate)
	lend.CreatedAt = pgTimestamptzToTime(createdAt)
	lend.UpdatedAt = pgTimestamptzToTime(updatedAt)

	return &lend, nil
}

func scanLends(rows pgx.Rows) ([]*domain.LendTransaction, error) {
	var lends []*domain.LendTransaction
	for rows.Next() {
		lend, err := scanLend(rows)
		if err != nil {
			return nil, err
		}
		lends = append(lends, lend)
	}

	return lends, rows.Err()
}
