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

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, date, category, amount, paid_to, receipt_number,
	description, created_at, updated_at`

const insertExpenseSQL = `INSERT INTO expense_transactions (` + expenseColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Create inserts an expense inside the given transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertExpenseSQL, expenseArgs(expense)...)

	return err
}

// GetByID retrieves an expense by id.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expense_transactions WHERE id = $1`, id)

	return scanExpense(row)
}

// GetByIDForUpdate retrieves an expense with a FOR UPDATE lock.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExpenseTransaction, error) {
	row := txQuerier(tx).QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expense_transactions WHERE id = $1 FOR UPDATE`, id)

	return scanExpense(row)
}

// Update rewrites every mutable column; id and creation time never change.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	tag, err := txQuerier(tx).Exec(ctx, `UPDATE expense_transactions
		SET date = $2, category = $3, amount = $4, paid_to = $5,
			receipt_number = $6, description = $7, updated_at = $8
		WHERE id = $1`,
		expense.ID,
		timeToPgTimestamptz(expense.Date),
		expense.Category,
		decimalToNumeric(expense.Amount),
		expense.PaidTo,
		expense.ReceiptNumber,
		expense.Description,
		timeToPgTimestamptz(expense.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM expense_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List returns expenses newest first.
func (r *ExpenseRepository) List(ctx context.Context, limit, offset int) ([]*domain.ExpenseTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expense_transactions
		ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListAll returns every expense.
func (r *ExpenseRepository) ListAll(ctx context.Context) ([]*domain.ExpenseTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expense_transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListBetween returns expenses dated within [from, to].
func (r *ExpenseRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ExpenseTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expense_transactions
		WHERE date >= $1 AND date <= $2 ORDER BY date, id`,
		timeToPgTimestamptz(from), timeToPgTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// UpsertFromCloud writes a cloud-origin copy, inserting or overwriting by id.
func (r *ExpenseRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertExpenseSQL+`
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			paid_to = EXCLUDED.paid_to,
			receipt_number = EXCLUDED.receipt_number,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		expenseArgs(expense)...)

	return err
}

func expenseArgs(expense *domain.ExpenseTransaction) []any {
	return []any{
		expense.ID,
		timeToPgTimestamptz(expense.Date),
		expense.Category,
		decimalToNumeric(expense.Amount),
		expense.PaidTo,
		expense.ReceiptNumber,
		expense.Description,
		timeToPgTimestamptz(expense.CreatedAt),
		timeToPgTimestamptz(expense.UpdatedAt),
	}
}

func scanExpense(row pgx.Row) (*domain.ExpenseTransaction, error) {
	var (
		expense                    domain.ExpenseTransaction
		amount                     pgtype.Numeric
		date, createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&expense.ID, &date, &expense.Category, &amount, &expense.PaidTo,
		&expense.ReceiptNumber, &expense.Description, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	expense.Date = pgTimestamptzToTime(date)
	expense.Amount = numericToDecimal(amount)
	expense.CreatedAt = pgTimestamptzToTime(createdAt)
	expense.UpdatedAt = pgTimestamptzToTime(updatedAt)

	return &expense, nil
}

func scanExpenses(rows pgx.Rows) ([]*domain.ExpenseTransaction, error) {
	var expenses []*domain.ExpenseTransaction
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}
