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

// BuyRepository implements usecase.BuyRepository.
type BuyRepository struct {
	pool *pgxpool.Pool
}

// NewBuyRepository creates a new BuyRepository.
func NewBuyRepository(pool *pgxpool.Pool) *BuyRepository {
	return &BuyRepository{pool: pool}
}

const buyColumns = `id, date, farmer_name, farmer_phone, grain_type, quantity, rate,
	total_amount, paid_amount, balance_amount, payment_status,
	commission_amount, labour_charges, invoice_number, description,
	created_at, updated_at`

const insertBuySQL = `INSERT INTO buy_transactions (` + buyColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

// Create inserts a buy transaction inside the given transaction.
func (r *BuyRepository) Create(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertBuySQL, buyArgs(buy)...)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateInvoice
	}

	return err
}

// GetByID retrieves a buy transaction by id.
func (r *BuyRepository) GetByID(ctx context.Context, id string) (*domain.BuyTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+buyColumns+` FROM buy_transactions WHERE id = $1`, id)

	return scanBuy(row)
}

// GetByIDForUpdate retrieves a buy transaction with a FOR UPDATE lock.
func (r *BuyRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BuyTransaction, error) {
	row := txQuerier(tx).QueryRow(ctx,
		`SELECT `+buyColumns+` FROM buy_transactions WHERE id = $1 FOR UPDATE`, id)

	return scanBuy(row)
}

// GetByInvoiceNumber retrieves a buy transaction by its invoice number.
func (r *BuyRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.BuyTransaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+buyColumns+` FROM buy_transactions WHERE invoice_number = $1`, invoiceNumber)

	return scanBuy(row)
}

// Update rewrites every mutable column; id, invoice number and creation
// time never change.
func (r *BuyRepository) Update(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	tag, err := txQuerier(tx).Exec(ctx, `UPDATE buy_transactions
		SET date = $2, farmer_name = $3, farmer_phone = $4, grain_type = $5,
			quantity = $6, rate = $7, total_amount = $8, paid_amount = $9,
			balance_amount = $10, payment_status = $11, commission_amount = $12,
			labour_charges = $13, description = $14, updated_at = $15
		WHERE id = $1`,
		buy.ID,
		timeToPgTimestamptz(buy.Date),
		buy.FarmerName,
		buy.FarmerPhone,
		buy.GrainType,
		decimalToNumeric(buy.Quantity),
		decimalToNumeric(buy.Rate),
		decimalToNumeric(buy.TotalAmount),
		decimalToNumeric(buy.PaidAmount),
		decimalToNumeric(buy.BalanceAmount),
		string(buy.PaymentStatus),
		decimalToNumeric(buy.CommissionAmount),
		decimalToNumeric(buy.LabourCharges),
		buy.Description,
		timeToPgTimestamptz(buy.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// Delete removes a buy transaction.
func (r *BuyRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM buy_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List returns buy transactions newest first.
func (r *BuyRepository) List(ctx context.Context, limit, offset int) ([]*domain.BuyTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+buyColumns+` FROM buy_transactions
		ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuys(rows)
}

// ListAll returns every buy transaction.
func (r *BuyRepository) ListAll(ctx context.Context) ([]*domain.BuyTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+buyColumns+` FROM buy_transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuys(rows)
}

// Search filters by farmer name or phone, newest first.
func (r *BuyRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+buyColumns+` FROM buy_transactions
		WHERE farmer_name ILIKE '%' || $1 || '%' OR farmer_phone ILIKE '%' || $1 || '%'
		ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuys(rows)
}

// ListBetween returns buy transactions dated within [from, to].
func (r *BuyRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.BuyTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+buyColumns+` FROM buy_transactions
		WHERE date >= $1 AND date <= $2 ORDER BY date, id`,
		timeToPgTimestamptz(from), timeToPgTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBuys(rows)
}

// UpsertFromCloud writes a cloud-origin copy, inserting or overwriting by id.
func (r *BuyRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	_, err := txQuerier(tx).Exec(ctx, insertBuySQL+`
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			farmer_name = EXCLUDED.farmer_name,
			farmer_phone = EXCLUDED.farmer_phone,
			grain_type = EXCLUDED.grain_type,
			quantity = EXCLUDED.quantity,
			rate = EXCLUDED.rate,
			total_amount = EXCLUDED.total_amount,
			paid_amount = EXCLUDED.paid_amount,
			balance_amount = EXCLUDED.balance_amount,
			payment_status = EXCLUDED.payment_status,
			commission_amount = EXCLUDED.commission_amount,
			labour_charges = EXCLUDED.labour_charges,
			invoice_number = EXCLUDED.invoice_number,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		buyArgs(buy)...)

	return err
}

func buyArgs(buy *domain.BuyTransaction) []any {
	return []any{
		buy.ID,
		timeToPgTimestamptz(buy.Date),
		buy.FarmerName,
		buy.FarmerPhone,
		buy.GrainType,
		decimalToNumeric(buy.Quantity),
		decimalToNumeric(buy.Rate),
		decimalToNumeric(buy.TotalAmount),
		decimalToNumeric(buy.PaidAmount),
		decimalToNumeric(buy.BalanceAmount),
		string(buy.PaymentStatus),
		decimalToNumeric(buy.CommissionAmount),
		decimalToNumeric(buy.LabourCharges),
		buy.InvoiceNumber,
		buy.Description,
		timeToPgTimestamptz(buy.CreatedAt),
		timeToPgTimestamptz(buy.UpdatedAt),
	}
}

func scanBuy(row pgx.Row) (*domain.BuyTransaction, error) {
	var (
		buy                                                     domain.BuyTransaction
		quantity, rate, total, paid, balance, commission, labor pgtype.Numeric
		status                                                  string
		date, createdAt, updatedAt                              pgtype.Timestamptz
	)

	err := row.Scan(
		&buy.ID, &date, &buy.FarmerName, &buy.FarmerPhone, &buy.GrainType,
		&quantity, &rate, &total, &paid, &balance, &status,
		&commission, &labor, &buy.InvoiceNumber, &buy.Description,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	buy.Date = pgTimestamptzToTime(date)
	buy.Quantity = numericToDecimal(quantity)
	buy.Rate = numericToDecimal(rate)
	buy.TotalAmount = numericToDecimal(total)
	buy.PaidAmount = numericToDecimal(paid)
	buy.BalanceAmount = numericToDecimal(balance)
	buy.PaymentStatus = domain.PaymentStatus(status)
	buy.CommissionAmount = numericToDecimal(commission)
	buy.LabourCharges = numericToDecimal(labor)
	buy.CreatedAt = pgTimestamptzToTime(createdAt)
	buy.UpdatedAt = pgTimestamptzToTime(updatedAt)

	return &buy, nil
}

func scanBuys(rows pgx.Rows) ([]*domain.BuyTransaction, error) {
	var buys []*domain.BuyTransaction
	for rows.Next() {
		buy, err := scanBuy(rows)
		if err != nil {
			return nil, err
		}
		buys = append(buys, buy)
	}

	return buys, rows.Err()
}
