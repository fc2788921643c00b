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

// SellRepository implements usecase.SellRepository. Line items live in their
// own table and are written and loaded with their parent.
type SellRepository struct {
	pool *pgxpool.Pool
}

// NewSellRepository creates a new SellRepository.
func NewSellRepository(pool *pgxpool.Pool) *SellRepository {
	return &SellRepository{pool: pool}
}

const sellColumns = `id, date, customer_name, customer_phone, grain_type, quantity, rate,
	total_amount, received_amount, balance_amount, payment_status,
	commission_amount, labour_charges, invoice_number, description,
	created_at, updated_at`

const insertSellSQL = `INSERT INTO sell_transactions (` + sellColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

const insertSellItemSQL = `INSERT INTO sell_items (id, sell_id, grain_type, quantity, rate, amount)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Create inserts a sell transaction and its line items.
func (r *SellRepository) Create(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	q := txQuerier(tx)

	if _, err := q.Exec(ctx, insertSellSQL, sellArgs(sell)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvoice
		}

		return err
	}

	for _, item := range sell.Items {
		if _, err := q.Exec(ctx, insertSellItemSQL,
			item.ID, sell.ID, item.GrainType,
			decimalToNumeric(item.Quantity), decimalToNumeric(item.Rate), decimalToNumeric(item.Amount),
		); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a sell transaction with its items.
func (r *SellRepository) GetByID(ctx context.Context, id string) (*domain.SellTransaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sellColumns+` FROM sell_transactions WHERE id = $1`, id)

	sell, err := scanSell(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, r.pool, sell); err != nil {
		return nil, err
	}

	return sell, nil
}

// GetByIDForUpdate retrieves a sell transaction with a FOR UPDATE lock.
func (r *SellRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SellTransaction, error) {
	q := txQuerier(tx)
	row := q.QueryRow(ctx, `SELECT `+sellColumns+` FROM sell_transactions WHERE id = $1 FOR UPDATE`, id)

	sell, err := scanSell(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, q, sell); err != nil {
		return nil, err
	}

	return sell, nil
}

// GetByInvoiceNumber retrieves a sell transaction by its invoice number.
func (r *SellRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.SellTransaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sellColumns+` FROM sell_transactions WHERE invoice_number = $1`, invoiceNumber)

	sell, err := scanSell(row)
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, r.pool, sell); err != nil {
		return nil, err
	}

	return sell, nil
}

// Update rewrites every mutable column and replaces the line items; id,
// invoice number and creation time never change.
func (r *SellRepository) Update(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	q := txQuerier(tx)

	tag, err := q.Exec(ctx, `UPDATE sell_transactions
		SET date = $2, customer_name = $3, customer_phone = $4, grain_type = $5,
			quantity = $6, rate = $7, total_amount = $8, received_amount = $9,
			balance_amount = $10, payment_status = $11, commission_amount = $12,
			labour_charges = $13, description = $14, updated_at = $15
		WHERE id = $1`,
		sell.ID,
		timeToPgTimestamptz(sell.Date),
		sell.CustomerName,
		sell.CustomerPhone,
		sell.GrainType,
		decimalToNumeric(sell.Quantity),
		decimalToNumeric(sell.Rate),
		decimalToNumeric(sell.TotalAmount),
		decimalToNumeric(sell.ReceivedAmount),
		decimalToNumeric(sell.BalanceAmount),
		string(sell.PaymentStatus),
		decimalToNumeric(sell.CommissionAmount),
		decimalToNumeric(sell.LabourCharges),
		sell.Description,
		timeToPgTimestamptz(sell.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	if _, err := q.Exec(ctx, `DELETE FROM sell_items WHERE sell_id = $1`, sell.ID); err != nil {
		return err
	}
	for _, item := range sell.Items {
		if _, err := q.Exec(ctx, insertSellItemSQL,
			item.ID, sell.ID, item.GrainType,
			decimalToNumeric(item.Quantity), decimalToNumeric(item.Rate), decimalToNumeric(item.Amount),
		); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a sell transaction; items cascade via the schema.
func (r *SellRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txQuerier(tx).Exec(ctx, `DELETE FROM sell_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// List returns sell transactions newest first, items included.
func (r *SellRepository) List(ctx context.Context, limit, offset int) ([]*domain.SellTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sellColumns+` FROM sell_transactions
		ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sells, err := scanSells(rows)
	if err != nil {
		return nil, err
	}

	return sells, r.loadItemsBulk(ctx, sells)
}

// ListAll returns every sell transaction with items.
func (r *SellRepository) ListAll(ctx context.Context) ([]*domain.SellTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sellColumns+` FROM sell_transactions ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sells, err := scanSells(rows)
	if err != nil {
		return nil, err
	}

	return sells, r.loadItemsBulk(ctx, sells)
}

// Search filters by customer name or phone, newest first, items included.
func (r *SellRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.SellTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sellColumns+` FROM sell_transactions
		WHERE customer_name ILIKE '%' || $1 || '%' OR customer_phone ILIKE '%' || $1 || '%'
		ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sells, err := scanSells(rows)
	if err != nil {
		return nil, err
	}

	return sells, r.loadItemsBulk(ctx, sells)
}

// ListBetween returns sell transactions dated within [from, to].
func (r *SellRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.SellTransaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sellColumns+` FROM sell_transactions
		WHERE date >= $1 AND date <= $2 ORDER BY date, id`,
		timeToPgTimestamptz(from), timeToPgTimestamptz(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sells, err := scanSells(rows)
	if err != nil {
		return nil, err
	}

	return sells, r.loadItemsBulk(ctx, sells)
}

// UpsertFromCloud writes a cloud-origin copy. Line items are replaced
// wholesale; the cloud copy is authoritative for the entire receipt.
func (r *SellRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	q := txQuerier(tx)

	if _, err := q.Exec(ctx, insertSellSQL+`
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			customer_name = EXCLUDED.customer_name,
			customer_phone = EXCLUDED.customer_phone,
			grain_type = EXCLUDED.grain_type,
			quantity = EXCLUDED.quantity,
			rate = EXCLUDED.rate,
			total_amount = EXCLUDED.total_amount,
			received_amount = EXCLUDED.received_amount,
			balance_amount = EXCLUDED.balance_amount,
			payment_status = EXCLUDED.payment_status,
			commission_amount = EXCLUDED.commission_amount,
			labour_charges = EXCLUDED.labour_charges,
			invoice_number = EXCLUDED.invoice_number,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at`,
		sellArgs(sell)...); err != nil {
		return err
	}

	if _, err := q.Exec(ctx, `DELETE FROM sell_items WHERE sell_id = $1`, sell.ID); err != nil {
		return err
	}
	for _, item := range sell.Items {
		if _, err := q.Exec(ctx, insertSellItemSQL,
			item.ID, sell.ID, item.GrainType,
			decimalToNumeric(item.Quantity), decimalToNumeric(item.Rate), decimalToNumeric(item.Amount),
		); err != nil {
			return err
		}
	}

	return nil
}

func (r *SellRepository) loadItems(ctx context.Context, q querier, sell *domain.SellTransaction) error {
	rows, err := q.Query(ctx, `SELECT id, sell_id, grain_type, quantity, rate, amount
		FROM sell_items WHERE sell_id = $1 ORDER BY id`, sell.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanSellItem(rows)
		if err != nil {
			return err
		}
		sell.Items = append(sell.Items, *item)
	}

	return rows.Err()
}

func (r *SellRepository) loadItemsBulk(ctx context.Context, sells []*domain.SellTransaction) error {
	if len(sells) == 0 {
		return nil
	}

	byID := make(map[string]*domain.SellTransaction, len(sells))
	ids := make([]string, 0, len(sells))
	for _, s := range sells {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	rows, err := r.pool.Query(ctx, `SELECT id, sell_id, grain_type, quantity, rate, amount
		FROM sell_items WHERE sell_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanSellItem(rows)
		if err != nil {
			return err
		}
		if parent, ok := byID[item.SellID]; ok {
			parent.Items = append(parent.Items, *item)
		}
	}

	return rows.Err()
}

func sellArgs(sell *domain.SellTransaction) []any {
	return []any{
		sell.ID,
		timeToPgTimestamptz(sell.Date),
		sell.CustomerName,
		sell.CustomerPhone,
		sell.GrainType,
		decimalToNumeric(sell.Quantity),
		decimalToNumeric(sell.Rate),
		decimalToNumeric(sell.TotalAmount),
		decimalToNumeric(sell.ReceivedAmount),
		decimalToNumeric(sell.BalanceAmount),
		string(sell.PaymentStatus),
		decimalToNumeric(sell.CommissionAmount),
		decimalToNumeric(sell.LabourCharges),
		sell.InvoiceNumber,
		sell.Description,
		timeToPgTimestamptz(sell.CreatedAt),
		timeToPgTimestamptz(sell.UpdatedAt),
	}
}

func scanSell(row pgx.Row) (*domain.SellTransaction, error) {
	var (
		sell                                                       domain.SellTransaction
		quantity, rate, total, received, balance, commission, labor pgtype.Numeric
		status                                                     string
		date, createdAt, updatedAt                                 pgtype.Timestamptz
	)

	err := row.Scan(
		&sell.ID, &date, &sell.CustomerName, &sell.CustomerPhone, &sell.GrainType,
		&quantity, &rate, &total, &received, &balance, &status,
		&commission, &labor, &sell.InvoiceNumber, &sell.Description,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	sell.Date = pgTimestamptzToTime(date)
	sell.Quantity = numericToDecimal(quantity)
	sell.Rate = numericToDecimal(rate)
	sell.TotalAmount = numericToDecimal(total)
	sell.ReceivedAmount = numericToDecimal(received)
	sell.BalanceAmount = numericToDecimal(balance)
	sell.PaymentStatus = domain.PaymentStatus(status)
	sell.CommissionAmount = numericToDecimal(commission)
	sell.LabourCharges = numericToDecimal(labor)
	sell.CreatedAt = pgTimestamptzToTime(createdAt)
	sell.UpdatedAt = pgTimestamptzToTime(updatedAt)

	return &sell, nil
}

func scanSells(rows pgx.Rows) ([]*domain.SellTransaction, error) {
	var sells []*domain.SellTransaction
	for rows.Next() {
		sell, err := scanSell(rows)
		if err != nil {
			return nil, err
		}
		sells = append(sells, sell)
	}

	return sells, rows.Err()
}

func scanSellItem(row pgx.Row) (*domain.SellItem, error) {
	var (
		item                   domain.SellItem
		quantity, rate, amount pgtype.Numeric
	)

	if err := row.Scan(&item.ID, &item.SellID, &item.GrainType, &quantity, &rate, &amount); err != nil {
		return nil, err
	}

	item.Quantity = numericToDecimal(quantity)
	item.Rate = numericToDecimal(rate)
	item.Amount = numericToDecimal(amount)

	return &item, nil
}
