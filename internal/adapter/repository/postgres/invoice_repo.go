package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// InvoiceSequenceRepository implements usecase.InvoiceSequenceRepository.
// The upsert increments the per-day per-type counter atomically, so two
// concurrent creations can never draw the same invoice number.
type InvoiceSequenceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceSequenceRepository creates a new InvoiceSequenceRepository.
func NewInvoiceSequenceRepository(pool *pgxpool.Pool) *InvoiceSequenceRepository {
	return &InvoiceSequenceRepository{pool: pool}
}

// Next draws the next sequence number for a day and transaction type inside
// the caller's transaction.
func (r *InvoiceSequenceRepository) Next(ctx context.Context, tx usecase.Transaction, txType domain.TransactionType, day time.Time) (int64, error) {
	var seq int64

	err := txQuerier(tx).QueryRow(ctx, `INSERT INTO invoice_sequences (day, tx_type, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (day, tx_type) DO UPDATE SET seq = invoice_sequences.seq + 1
		RETURNING seq`,
		domain.InvoiceDayKey(day), string(txType)).Scan(&seq)
	if err != nil {
		return 0, err
	}

	return seq, nil
}
