package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mandibook/mandiledger/internal/usecase"
)

type txBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager implements usecase.TransactionManager on a pgx pool. Every
// ledger mutation (creation, settlement, cash delta, invoice draw) runs
// inside a transaction it hands out, so the usecases never see pgx.
type TxManager struct {
	pool txBeginner
}

// NewTxManager wraps pool; *pgxpool.Pool satisfies txBeginner.
func NewTxManager(pool txBeginner) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// Tx carries a pgx transaction across the usecase boundary.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Unwrap returns the underlying pgx.Tx for the repositories.
func (t *Tx) Unwrap() pgx.Tx {
	return t.tx
}
