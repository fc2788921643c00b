package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
)

// BuyRepository defines data access for buy transactions.
type BuyRepository interface {
	Create(ctx context.Context, tx Transaction, buy *domain.BuyTransaction) error
	GetByID(ctx context.Context, id string) (*domain.BuyTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.BuyTransaction, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.BuyTransaction, error)
	Update(ctx context.Context, tx Transaction, buy *domain.BuyTransaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.BuyTransaction, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error)
	ListAll(ctx context.Context) ([]*domain.BuyTransaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.BuyTransaction, error)
	// UpsertFromCloud applies a cloud-origin copy without touching the sync
	// path; it must never cause a re-upload.
	UpsertFromCloud(ctx context.Context, tx Transaction, buy *domain.BuyTransaction) error
}

// SellRepository defines data access for sell transactions and their items.
type SellRepository interface {
	Create(ctx context.Context, tx Transaction, sell *domain.SellTransaction) error
	GetByID(ctx context.Context, id string) (*domain.SellTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.SellTransaction, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.SellTransaction, error)
	Update(ctx context.Context, tx Transaction, sell *domain.SellTransaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.SellTransaction, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.SellTransaction, error)
	ListAll(ctx context.Context) ([]*domain.SellTransaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.SellTransaction, error)
	UpsertFromCloud(ctx context.Context, tx Transaction, sell *domain.SellTransaction) error
}

// LendRepository defines data access for lend transactions.
type LendRepository interface {
	Create(ctx context.Context, tx Transaction, lend *domain.LendTransaction) error
	GetByID(ctx context.Context, id string) (*domain.LendTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LendTransaction, error)
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.LendTransaction, error)
	Update(ctx context.Context, tx Transaction, lend *domain.LendTransaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*domain.LendTransaction, error)
	ListAll(ctx context.Context) ([]*domain.LendTransaction, error)
	UpsertFromCloud(ctx context.Context, tx Transaction, lend *domain.LendTransaction) error
}

// ExpenseRepository defines data access for expense transactions.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.ExpenseTransaction) error
	GetByID(ctx context.Context, id string) (*domain.ExpenseTransaction, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ExpenseTransaction, error)
	Update(ctx context.Context, tx Transaction, expense *domain.ExpenseTransaction) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.ExpenseTransaction, error)
	ListAll(ctx context.Context) ([]*domain.ExpenseTransaction, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ExpenseTransaction, error)
	UpsertFromCloud(ctx context.Context, tx Transaction, expense *domain.ExpenseTransaction) error
}

// PaymentRepository defines data access for payment settlements.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Delete(ctx context.Context, tx Transaction, id string) error
	DeleteByTransaction(ctx context.Context, tx Transaction, txType domain.TransactionType, txID string) error
	ListByTransaction(ctx context.Context, txType domain.TransactionType, txID string) ([]*domain.Payment, error)
	// LastPaymentDate returns the most recent payment date on a transaction,
	// or nil if it has never been settled.
	LastPaymentDate(ctx context.Context, txType domain.TransactionType, txID string) (*time.Time, error)
	ListByTypeBetween(ctx context.Context, txType domain.TransactionType, from, to time.Time) ([]*domain.Payment, error)
}

// CashBookRepository defines data access for the single running cash figure.
type CashBookRepository interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
	// ApplyDelta atomically adds a signed delta and returns the new balance.
	ApplyDelta(ctx context.Context, tx Transaction, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	Set(ctx context.Context, value decimal.Decimal, at time.Time) error
}

// InvoiceSequenceRepository hands out per-day per-type invoice sequence
// numbers. Next must be atomic against concurrent callers.
type InvoiceSequenceRepository interface {
	Next(ctx context.Context, tx Transaction, txType domain.TransactionType, day time.Time) (int64, error)
}

// MappingRepository defines data access for remote-local id mappings.
type MappingRepository interface {
	Create(ctx context.Context, tx Transaction, mapping *domain.RemoteLocalMapping) error
	// GetByRemoteID returns nil without error when no mapping exists.
	GetByRemoteID(ctx context.Context, remoteID string) (*domain.RemoteLocalMapping, error)
	DeleteByLocalID(ctx context.Context, tx Transaction, localID string) error
}

// SyncLogRepository defines data access for sync sweep records.
type SyncLogRepository interface {
	Create(ctx context.Context, log *domain.SyncLog) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncLog, error)
}

// RemoteMirror is the cloud store the ledger mirrors into. Implementations
// own their transport, retries and timeouts; callers treat every method as
// best-effort.
type RemoteMirror interface {
	Upload(ctx context.Context, userID string, txn *domain.Transaction) error
	UploadBatch(ctx context.Context, userID string, txns []*domain.Transaction) error
	Delete(ctx context.Context, userID string, txType domain.TransactionType, id string) error
	FetchAll(ctx context.Context, userID string) ([]*domain.RemoteTransaction, error)
}

// SyncNotifier receives change notifications from ledger mutations. All
// methods are non-blocking and must never surface errors to the caller.
type SyncNotifier interface {
	NotifyUpserted(ctx context.Context, txn *domain.Transaction)
	NotifyDeleted(ctx context.Context, txType domain.TransactionType, id string)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
