package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/usecase"
)

// MockBuyRepository is an in-memory BuyRepository. Defaults act on the map;
// set a Func field to override a single method.
type MockBuyRepository struct {
	mu   sync.RWMutex
	buys map[string]*domain.BuyTransaction

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.BuyTransaction, error)
	UpdateFunc          func(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error
	UpsertFromCloudFunc func(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error
}

func NewMockBuyRepository() *MockBuyRepository {
	return &MockBuyRepository{buys: make(map[string]*domain.BuyTransaction)}
}

func (m *MockBuyRepository) Create(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, buy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *buy
	m.buys[buy.ID] = &cp
	return nil
}

func (m *MockBuyRepository) GetByID(ctx context.Context, id string) (*domain.BuyTransaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.buys[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockBuyRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BuyTransaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockBuyRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.BuyTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.buys {
		if b.InvoiceNumber == invoiceNumber {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockBuyRepository) Update(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, buy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buys[buy.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := *buy
	m.buys[buy.ID] = &cp
	return nil
}

func (m *MockBuyRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buys[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.buys, id)
	return nil
}

func (m *MockBuyRepository) List(ctx context.Context, limit, offset int) ([]*domain.BuyTransaction, error) {
	all, _ := m.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockBuyRepository) ListAll(ctx context.Context) ([]*domain.BuyTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.BuyTransaction, 0, len(m.buys))
	for _, b := range m.buys {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockBuyRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.BuyTransaction, error) {
	all, _ := m.ListAll(ctx)
	q := strings.ToLower(query)
	var hits []*domain.BuyTransaction
	for _, b := range all {
		if strings.Contains(strings.ToLower(b.FarmerName), q) || strings.Contains(b.FarmerPhone, query) {
			hits = append(hits, b)
		}
	}
	return paginate(hits, limit, offset), nil
}

func (m *MockBuyRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.BuyTransaction, error) {
	all, _ := m.ListAll(ctx)
	out := all[:0]
	for _, b := range all {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockBuyRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, buy *domain.BuyTransaction) error {
	if m.UpsertFromCloudFunc != nil {
		return m.UpsertFromCloudFunc(ctx, tx, buy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *buy
	m.buys[buy.ID] = &cp
	return nil
}

// MockSellRepository is an in-memory SellRepository.
type MockSellRepository struct {
	mu    sync.RWMutex
	sells map[string]*domain.SellTransaction

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error
	UpdateFunc          func(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error
	UpsertFromCloudFunc func(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error
}

func NewMockSellRepository() *MockSellRepository {
	return &MockSellRepository{sells: make(map[string]*domain.SellTransaction)}
}

func (m *MockSellRepository) Create(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, sell)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sell
	m.sells[sell.ID] = &cp
	return nil
}

func (m *MockSellRepository) GetByID(ctx context.Context, id string) (*domain.SellTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sells[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockSellRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SellTransaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockSellRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.SellTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sells {
		if s.InvoiceNumber == invoiceNumber {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockSellRepository) Update(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, sell)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sells[sell.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := *sell
	m.sells[sell.ID] = &cp
	return nil
}

func (m *MockSellRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sells[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.sells, id)
	return nil
}

func (m *MockSellRepository) List(ctx context.Context, limit, offset int) ([]*domain.SellTransaction, error) {
	all, _ := m.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockSellRepository) ListAll(ctx context.Context) ([]*domain.SellTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SellTransaction, 0, len(m.sells))
	for _, s := range m.sells {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockSellRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.SellTransaction, error) {
	all, _ := m.ListAll(ctx)
	q := strings.ToLower(query)
	var hits []*domain.SellTransaction
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.CustomerName), q) || strings.Contains(s.CustomerPhone, query) {
			hits = append(hits, s)
		}
	}
	return paginate(hits, limit, offset), nil
}

func (m *MockSellRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.SellTransaction, error) {
	all, _ := m.ListAll(ctx)
	out := all[:0]
	for _, s := range all {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockSellRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, sell *domain.SellTransaction) error {
	if m.UpsertFromCloudFunc != nil {
		return m.UpsertFromCloudFunc(ctx, tx, sell)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sell
	m.sells[sell.ID] = &cp
	return nil
}

// MockLendRepository is an in-memory LendRepository.
type MockLendRepository struct {
	mu    sync.RWMutex
	lends map[string]*domain.LendTransaction

	UpdateFunc          func(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error
	UpsertFromCloudFunc func(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error
}

func NewMockLendRepository() *MockLendRepository {
	return &MockLendRepository{lends: make(map[string]*domain.LendTransaction)}
}

func (m *MockLendRepository) Create(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lend
	m.lends[lend.ID] = &cp
	return nil
}

func (m *MockLendRepository) GetByID(ctx context.Context, id string) (*domain.LendTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.lends[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLendRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LendTransaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockLendRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.LendTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lends {
		if l.InvoiceNumber == invoiceNumber {
			cp := *l
			return &cp, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockLendRepository) Update(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, lend)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lends[lend.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := *lend
	m.lends[lend.ID] = &cp
	return nil
}

func (m *MockLendRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lends[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.lends, id)
	return nil
}

func (m *MockLendRepository) List(ctx context.Context, limit, offset int) ([]*domain.LendTransaction, error) {
	all, _ := m.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockLendRepository) ListAll(ctx context.Context) ([]*domain.LendTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LendTransaction, 0, len(m.lends))
	for _, l := range m.lends {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockLendRepository) Search(ctx context.Context, query string, limit, offset int) ([]*domain.LendTransaction, error) {
	all, _ := m.ListAll(ctx)
	q := strings.ToLower(query)
	var hits []*domain.LendTransaction
	for _, l := range all {
		if strings.Contains(strings.ToLower(l.BorrowerName), q) || strings.Contains(l.BorrowerPhone, query) {
			hits = append(hits, l)
		}
	}
	return paginate(hits, limit, offset), nil
}

func (m *MockLendRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, lend *domain.LendTransaction) error {
	if m.UpsertFromCloudFunc != nil {
		return m.UpsertFromCloudFunc(ctx, tx, lend)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lend
	m.lends[lend.ID] = &cp
	return nil
}

// MockExpenseRepository is an in-memory ExpenseRepository.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	expenses map[string]*domain.ExpenseTransaction
}

func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{expenses: make(map[string]*domain.ExpenseTransaction)}
}

func (m *MockExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.expenses[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ExpenseTransaction, error) {
	return m.GetByID(ctx, id)
}

func (m *MockExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[expense.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *MockExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.expenses[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *MockExpenseRepository) List(ctx context.Context, limit, offset int) ([]*domain.ExpenseTransaction, error) {
	all, _ := m.ListAll(ctx)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *MockExpenseRepository) ListAll(ctx context.Context) ([]*domain.ExpenseTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.ExpenseTransaction, 0, len(m.expenses))
	for _, e := range m.expenses {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockExpenseRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.ExpenseTransaction, error) {
	all, _ := m.ListAll(ctx)
	out := all[:0]
	for _, e := range all {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockExpenseRepository) UpsertFromCloud(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseTransaction) error {
	return m.Create(ctx, tx, expense)
}

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	CreateFunc func(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (m *MockPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *MockPaymentRepository) DeleteByTransaction(ctx context.Context, tx usecase.Transaction, txType domain.TransactionType, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.payments {
		if p.TransactionType == txType && p.TransactionID == txID {
			delete(m.payments, id)
		}
	}
	return nil
}

func (m *MockPaymentRepository) ListByTransaction(ctx context.Context, txType domain.TransactionType, txID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.TransactionType == txType && p.TransactionID == txID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

func (m *MockPaymentRepository) LastPaymentDate(ctx context.Context, txType domain.TransactionType, txID string) (*time.Time, error) {
	payments, _ := m.ListByTransaction(ctx, txType, txID)
	if len(payments) == 0 {
		return nil, nil
	}
	last := payments[len(payments)-1].PaymentDate
	return &last, nil
}

func (m *MockPaymentRepository) ListByTypeBetween(ctx context.Context, txType domain.TransactionType, from, to time.Time) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Payment
	for _, p := range m.payments {
		if p.TransactionType == txType && !p.PaymentDate.Before(from) && !p.PaymentDate.After(to) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.Before(out[j].PaymentDate) })
	return out, nil
}

// MockCashBookRepository is an in-memory CashBookRepository.
type MockCashBookRepository struct {
	mu      sync.RWMutex
	balance decimal.Decimal

	ApplyDeltaFunc func(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
}

func NewMockCashBookRepository() *MockCashBookRepository {
	return &MockCashBookRepository{balance: decimal.Zero}
}

func (m *MockCashBookRepository) Balance(ctx context.Context) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, nil
}

func (m *MockCashBookRepository) ApplyDelta(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if m.ApplyDeltaFunc != nil {
		return m.ApplyDeltaFunc(ctx, tx, delta, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = m.balance.Add(delta)
	return m.balance, nil
}

func (m *MockCashBookRepository) Set(ctx context.Context, value decimal.Decimal, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = value
	return nil
}

// MockInvoiceSequenceRepository hands out sequence numbers per day and type.
type MockInvoiceSequenceRepository struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func NewMockInvoiceSequenceRepository() *MockInvoiceSequenceRepository {
	return &MockInvoiceSequenceRepository{seqs: make(map[string]int64)}
}

func (m *MockInvoiceSequenceRepository) Next(ctx context.Context, tx usecase.Transaction, txType domain.TransactionType, day time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := string(txType) + ":" + domain.InvoiceDayKey(day)
	m.seqs[key]++
	return m.seqs[key], nil
}

// MockMappingRepository is an in-memory MappingRepository.
type MockMappingRepository struct {
	mu       sync.RWMutex
	byRemote map[string]*domain.RemoteLocalMapping
}

func NewMockMappingRepository() *MockMappingRepository {
	return &MockMappingRepository{byRemote: make(map[string]*domain.RemoteLocalMapping)}
}

func (m *MockMappingRepository) Create(ctx context.Context, tx usecase.Transaction, mapping *domain.RemoteLocalMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mapping
	m.byRemote[mapping.RemoteID] = &cp
	return nil
}

func (m *MockMappingRepository) GetByRemoteID(ctx context.Context, remoteID string) (*domain.RemoteLocalMapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mp, ok := m.byRemote[remoteID]; ok {
		cp := *mp
		return &cp, nil
	}
	return nil, nil
}

func (m *MockMappingRepository) DeleteByLocalID(ctx context.Context, tx usecase.Transaction, localID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for remoteID, mp := range m.byRemote {
		if mp.LocalID == localID {
			delete(m.byRemote, remoteID)
		}
	}
	return nil
}

// MockSyncLogRepository is an in-memory SyncLogRepository.
type MockSyncLogRepository struct {
	mu   sync.RWMutex
	logs []*domain.SyncLog
}

func NewMockSyncLogRepository() *MockSyncLogRepository {
	return &MockSyncLogRepository{}
}

func (m *MockSyncLogRepository) Create(ctx context.Context, log *domain.SyncLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *log
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *MockSyncLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SyncLog, 0, limit)
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.logs[i]
		out = append(out, &cp)
	}
	return out, nil
}

// MockRemoteMirror is an in-memory RemoteMirror. Uploaded transactions are
// stored under their local id as the remote id unless Remotes is pre-seeded.
type MockRemoteMirror struct {
	mu      sync.RWMutex
	remotes map[string]*domain.RemoteTransaction

	UploadFunc      func(ctx context.Context, userID string, txn *domain.Transaction) error
	UploadBatchFunc func(ctx context.Context, userID string, txns []*domain.Transaction) error
	DeleteFunc      func(ctx context.Context, userID string, txType domain.TransactionType, id string) error
	FetchAllFunc    func(ctx context.Context, userID string) ([]*domain.RemoteTransaction, error)

	UploadCalls int
	BatchCalls  int
	DeleteCalls int
}

func NewMockRemoteMirror() *MockRemoteMirror {
	return &MockRemoteMirror{remotes: make(map[string]*domain.RemoteTransaction)}
}

// Seed places a remote-side copy without counting as an upload.
func (m *MockRemoteMirror) Seed(remoteID string, txn domain.Transaction, syncedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remotes[remoteID] = &domain.RemoteTransaction{RemoteID: remoteID, SyncedAt: syncedAt, Transaction: txn}
}

func (m *MockRemoteMirror) Upload(ctx context.Context, userID string, txn *domain.Transaction) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadCalls++
	m.remotes[txn.ID()] = &domain.RemoteTransaction{RemoteID: txn.ID(), SyncedAt: time.Now().UTC(), Transaction: *txn}
	return nil
}

func (m *MockRemoteMirror) UploadBatch(ctx context.Context, userID string, txns []*domain.Transaction) error {
	if m.UploadBatchFunc != nil {
		return m.UploadBatchFunc(ctx, userID, txns)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchCalls++
	for _, txn := range txns {
		m.remotes[txn.ID()] = &domain.RemoteTransaction{RemoteID: txn.ID(), SyncedAt: time.Now().UTC(), Transaction: *txn}
	}
	return nil
}

func (m *MockRemoteMirror) Delete(ctx context.Context, userID string, txType domain.TransactionType, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, txType, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	delete(m.remotes, id)
	return nil
}

func (m *MockRemoteMirror) FetchAll(ctx context.Context, userID string) ([]*domain.RemoteTransaction, error) {
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.RemoteTransaction, 0, len(m.remotes))
	for _, r := range m.remotes {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemoteID < out[j].RemoteID })
	return out, nil
}

// MockSyncNotifier records notifications synchronously.
type MockSyncNotifier struct {
	mu       sync.Mutex
	Upserted []*domain.Transaction
	Deleted  []string
}

func NewMockSyncNotifier() *MockSyncNotifier {
	return &MockSyncNotifier{}
}

func (m *MockSyncNotifier) NotifyUpserted(ctx context.Context, txn *domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upserted = append(m.Upserted, txn)
}

func (m *MockSyncNotifier) NotifyDeleted(ctx context.Context, txType domain.TransactionType, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
}

// MockTransaction is a no-op storage transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.RolledBack = true
	return nil
}

// MockTransactionManager hands out MockTransactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu   sync.Mutex
	Txns []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Txns = append(m.Txns, tx)
	return tx, nil
}

// MockIDGenerator returns sequential ids.
type MockIDGenerator struct {
	mu      sync.Mutex
	counter int
	Prefix  string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{Prefix: "id"}
}

func (m *MockIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return m.Prefix + "-" + itoa(m.counter)
}

func paginate[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// MockCache is an in-memory Cache without TTL expiry.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	SetFunc func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
