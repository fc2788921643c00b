package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType discriminates the four ledger transaction variants.
type TransactionType string

const (
	TypeBuy     TransactionType = "BUY"
	TypeSell    TransactionType = "SELL"
	TypeLend    TransactionType = "LEND"
	TypeExpense TransactionType = "EXPENSE"
)

// PaymentStatus tracks how much of a transaction has been settled.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusPartial   PaymentStatus = "PARTIAL"
	StatusCompleted PaymentStatus = "COMPLETED"
)

// LendType distinguishes money loans from grain loans.
type LendType string

const (
	LendMoney LendType = "MONEY"
	LendGrain LendType = "GRAIN"
)

// StatusFor derives the payment status from settled vs total amounts.
// It is the single source of truth for status; callers never set status directly.
func StatusFor(total, settled decimal.Decimal) PaymentStatus {
	switch {
	case settled.LessThanOrEqual(decimal.Zero):
		return StatusPending
	case settled.GreaterThanOrEqual(total):
		return StatusCompleted
	default:
		return StatusPartial
	}
}

// BuyTransaction records a grain purchase from a farmer.
type BuyTransaction struct {
	ID               string
	Date             time.Time
	FarmerName       string
	FarmerPhone      string
	GrainType        string
	Quantity         decimal.Decimal
	Rate             decimal.Decimal
	TotalAmount      decimal.Decimal
	PaidAmount       decimal.Decimal
	BalanceAmount    decimal.Decimal
	PaymentStatus    PaymentStatus
	CommissionAmount decimal.Decimal
	LabourCharges    decimal.Decimal
	InvoiceNumber    string
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidatePayment checks that amount can be applied against the open balance.
func (b *BuyTransaction) ValidatePayment(amount decimal.Decimal) error {
	return validateSettlement(amount, b.BalanceAmount)
}

// ApplyPayment settles amount against the balance and recomputes status.
func (b *BuyTransaction) ApplyPayment(amount decimal.Decimal, at time.Time) {
	b.PaidAmount = b.PaidAmount.Add(amount)
	b.BalanceAmount = b.TotalAmount.Sub(b.PaidAmount)
	b.PaymentStatus = StatusFor(b.TotalAmount, b.PaidAmount)
	b.UpdatedAt = at
}

// ReversePayment is the exact inverse of ApplyPayment.
func (b *BuyTransaction) ReversePayment(amount decimal.Decimal, at time.Time) {
	b.PaidAmount = b.PaidAmount.Sub(amount)
	b.BalanceAmount = b.TotalAmount.Sub(b.PaidAmount)
	b.PaymentStatus = StatusFor(b.TotalAmount, b.PaidAmount)
	b.UpdatedAt = at
}

// SellItem is one line of a multi-item sell receipt.
type SellItem struct {
	ID        string
	SellID    string
	GrainType string
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal
}

// SellTransaction records a grain sale to a merchant or customer.
type SellTransaction struct {
	ID               string
	Date             time.Time
	CustomerName     string
	CustomerPhone    string
	GrainType        string
	Quantity         decimal.Decimal
	Rate             decimal.Decimal
	TotalAmount      decimal.Decimal
	ReceivedAmount   decimal.Decimal
	BalanceAmount    decimal.Decimal
	PaymentStatus    PaymentStatus
	CommissionAmount decimal.Decimal
	LabourCharges    decimal.Decimal
	InvoiceNumber    string
	Description      string
	Items            []SellItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidatePayment checks that amount can be applied against the open balance.
func (s *SellTransaction) ValidatePayment(amount decimal.Decimal) error {
	return validateSettlement(amount, s.BalanceAmount)
}

// ApplyPayment settles amount against the balance and recomputes status.
func (s *SellTransaction) ApplyPayment(amount decimal.Decimal, at time.Time) {
	s.ReceivedAmount = s.ReceivedAmount.Add(amount)
	s.BalanceAmount = s.TotalAmount.Sub(s.ReceivedAmount)
	s.PaymentStatus = StatusFor(s.TotalAmount, s.ReceivedAmount)
	s.UpdatedAt = at
}

// ReversePayment is the exact inverse of ApplyPayment.
func (s *SellTransaction) ReversePayment(amount decimal.Decimal, at time.Time) {
	s.ReceivedAmount = s.ReceivedAmount.Sub(amount)
	s.BalanceAmount = s.TotalAmount.Sub(s.ReceivedAmount)
	s.PaymentStatus = StatusFor(s.TotalAmount, s.ReceivedAmount)
	s.UpdatedAt = at
}

// LendTransaction records money or grain lent to a borrower, or borrowed by
// the business itself (a self-loan, recognized by the absence of a phone).
type LendTransaction struct {
	ID                   string
	Date                 time.Time
	BorrowerName         string
	BorrowerPhone        string
	LendType             LendType
	Amount               decimal.Decimal
	ReturnedAmount       decimal.Decimal
	BalanceAmount        decimal.Decimal
	PaymentStatus        PaymentStatus
	InterestRatePerMonth decimal.Decimal
	InvoiceNumber        string
	Description          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsSelfLoan reports whether this loan is money the business itself borrowed.
// A record without a counterparty phone is treated as a self-loan; the sign of
// every cash movement on the loan flips accordingly.
func (l *LendTransaction) IsSelfLoan() bool {
	return l.BorrowerPhone == ""
}

// OutstandingPrincipal is the principal interest accrues on.
func (l *LendTransaction) OutstandingPrincipal() decimal.Decimal {
	if l.ReturnedAmount.IsZero() {
		return l.Amount
	}
	return l.BalanceAmount
}

// ApplyRepayment reduces the outstanding principal by the principal component
// of a repayment. Interest never touches ReturnedAmount.
func (l *LendTransaction) ApplyRepayment(principal decimal.Decimal, at time.Time) {
	l.ReturnedAmount = l.ReturnedAmount.Add(principal)
	l.recompute(at)
}

// ReverseRepayment is the exact inverse of ApplyRepayment.
func (l *LendTransaction) ReverseRepayment(principal decimal.Decimal, at time.Time) {
	l.ReturnedAmount = l.ReturnedAmount.Sub(principal)
	if l.ReturnedAmount.IsNegative() {
		l.ReturnedAmount = decimal.Zero
	}
	l.recompute(at)
}

func (l *LendTransaction) recompute(at time.Time) {
	balance := l.Amount.Sub(l.ReturnedAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	l.BalanceAmount = balance
	l.PaymentStatus = StatusFor(l.Amount, l.ReturnedAmount)
	l.UpdatedAt = at
}

// ExpenseTransaction records a business expense.
type ExpenseTransaction struct {
	ID            string
	Date          time.Time
	Category      string
	Amount        decimal.Decimal
	PaidTo        string
	ReceiptNumber string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is the tagged union the sync engine and mirror operate on.
// Exactly one variant pointer is non-nil, matching Type.
type Transaction struct {
	Type    TransactionType
	Buy     *BuyTransaction
	Sell    *SellTransaction
	Lend    *LendTransaction
	Expense *ExpenseTransaction
}

// ID returns the id of the populated variant.
func (t *Transaction) ID() string {
	switch t.Type {
	case TypeBuy:
		return t.Buy.ID
	case TypeSell:
		return t.Sell.ID
	case TypeLend:
		return t.Lend.ID
	case TypeExpense:
		return t.Expense.ID
	}
	return ""
}

// SetID rewrites the id of the populated variant. The sync engine uses it to
// pin a pulled cloud copy onto the local row it was matched with, so a restore
// overwrites the matched entry instead of inserting a duplicate.
func (t *Transaction) SetID(id string) {
	switch t.Type {
	case TypeBuy:
		t.Buy.ID = id
	case TypeSell:
		t.Sell.ID = id
	case TypeLend:
		t.Lend.ID = id
	case TypeExpense:
		t.Expense.ID = id
	}
}

// UpdatedAt returns the conflict-resolution vector of the populated variant.
func (t *Transaction) UpdatedAt() time.Time {
	switch t.Type {
	case TypeBuy:
		return t.Buy.UpdatedAt
	case TypeSell:
		return t.Sell.UpdatedAt
	case TypeLend:
		return t.Lend.UpdatedAt
	case TypeExpense:
		return t.Expense.UpdatedAt
	}
	return time.Time{}
}

// InvoiceNumber returns the invoice number of the populated variant, if any.
func (t *Transaction) InvoiceNumber() string {
	switch t.Type {
	case TypeBuy:
		return t.Buy.InvoiceNumber
	case TypeSell:
		return t.Sell.InvoiceNumber
	case TypeLend:
		return t.Lend.InvoiceNumber
	}
	return ""
}

func validateSettlement(amount, balance decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(balance) {
		return ErrAmountExceedsBalance
	}
	return nil
}
