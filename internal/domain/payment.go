package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind selects between a partial repayment and a final settlement.
// The distinction only changes how a lend repayment amount is derived; for
// buy/sell a final settlement is simply a payment equal to the balance.
type PaymentKind string

const (
	PaymentPartial PaymentKind = "PARTIAL"
	PaymentFinal   PaymentKind = "FINAL"
)

// Payment is an immutable settlement record against an open transaction.
// It is never edited; undoing one means deleting it, which fully reverses
// its effect on the parent transaction and the cash book.
type Payment struct {
	ID              string
	TransactionID   string
	TransactionType TransactionType
	Amount          decimal.Decimal
	PrincipalAmount decimal.Decimal
	InterestAmount  decimal.Decimal
	PaymentDate     time.Time
	PaymentMode     string
	Notes           string
	CreatedAt       time.Time
}
