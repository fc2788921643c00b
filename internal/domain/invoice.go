package domain

import (
	"fmt"
	"time"
)

// Invoice numbers are {YYYYMMDD}{TypeLetter}{4-digit-seq}, e.g. 20260831B0001.
// The sequence resets per calendar day per transaction type.

// InvoiceTypeLetter maps a transaction type to its invoice letter.
// Expenses carry receipt numbers instead of invoice numbers.
func InvoiceTypeLetter(t TransactionType) (string, error) {
	switch t {
	case TypeBuy:
		return "B", nil
	case TypeSell:
		return "S", nil
	case TypeLend:
		return "L", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNoInvoiceSequence, t)
	}
}

// FormatInvoiceNumber renders an invoice number for a type, day and sequence.
func FormatInvoiceNumber(t TransactionType, day time.Time, seq int64) (string, error) {
	letter, err := InvoiceTypeLetter(t)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s%04d", day.Format("20060102"), letter, seq), nil
}

// InvoiceDayKey is the per-day scope key an invoice sequence is stored under.
func InvoiceDayKey(day time.Time) string {
	return day.Format("20060102")
}
