package domain

import "errors"

var (
	// Validation errors
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAmountExceedsBalance = errors.New("amount exceeds outstanding balance")
	ErrMissingField         = errors.New("missing required field")
	ErrInvalidRate          = errors.New("interest rate must not be negative")
	ErrInvalidLendType      = errors.New("invalid lend type")
	ErrInvalidType          = errors.New("invalid transaction type")

	ErrTransactionSettled = errors.New("transaction already has settlements")

	// Lookup errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentNotFound     = errors.New("payment not found")

	// Invoice errors
	ErrDuplicateInvoice  = errors.New("invoice number already exists")
	ErrNoInvoiceSequence = errors.New("transaction type has no invoice sequence")

	// Auth errors
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")

	// Sync errors
	ErrNoSession      = errors.New("no user session")
	ErrMirrorDisabled = errors.New("cloud mirror not configured")
)
