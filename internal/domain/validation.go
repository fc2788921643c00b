package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName  = errors.New("invalid counterparty name")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidGrain = errors.New("invalid grain type")
)

// Validation constants
const (
	MaxNameLength      = 255
	MaxGrainNameLength = 100
	MaxNotesLength     = 2048
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

// ValidateName validates a counterparty name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}
	return nil
}

// ValidatePhone validates an optional phone number. Empty is allowed; for
// lend transactions an empty phone marks a self-loan.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}
	return nil
}

// ValidateGrainType validates a grain name.
func ValidateGrainType(grain string) error {
	grain = strings.TrimSpace(grain)
	if grain == "" {
		return fmt.Errorf("%w: grain type cannot be empty", ErrInvalidGrain)
	}
	if len(grain) > MaxGrainNameLength {
		return fmt.Errorf("%w: grain type exceeds %d characters", ErrInvalidGrain, MaxGrainNameLength)
	}
	return nil
}

// ValidatePositiveAmount validates an amount that must be strictly positive.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateRate validates a monthly interest rate.
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}

// NormalizeGrainType is the canonical grouping key for stock aggregation:
// trimmed and case-folded.
func NormalizeGrainType(grain string) string {
	return strings.ToLower(strings.TrimSpace(grain))
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
