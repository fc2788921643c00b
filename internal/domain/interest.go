package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var daysPerMonthTimesHundred = decimal.NewFromInt(3000)

// AccrualDays returns the number of whole days interest accrues for between
// two reconciliation points. Partial days round up; a non-positive window
// yields zero.
func AccrualDays(from, to time.Time) int64 {
	diff := to.Sub(from)
	if diff <= 0 {
		return 0
	}
	days := int64(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// SimpleInterest computes daily-prorated simple interest on principal at a
// monthly percentage rate: round(principal * rate * days / (100 * 30)).
func SimpleInterest(principal, ratePerMonth decimal.Decimal, days int64) decimal.Decimal {
	if days <= 0 || principal.LessThanOrEqual(decimal.Zero) || ratePerMonth.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return principal.
		Mul(ratePerMonth).
		Mul(decimal.NewFromInt(days)).
		Div(daysPerMonthTimesHundred).
		Round(0)
}

// AccruedInterest computes the interest owed on the loan as of asOf.
// The window starts at the most recent repayment, or at origination if the
// loan has never been repaid. Only money loans accrue interest.
func (l *LendTransaction) AccruedInterest(asOf time.Time, lastPaymentDate *time.Time) decimal.Decimal {
	if l.LendType != LendMoney {
		return decimal.Zero
	}
	since := l.Date
	if lastPaymentDate != nil {
		since = *lastPaymentDate
	}
	days := AccrualDays(since, asOf)
	return SimpleInterest(l.OutstandingPrincipal(), l.InterestRatePerMonth, days)
}

// SplitRepayment allocates a repayment amount interest-first: accrued
// interest is paid before any principal is reduced.
func SplitRepayment(amount, totalInterest decimal.Decimal) (interest, principal decimal.Decimal) {
	interest = decimal.Min(amount, totalInterest)
	principal = amount.Sub(interest)
	return interest, principal
}
