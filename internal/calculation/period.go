package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PAY PERIOD NORMALIZATION:
//
// Bracket schedules are published as annual figures, so per-period gross pay
// is converted to a yearly equivalent before evaluation and the resulting
// annual tax is converted back with the same multiplier.

const monthsPerYear = 12

var periodsPerYear = map[string]int{
	"weekly":       52,
	"bi-weekly":    26,
	"biweekly":     26,
	"semi-monthly": 24,
	"semimonthly":  24,
	"monthly":      12,
}

// PeriodMultiplier returns the number of pay periods per year for a label.
// Unrecognized labels are treated as monthly.
func PeriodMultiplier(payPeriod string) int {
	if n, ok := periodsPerYear[normalizePeriod(payPeriod)]; ok {
		return n
	}
	return monthsPerYear
}

// IsKnownPeriod reports whether payPeriod is a recognized label
func IsKnownPeriod(payPeriod string) bool {
	_, ok := periodsPerYear[normalizePeriod(payPeriod)]
	return ok
}

// Annualize converts a per-period amount to its yearly equivalent
func Annualize(periodAmount decimal.Decimal, payPeriod string) decimal.Decimal {
	// (amount * multiplier / 12) per month, times 12 months
	return periodAmount.Mul(decimal.NewFromInt(int64(PeriodMultiplier(payPeriod))))
}

// Deannualize converts a yearly amount back to the pay period cadence
func Deannualize(annualAmount decimal.Decimal, payPeriod string) decimal.Decimal {
	return annualAmount.Div(decimal.NewFromInt(int64(PeriodMultiplier(payPeriod))))
}

func normalizePeriod(payPeriod string) string {
	return strings.ToLower(strings.TrimSpace(payPeriod))
}
