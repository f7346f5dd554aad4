package calculation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidBracket is returned for a bracket with impossible bounds or rates
	ErrInvalidBracket = errors.New("invalid tax bracket")
	// ErrOverlappingBrackets is returned when two bands of one schedule overlap
	ErrOverlappingBrackets = errors.New("overlapping tax brackets")
)

var hundred = decimal.NewFromInt(100)

// EvaluateBrackets applies a progressive schedule to an annual income.
//
// The brackets are walked in ascending MinIncome order. Each band taxes at most
// its own width of the income still unallocated; a band's FixedAmount is added
// in full whenever the income reaches it. An empty schedule yields zero.
func EvaluateBrackets(brackets []domain.TaxBracket, annualIncome decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	remaining := annualIncome

	for _, b := range SortBrackets(brackets) {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if annualIncome.LessThanOrEqual(b.MinIncome) {
			continue
		}

		taxable := remaining
		if width, bounded := b.Width(); bounded {
			taxable = decimal.Min(remaining, width)
		}

		tax = tax.Add(taxable.Mul(b.TaxRate).Div(hundred))
		if b.FixedAmount != nil {
			tax = tax.Add(*b.FixedAmount)
		}
		remaining = remaining.Sub(taxable)
	}

	return tax
}

// SortBrackets returns a copy of brackets ordered by MinIncome
func SortBrackets(brackets []domain.TaxBracket) []domain.TaxBracket {
	sorted := append([]domain.TaxBracket(nil), brackets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinIncome.LessThan(sorted[j].MinIncome)
	})
	return sorted
}

// ValidateBrackets checks the ordering precondition of EvaluateBrackets for a
// single (country, tax type) schedule.
func ValidateBrackets(brackets []domain.TaxBracket) error {
	sorted := SortBrackets(brackets)
	for i, b := range sorted {
		if b.MinIncome.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative min income %s", ErrInvalidBracket, i, b.MinIncome)
		}
		if b.MaxIncome != nil && b.MaxIncome.LessThan(b.MinIncome) {
			return fmt.Errorf("%w: bracket %d max income %s is below min income %s", ErrInvalidBracket, i, b.MaxIncome, b.MinIncome)
		}
		if b.TaxRate.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative rate %s", ErrInvalidBracket, i, b.TaxRate)
		}
		if b.FixedAmount != nil && b.FixedAmount.IsNegative() {
			return fmt.Errorf("%w: bracket %d has negative fixed amount %s", ErrInvalidBracket, i, b.FixedAmount)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if prev.MaxIncome == nil {
			return fmt.Errorf("%w: unbounded bracket starting at %s is followed by bracket starting at %s",
				ErrOverlappingBrackets, prev.MinIncome, b.MinIncome)
		}
		if b.MinIncome.LessThan(*prev.MaxIncome) {
			return fmt.Errorf("%w: bracket starting at %s begins before previous bracket ends at %s",
				ErrOverlappingBrackets, b.MinIncome, prev.MaxIncome)
		}
	}
	return nil
}
