package calculation

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

var propertyPeriods = []string{"weekly", "bi-weekly", "semi-monthly", "monthly"}

// contiguousBrackets builds a well-formed schedule starting at zero from band
// widths and whole-percent rates; the last band is unbounded.
func contiguousBrackets(widths []int64, rates []int) []domain.TaxBracket {
	n := len(widths)
	if len(rates) < n {
		n = len(rates)
	}
	brackets := make([]domain.TaxBracket, 0, n)
	lower := decimal.Zero
	for i := 0; i < n; i++ {
		b := domain.TaxBracket{
			Country:   "US",
			TaxType:   domain.TaxTypeState,
			MinIncome: lower,
			TaxRate:   decimal.NewFromInt(int64(rates[i])),
			IsActive:  true,
		}
		if i < n-1 {
			upper := lower.Add(decimal.NewFromInt(widths[i]))
			b.MaxIncome = &upper
			lower = upper
		}
		brackets = append(brackets, b)
	}
	return brackets
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// TestEvaluateBrackets_ZeroFloor_PropertyBased checks that a well-formed
// schedule never produces negative tax for non-negative income.
func TestEvaluateBrackets_ZeroFloor_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("tax is never negative", prop.ForAll(
		func(widths []int64, rates []int, incomeCents int64) bool {
			tax := EvaluateBrackets(contiguousBrackets(widths, rates), decimal.New(incomeCents, -2))
			return !tax.IsNegative()
		},
		gen.SliceOfN(5, gen.Int64Range(1, 200000)),
		gen.SliceOfN(5, gen.IntRange(0, 60)),
		gen.Int64Range(0, 100000000),
	))

	properties.TestingRun(t)
}

// TestEvaluateBrackets_Monotonic_PropertyBased checks that more income never
// produces less bracket tax.
func TestEvaluateBrackets_Monotonic_PropertyBased(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("tax is non-decreasing in income", prop.ForAll(
		func(widths []int64, rates []int, incomeCents, raiseCents int64) bool {
			brackets := contiguousBrackets(widths, rates)
			lower := EvaluateBrackets(brackets, decimal.New(incomeCents, -2))
			higher := EvaluateBrackets(brackets, decimal.New(incomeCents+raiseCents, -2))
			return higher.GreaterThanOrEqual(lower)
		},
		gen.SliceOfN(5, gen.Int64Range(1, 200000)),
		gen.SliceOfN(5, gen.IntRange(0, 60)),
		gen.Int64Range(0, 50000000),
		gen.Int64Range(0, 50000000),
	))

	properties.TestingRun(t)
}

// TestCalculateTaxes_BracketTaxesMonotonic_PropertyBased checks monotonicity
// of the bracket-derived withholding through the whole engine. Social
// security is excluded because of its wage-base cliff.
func TestCalculateTaxes_BracketTaxesMonotonic_PropertyBased(t *testing.T) {
	schedule := domain.NewBracketSchedule([]domain.TaxBracket{
		usBracket(domain.TaxTypeFederal, "0", decPtr("11600"), "10"),
		usBracket(domain.TaxTypeFederal, "11600", decPtr("47150"), "12"),
		usBracket(domain.TaxTypeFederal, "47150", decPtr("100525"), "22"),
		usBracket(domain.TaxTypeFederal, "100525", nil, "24"),
		usBracket(domain.TaxTypeState, "0", nil, "3.07"),
		usBracket(domain.TaxTypeLocal, "0", nil, "1"),
	}, testAsOf)
	engine := NewEngine(schedule, domain.DefaultEngineConfig())
	profile := &domain.EmployeeTaxProfile{EmployeeID: "P", Country: "US", FilingStatus: domain.FilingSingle, Allowances: 1}

	properties := gopter.NewProperties(propertyParameters())

	properties.Property("federal, state, local and medicare are non-decreasing in gross pay", prop.ForAll(
		func(grossCents, raiseCents int64, periodIndex int) bool {
			period := propertyPeriods[periodIndex]
			low := engine.CalculateTaxes(profile, decimal.New(grossCents, -2), period)
			high := engine.CalculateTaxes(profile, decimal.New(grossCents+raiseCents, -2), period)
			return high.FederalTax.GreaterThanOrEqual(low.FederalTax) &&
				high.StateTax.GreaterThanOrEqual(low.StateTax) &&
				high.LocalTax.GreaterThanOrEqual(low.LocalTax) &&
				high.MedicareTax.GreaterThanOrEqual(low.MedicareTax)
		},
		gen.Int64Range(0, 5000000),
		gen.Int64Range(0, 5000000),
		gen.IntRange(0, len(propertyPeriods)-1),
	))

	properties.TestingRun(t)
}

// TestCalculateTaxes_FederalExemption_PropertyBased checks that a federal
// exemption zeroes federal tax for any income and cadence.
func TestCalculateTaxes_FederalExemption_PropertyBased(t *testing.T) {
	engine := NewEngine(fullSchedule(), domain.DefaultEngineConfig())
	profile := &domain.EmployeeTaxProfile{
		EmployeeID:            "X",
		Country:               "US",
		ExemptFromFederal:     true,
		AdditionalWithholding: decimal.NewFromInt(250),
	}

	properties := gopter.NewProperties(propertyParameters())

	properties.Property("federal tax is zero when exempt", prop.ForAll(
		func(grossCents int64, periodIndex int) bool {
			result := engine.CalculateTaxes(profile, decimal.New(grossCents, -2), propertyPeriods[periodIndex])
			return result.FederalTax.IsZero()
		},
		gen.Int64Range(0, 100000000),
		gen.IntRange(0, len(propertyPeriods)-1),
	))

	properties.TestingRun(t)
}
