package calculation

import (
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

// WITHHOLDING MODEL ASSUMPTIONS:
//
// 1. Federal: standard deduction by filing status (2024 values), then the
//    bracket schedule, then a flat W-4 style credit per allowance, then the
//    employee's additional withholding treated as a monthly amount.
//
// 2. State and local: bracket schedule applied to annualized gross with no
//    deduction.
//
// 3. Social security: flat rate on period gross. Once annualized gross passes
//    the wage base the period's tax is zero (cliff, not a partial cap).
//
// 4. Medicare: flat rate on period gross plus the additional medicare rate on
//    the de-annualized excess over a single-filer threshold, regardless of
//    filing status.

// FederalTax returns the annual federal withholding for a profile
func FederalTax(profile *domain.EmployeeTaxProfile, annualIncome decimal.Decimal, brackets []domain.TaxBracket, cfg domain.EngineConfig) decimal.Decimal {
	if profile == nil || profile.ExemptFromFederal {
		return decimal.Zero
	}
	if len(brackets) == 0 {
		return decimal.Zero
	}

	taxableIncome := annualIncome.Sub(cfg.StandardDeduction(profile.FilingStatus))
	if taxableIncome.IsNegative() {
		taxableIncome = decimal.Zero
	}

	tax := EvaluateBrackets(brackets, taxableIncome)

	allowanceCredit := cfg.AllowanceValue.Mul(decimal.NewFromInt(int64(profile.Allowances)))
	tax = tax.Sub(allowanceCredit)
	if tax.IsNegative() {
		tax = decimal.Zero
	}

	periods := decimal.NewFromInt(int64(cfg.AdditionalWithholdingPeriods))
	return tax.Add(profile.AdditionalWithholding.Mul(periods))
}

// BracketTax returns the annual tax for a bracket-only jurisdiction (state
// and local share this path).
func BracketTax(exempt bool, brackets []domain.TaxBracket, annualIncome decimal.Decimal) decimal.Decimal {
	if exempt || len(brackets) == 0 {
		return decimal.Zero
	}
	return EvaluateBrackets(brackets, annualIncome)
}

// SocialSecurityFormula builds the social security formula: a flat rate on
// period gross with a wage-base cliff.
func SocialSecurityFormula(rules domain.SocialSecurityRules) FixedRateWithCap {
	wageBase := rules.WageBase
	return FixedRateWithCap{
		TaxType:  domain.TaxTypeSocialSecurity,
		Rate:     rules.Rate,
		WageBase: &wageBase,
	}
}

// MedicareFormula builds the medicare formula including the high-earner surtax
func MedicareFormula(rules domain.MedicareRules) FixedRateWithCap {
	threshold := rules.AdditionalThreshold
	return FixedRateWithCap{
		TaxType:         domain.TaxTypeMedicare,
		Rate:            rules.Rate,
		SurtaxThreshold: &threshold,
		SurtaxRate:      rules.AdditionalRate,
	}
}

// FormulaKind tags how a formula's amount relates to the pay period
type FormulaKind int

const (
	// KindBracketBased formulas return an annual amount
	KindBracketBased FormulaKind = iota
	// KindFixedRateWithCap formulas return a period amount
	KindFixedRateWithCap
)

func (k FormulaKind) String() string {
	switch k {
	case KindBracketBased:
		return "bracket_based"
	case KindFixedRateWithCap:
		return "fixed_rate_with_cap"
	default:
		return "unknown"
	}
}

// TaxInput is everything a formula may read for one calculation
type TaxInput struct {
	Profile        *domain.EmployeeTaxProfile
	GrossPay       decimal.Decimal
	AnnualGrossPay decimal.Decimal
	PayPeriod      string
	Schedule       BracketSource
	Config         domain.EngineConfig
}

// Formula computes one tax type for one jurisdiction
type Formula interface {
	Kind() FormulaKind
	Compute(in TaxInput) decimal.Decimal
}

// BracketBased evaluates the profile country's schedule for TaxType
type BracketBased struct {
	TaxType domain.TaxType
}

func (BracketBased) Kind() FormulaKind { return KindBracketBased }

// Compute returns the annual tax
func (f BracketBased) Compute(in TaxInput) decimal.Decimal {
	if in.Profile == nil || in.Schedule == nil {
		return decimal.Zero
	}
	brackets := in.Schedule.Brackets(in.Profile.Country, f.TaxType)
	if f.TaxType == domain.TaxTypeFederal {
		return FederalTax(in.Profile, in.AnnualGrossPay, brackets, in.Config)
	}
	return BracketTax(in.Profile.ExemptFor(f.TaxType), brackets, in.AnnualGrossPay)
}

// FixedRateWithCap is a flat percentage of period gross. A non-nil WageBase
// zeroes the tax once annualized gross exceeds it; a non-nil SurtaxThreshold
// adds SurtaxRate on the excess above it.
type FixedRateWithCap struct {
	TaxType         domain.TaxType
	Rate            decimal.Decimal
	WageBase        *decimal.Decimal
	SurtaxThreshold *decimal.Decimal
	SurtaxRate      decimal.Decimal
}

func (FixedRateWithCap) Kind() FormulaKind { return KindFixedRateWithCap }

// Compute returns the period tax
func (f FixedRateWithCap) Compute(in TaxInput) decimal.Decimal {
	if f.WageBase != nil && in.AnnualGrossPay.GreaterThan(*f.WageBase) {
		return decimal.Zero
	}

	tax := in.GrossPay.Mul(f.Rate).Div(hundred)

	if f.SurtaxThreshold != nil && in.AnnualGrossPay.GreaterThan(*f.SurtaxThreshold) {
		excessPeriod := Deannualize(in.AnnualGrossPay.Sub(*f.SurtaxThreshold), in.PayPeriod)
		tax = tax.Add(excessPeriod.Mul(f.SurtaxRate).Div(hundred))
	}

	return tax
}
