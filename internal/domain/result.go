package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxResult is the per-period withholding for one employee. Every field is
// rounded to cents and TotalTax is the sum of the rounded components.
type TaxResult struct {
	FederalTax        decimal.Decimal `yaml:"federal_tax" json:"federal_tax"`
	StateTax          decimal.Decimal `yaml:"state_tax" json:"state_tax"`
	LocalTax          decimal.Decimal `yaml:"local_tax" json:"local_tax"`
	SocialSecurityTax decimal.Decimal `yaml:"social_security_tax" json:"social_security_tax"`
	MedicareTax       decimal.Decimal `yaml:"medicare_tax" json:"medicare_tax"`
	TotalTax          decimal.Decimal `yaml:"total_tax" json:"total_tax"`
}

// ZeroTaxResult returns a result with every amount set to zero
func ZeroTaxResult() TaxResult {
	return TaxResult{
		FederalTax:        decimal.Zero,
		StateTax:          decimal.Zero,
		LocalTax:          decimal.Zero,
		SocialSecurityTax: decimal.Zero,
		MedicareTax:       decimal.Zero,
		TotalTax:          decimal.Zero,
	}
}

// Component returns the amount withheld for taxType
func (r TaxResult) Component(taxType TaxType) decimal.Decimal {
	switch taxType {
	case TaxTypeFederal:
		return r.FederalTax
	case TaxTypeState:
		return r.StateTax
	case TaxTypeLocal:
		return r.LocalTax
	case TaxTypeSocialSecurity:
		return r.SocialSecurityTax
	case TaxTypeMedicare:
		return r.MedicareTax
	default:
		return decimal.Zero
	}
}

// Add sums two results field by field
func (r TaxResult) Add(o TaxResult) TaxResult {
	return TaxResult{
		FederalTax:        r.FederalTax.Add(o.FederalTax),
		StateTax:          r.StateTax.Add(o.StateTax),
		LocalTax:          r.LocalTax.Add(o.LocalTax),
		SocialSecurityTax: r.SocialSecurityTax.Add(o.SocialSecurityTax),
		MedicareTax:       r.MedicareTax.Add(o.MedicareTax),
		TotalTax:          r.TotalTax.Add(o.TotalTax),
	}
}

// PayrollEntry is one line of a payroll batch
type PayrollEntry struct {
	EmployeeID string          `yaml:"employee_id" json:"employee_id"`
	GrossPay   decimal.Decimal `yaml:"gross_pay" json:"gross_pay"`
	PayPeriod  string          `yaml:"pay_period" json:"pay_period"`
}

// PayslipTaxes is the computed withholding for one payroll entry
type PayslipTaxes struct {
	EmployeeID   string          `yaml:"employee_id" json:"employee_id"`
	GrossPay     decimal.Decimal `yaml:"gross_pay" json:"gross_pay"`
	PayPeriod    string          `yaml:"pay_period" json:"pay_period"`
	Multiplier   int             `yaml:"periods_per_year" json:"periods_per_year"`
	ProfileFound bool            `yaml:"profile_found" json:"profile_found"`
	Result       TaxResult       `yaml:"taxes" json:"taxes"`
}

// PayrollRun is the outcome of a batch computation. Assumptions lists the
// reference constants the run was computed with.
type PayrollRun struct {
	RunID       string         `yaml:"run_id" json:"run_id"`
	AsOf        time.Time      `yaml:"as_of" json:"as_of"`
	Entries     []PayslipTaxes `yaml:"entries" json:"entries"`
	Totals      TaxResult      `yaml:"totals" json:"totals"`
	Assumptions []string       `yaml:"assumptions,omitempty" json:"assumptions,omitempty"`
}
