package domain

import "github.com/shopspring/decimal"

// FilingStatus is the employee's W-4 filing status
type FilingStatus string

const (
	FilingSingle          FilingStatus = "single"
	FilingMarriedJoint    FilingStatus = "married_joint"
	FilingMarriedSeparate FilingStatus = "married_separate"
	FilingHeadOfHousehold FilingStatus = "head_of_household"
)

// EmployeeTaxProfile carries the withholding elections for one employee
type EmployeeTaxProfile struct {
	EmployeeID            string          `yaml:"employee_id" json:"employee_id"`
	Country               string          `yaml:"country" json:"country"`
	FilingStatus          FilingStatus    `yaml:"filing_status" json:"filing_status"`
	Allowances            int             `yaml:"allowances" json:"allowances"`
	AdditionalWithholding decimal.Decimal `yaml:"additional_withholding" json:"additional_withholding"` // per period
	ExemptFromFederal     bool            `yaml:"exempt_from_federal" json:"exempt_from_federal"`
	ExemptFromState       bool            `yaml:"exempt_from_state" json:"exempt_from_state"`
	ExemptFromLocal       bool            `yaml:"exempt_from_local" json:"exempt_from_local"`
}

// ExemptFor reports whether the profile opts out of a bracket-based tax type.
// Social security and medicare have no exemption flag.
func (p *EmployeeTaxProfile) ExemptFor(taxType TaxType) bool {
	if p == nil {
		return false
	}
	switch taxType {
	case TaxTypeFederal:
		return p.ExemptFromFederal
	case TaxTypeState:
		return p.ExemptFromState
	case TaxTypeLocal:
		return p.ExemptFromLocal
	default:
		return false
	}
}
