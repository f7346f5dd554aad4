package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds the reference constants used by the withholding engine.
// Rates are percentages.
type EngineConfig struct {
	StandardDeductions           map[FilingStatus]decimal.Decimal `yaml:"standard_deductions" json:"standard_deductions"`
	DefaultStandardDeduction     decimal.Decimal                  `yaml:"default_standard_deduction" json:"default_standard_deduction"`
	AllowanceValue               decimal.Decimal                  `yaml:"allowance_value" json:"allowance_value"`
	AdditionalWithholdingPeriods int                              `yaml:"additional_withholding_periods" json:"additional_withholding_periods"`
	SocialSecurity               SocialSecurityRules              `yaml:"social_security" json:"social_security"`
	Medicare                     MedicareRules                    `yaml:"medicare" json:"medicare"`
}

// SocialSecurityRules contains the social security rate and wage base
type SocialSecurityRules struct {
	Rate     decimal.Decimal `yaml:"rate" json:"rate"`
	WageBase decimal.Decimal `yaml:"wage_base" json:"wage_base"`
}

// MedicareRules contains the medicare rate and high-earner surtax
type MedicareRules struct {
	Rate                decimal.Decimal `yaml:"rate" json:"rate"`
	AdditionalRate      decimal.Decimal `yaml:"additional_rate" json:"additional_rate"`
	AdditionalThreshold decimal.Decimal `yaml:"additional_threshold" json:"additional_threshold"`
}

// DefaultEngineConfig returns the 2024 reference values
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		StandardDeductions: map[FilingStatus]decimal.Decimal{
			FilingSingle:          decimal.NewFromInt(14600),
			FilingMarriedJoint:    decimal.NewFromInt(29200),
			FilingMarriedSeparate: decimal.NewFromInt(14600),
			FilingHeadOfHousehold: decimal.NewFromInt(21900),
		},
		DefaultStandardDeduction:     decimal.NewFromInt(14600),
		AllowanceValue:               decimal.NewFromInt(4300),
		AdditionalWithholdingPeriods: 12,
		SocialSecurity: SocialSecurityRules{
			Rate:     decimal.NewFromFloat(6.2),
			WageBase: decimal.NewFromInt(160200),
		},
		Medicare: MedicareRules{
			Rate:                decimal.NewFromFloat(1.45),
			AdditionalRate:      decimal.NewFromFloat(0.9),
			AdditionalThreshold: decimal.NewFromInt(200000),
		},
	}
}

// UnmarshalYAML decodes over DefaultEngineConfig, so keys missing from the
// document keep their reference values and explicit zeros are kept as zeros.
// Standard deductions merge per filing status.
func (c *EngineConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain EngineConfig
	seeded := plain(DefaultEngineConfig())
	if err := value.Decode(&seeded); err != nil {
		return err
	}
	*c = EngineConfig(seeded)
	return nil
}

// StandardDeduction returns the deduction for status, falling back to the
// default for unrecognized statuses.
func (c EngineConfig) StandardDeduction(status FilingStatus) decimal.Decimal {
	if amount, ok := c.StandardDeductions[status]; ok {
		return amount
	}
	return c.DefaultStandardDeduction
}

// Configuration is the complete payroll input file
type Configuration struct {
	AsOf     time.Time            `yaml:"as_of" json:"as_of"`
	TaxRules *EngineConfig        `yaml:"tax_rules,omitempty" json:"tax_rules,omitempty"`
	Brackets []TaxBracket         `yaml:"brackets" json:"brackets"`
	Profiles []EmployeeTaxProfile `yaml:"profiles" json:"profiles"`
	Payroll  []PayrollEntry       `yaml:"payroll" json:"payroll"`
}

// EngineConfig returns the configured tax rules, or the reference values when
// the file has no tax_rules block.
func (c *Configuration) EngineConfig() EngineConfig {
	if c == nil || c.TaxRules == nil {
		return DefaultEngineConfig()
	}
	return *c.TaxRules
}

// EffectiveDate returns AsOf, or now when the file leaves it unset
func (c *Configuration) EffectiveDate() time.Time {
	if c == nil || c.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return c.AsOf
}
