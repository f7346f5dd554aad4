package output

import (
	"fmt"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// Assumptions lists the reference constants behind a computation for the
// detailed outputs.
func Assumptions(cfg domain.EngineConfig) []string {
	return []string{
		fmt.Sprintf("Standard deduction: %s single, %s married joint, %s head of household",
			FormatCurrency(cfg.StandardDeduction(domain.FilingSingle)),
			FormatCurrency(cfg.StandardDeduction(domain.FilingMarriedJoint)),
			FormatCurrency(cfg.StandardDeduction(domain.FilingHeadOfHousehold))),
		fmt.Sprintf("Allowance value: %s per allowance", FormatCurrency(cfg.AllowanceValue)),
		fmt.Sprintf("Additional withholding annualized over %d periods", cfg.AdditionalWithholdingPeriods),
		fmt.Sprintf("Social security: %s up to a %s annual wage base; nothing withheld above it",
			FormatPercentage(cfg.SocialSecurity.Rate), FormatCurrency(cfg.SocialSecurity.WageBase)),
		fmt.Sprintf("Medicare: %s plus %s above %s annual gross",
			FormatPercentage(cfg.Medicare.Rate), FormatPercentage(cfg.Medicare.AdditionalRate),
			FormatCurrency(cfg.Medicare.AdditionalThreshold)),
		"Unrecognized pay periods are treated as monthly",
	}
}
