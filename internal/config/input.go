package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of payroll configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a payroll configuration from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Parse decodes and validates configuration bytes
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadRulesFromFile loads a standalone tax rules file. Fields left out of the
// file keep their default values.
func (ip *InputParser) LoadRulesFromFile(filename string) (domain.EngineConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return domain.EngineConfig{}, fmt.Errorf("failed to read rules file %s: %w", filename, err)
	}

	rules := domain.DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	if err := ip.validateTaxRules(&rules); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("tax rules validation failed: %w", err)
	}
	return rules, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config == nil {
		return fmt.Errorf("configuration is required")
	}
	if config.TaxRules != nil {
		if err := ip.validateTaxRules(config.TaxRules); err != nil {
			return fmt.Errorf("tax rules validation failed: %w", err)
		}
	}
	if err := ip.validateBrackets(config.Brackets); err != nil {
		return fmt.Errorf("bracket validation failed: %w", err)
	}
	if err := ip.validateProfiles(config.Profiles); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}
	if err := ip.validatePayroll(config.Payroll); err != nil {
		return fmt.Errorf("payroll validation failed: %w", err)
	}
	return nil
}

// validateTaxRules checks the reference constants
func (ip *InputParser) validateTaxRules(rules *domain.EngineConfig) error {
	for status, amount := range rules.StandardDeductions {
		if amount.LessThan(decimal.Zero) {
			return fmt.Errorf("standard deduction for %s cannot be negative", status)
		}
	}
	if rules.DefaultStandardDeduction.LessThan(decimal.Zero) {
		return fmt.Errorf("default standard deduction cannot be negative")
	}
	if rules.AllowanceValue.LessThan(decimal.Zero) {
		return fmt.Errorf("allowance value cannot be negative")
	}
	if rules.AdditionalWithholdingPeriods < 0 {
		return fmt.Errorf("additional withholding periods cannot be negative")
	}
	if err := validatePercent("social security rate", rules.SocialSecurity.Rate); err != nil {
		return err
	}
	if rules.SocialSecurity.WageBase.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("social security wage base must be positive")
	}
	if err := validatePercent("medicare rate", rules.Medicare.Rate); err != nil {
		return err
	}
	if err := validatePercent("medicare additional rate", rules.Medicare.AdditionalRate); err != nil {
		return err
	}
	if rules.Medicare.AdditionalThreshold.LessThan(decimal.Zero) {
		return fmt.Errorf("medicare additional threshold cannot be negative")
	}
	return nil
}

func validatePercent(name string, rate decimal.Decimal) error {
	if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100 percent", name)
	}
	return nil
}

// validateBrackets checks every bracket and then each country/tax type group
// for overlaps.
func (ip *InputParser) validateBrackets(brackets []domain.TaxBracket) error {
	groups := make(map[domain.ScheduleKey][]domain.TaxBracket)
	var order []domain.ScheduleKey

	for i, b := range brackets {
		if strings.TrimSpace(b.Country) == "" {
			return fmt.Errorf("bracket %d: country is required", i)
		}
		if !b.TaxType.Valid() {
			return fmt.Errorf("bracket %d: unknown tax type %q", i, b.TaxType)
		}
		if b.EndDate != nil && !b.EffectiveDate.IsZero() && b.EndDate.Before(b.EffectiveDate) {
			return fmt.Errorf("bracket %d: end date is before effective date", i)
		}
		if !b.IsActive {
			continue
		}
		key := domain.ScheduleKey{Country: strings.ToUpper(strings.TrimSpace(b.Country)), TaxType: b.TaxType}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}

	var errs []error
	for _, key := range order {
		if err := validateGroup(groups[key]); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", key.Country, key.TaxType, err))
		}
	}
	return errors.Join(errs...)
}

// validateGroup checks overlap among brackets that share an effective window.
// Brackets from different years are allowed to cover the same income.
func validateGroup(brackets []domain.TaxBracket) error {
	windows := make(map[string][]domain.TaxBracket)
	var order []string
	for _, b := range brackets {
		w := windowKey(b)
		if _, seen := windows[w]; !seen {
			order = append(order, w)
		}
		windows[w] = append(windows[w], b)
	}
	for _, w := range order {
		if err := calculation.ValidateBrackets(windows[w]); err != nil {
			return err
		}
	}
	return nil
}

func windowKey(b domain.TaxBracket) string {
	end := ""
	if b.EndDate != nil {
		end = b.EndDate.Format("2006-01-02")
	}
	return b.EffectiveDate.Format("2006-01-02") + "/" + end
}

// validateProfiles checks each employee profile and id uniqueness
func (ip *InputParser) validateProfiles(profiles []domain.EmployeeTaxProfile) error {
	seen := make(map[string]bool, len(profiles))
	for i, p := range profiles {
		if strings.TrimSpace(p.EmployeeID) == "" {
			return fmt.Errorf("profile %d: employee id is required", i)
		}
		if seen[p.EmployeeID] {
			return fmt.Errorf("profile %d: duplicate employee id %s", i, p.EmployeeID)
		}
		seen[p.EmployeeID] = true
		if strings.TrimSpace(p.Country) == "" {
			return fmt.Errorf("profile %s: country is required", p.EmployeeID)
		}
		if p.Allowances < 0 {
			return fmt.Errorf("profile %s: allowances cannot be negative", p.EmployeeID)
		}
		if p.AdditionalWithholding.LessThan(decimal.Zero) {
			return fmt.Errorf("profile %s: additional withholding cannot be negative", p.EmployeeID)
		}
	}
	return nil
}

// validatePayroll checks each payroll entry. Entries may reference employees
// without a profile; those compute as zero.
func (ip *InputParser) validatePayroll(entries []domain.PayrollEntry) error {
	for i, e := range entries {
		if strings.TrimSpace(e.EmployeeID) == "" {
			return fmt.Errorf("entry %d: employee id is required", i)
		}
		if err := calculation.ValidateGrossPay(e.GrossPay); err != nil {
			return fmt.Errorf("entry %d (%s): %w", i, e.EmployeeID, err)
		}
	}
	return nil
}
