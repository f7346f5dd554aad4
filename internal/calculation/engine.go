package calculation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidGrossPay is returned when gross pay is not a non-negative number
var ErrInvalidGrossPay = errors.New("invalid gross pay")

// BracketSource supplies active brackets sorted by MinIncome
type BracketSource interface {
	Brackets(country string, taxType domain.TaxType) []domain.TaxBracket
}

// Engine orchestrates the per-period withholding calculation. It holds only
// read-only state once built and is safe for concurrent use. The rules are
// fixed at construction since the default registry copies them.
type Engine struct {
	Schedule BracketSource
	Registry *Registry
	config   domain.EngineConfig
	logger   Logger
}

// Option customizes an Engine
type Option func(*Engine)

// WithRegistry replaces the default jurisdiction registry
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.Registry = r }
}

// WithLogger sets the engine logger
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.SetLogger(l) }
}

// NewEngine creates an engine over an already-loaded bracket schedule
func NewEngine(schedule BracketSource, cfg domain.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		Schedule: schedule,
		config:   cfg,
		logger:   NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Registry == nil {
		e.Registry = DefaultRegistry(cfg)
	}
	return e
}

// Config returns the rules the engine was built with
func (e *Engine) Config() domain.EngineConfig {
	return e.config
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	e.logger = l
}

// CalculateTaxes computes every withholding category for one pay period.
// A nil profile yields an all-zero result.
func (e *Engine) CalculateTaxes(profile *domain.EmployeeTaxProfile, grossPay decimal.Decimal, payPeriod string) domain.TaxResult {
	if profile == nil {
		return domain.ZeroTaxResult()
	}
	if !IsKnownPeriod(payPeriod) {
		e.log().Debugf("employee %s: unrecognized pay period %q, using monthly", profile.EmployeeID, payPeriod)
	}

	in := TaxInput{
		Profile:        profile,
		GrossPay:       grossPay,
		AnnualGrossPay: Annualize(grossPay, payPeriod),
		PayPeriod:      payPeriod,
		Schedule:       e.Schedule,
		Config:         e.config,
	}

	result := domain.ZeroTaxResult()
	total := decimal.Zero
	for _, taxType := range domain.AllTaxTypes() {
		amount := e.periodTax(taxType, in).Round(2)
		total = total.Add(amount)
		switch taxType {
		case domain.TaxTypeFederal:
			result.FederalTax = amount
		case domain.TaxTypeState:
			result.StateTax = amount
		case domain.TaxTypeLocal:
			result.LocalTax = amount
		case domain.TaxTypeSocialSecurity:
			result.SocialSecurityTax = amount
		case domain.TaxTypeMedicare:
			result.MedicareTax = amount
		}
	}
	result.TotalTax = total

	e.log().Debugf("employee %s: gross %s %s (annual %s) -> total %s",
		profile.EmployeeID, grossPay.StringFixed(2), payPeriod, in.AnnualGrossPay.StringFixed(2), total.StringFixed(2))
	return result
}

// periodTax runs the registered formula for taxType, de-annualizing
// bracket-based amounts. Unregistered tax types contribute zero.
func (e *Engine) periodTax(taxType domain.TaxType, in TaxInput) decimal.Decimal {
	f, ok := e.Registry.Lookup(in.Profile.Country, taxType)
	if !ok {
		return decimal.Zero
	}
	amount := f.Compute(in)
	if f.Kind() == KindBracketBased {
		amount = Deannualize(amount, in.PayPeriod)
	}
	return amount
}

// ValidateGrossPay rejects negative gross pay at the engine boundary
func ValidateGrossPay(grossPay decimal.Decimal) error {
	if grossPay.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidGrossPay, grossPay)
	}
	return nil
}

// ParseGrossPay parses user-supplied gross pay text
func ParseGrossPay(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", ""))
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidGrossPay)
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidGrossPay, s)
	}
	if err := ValidateGrossPay(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// CheckSchedule validates every (country, tax type) list of a schedule and
// logs the ones that violate the evaluation precondition.
func (e *Engine) CheckSchedule(schedule *domain.BracketSchedule) error {
	var errs []error
	for _, key := range schedule.Keys() {
		if err := ValidateBrackets(schedule.Brackets(key.Country, key.TaxType)); err != nil {
			e.log().Warnf("%s %s brackets: %v", key.Country, key.TaxType, err)
			errs = append(errs, fmt.Errorf("%s %s: %w", key.Country, key.TaxType, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) log() Logger {
	if e.logger == nil {
		return NopLogger{}
	}
	return e.logger
}
