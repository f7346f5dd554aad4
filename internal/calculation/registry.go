package calculation

import (
	"sort"
	"strings"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// AnyCountry registers a formula for every country without its own entry
const AnyCountry = "*"

type registryKey struct {
	country string
	taxType domain.TaxType
}

// Registry maps (country, tax type) to the formula that computes it
type Registry struct {
	formulas map[registryKey]Formula
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formulas: make(map[registryKey]Formula)}
}

// DefaultRegistry registers bracket-based federal, state and local taxes for
// every country, and social security and medicare for the US only. The
// fixed-rate formulas copy their rates from cfg.
func DefaultRegistry(cfg domain.EngineConfig) *Registry {
	r := NewRegistry()
	r.Register(AnyCountry, domain.TaxTypeFederal, BracketBased{TaxType: domain.TaxTypeFederal})
	r.Register(AnyCountry, domain.TaxTypeState, BracketBased{TaxType: domain.TaxTypeState})
	r.Register(AnyCountry, domain.TaxTypeLocal, BracketBased{TaxType: domain.TaxTypeLocal})
	r.Register("US", domain.TaxTypeSocialSecurity, SocialSecurityFormula(cfg.SocialSecurity))
	r.Register("US", domain.TaxTypeMedicare, MedicareFormula(cfg.Medicare))
	return r
}

// Register sets the formula for country and taxType, replacing any previous one
func (r *Registry) Register(country string, taxType domain.TaxType, f Formula) {
	r.formulas[registryKey{country: normalizeCountry(country), taxType: taxType}] = f
}

// Lookup returns the formula for country, falling back to AnyCountry.
// Countries match case-insensitively, the same way the bracket schedule keys
// them, so a profile's "us" gets the US formulas and the US brackets.
func (r *Registry) Lookup(country string, taxType domain.TaxType) (Formula, bool) {
	if r == nil {
		return nil, false
	}
	if f, ok := r.formulas[registryKey{country: normalizeCountry(country), taxType: taxType}]; ok {
		return f, true
	}
	f, ok := r.formulas[registryKey{country: AnyCountry, taxType: taxType}]
	return f, ok
}

// Countries lists the explicitly registered countries
func (r *Registry) Countries() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]bool)
	for k := range r.formulas {
		if k.country != AnyCountry {
			seen[k.country] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
