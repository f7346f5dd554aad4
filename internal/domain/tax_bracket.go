package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxType identifies a category of withholding tax
type TaxType string

const (
	TaxTypeFederal        TaxType = "federal"
	TaxTypeState          TaxType = "state"
	TaxTypeLocal          TaxType = "local"
	TaxTypeSocialSecurity TaxType = "social_security"
	TaxTypeMedicare       TaxType = "medicare"
)

// AllTaxTypes returns every tax type in aggregation order
func AllTaxTypes() []TaxType {
	return []TaxType{TaxTypeFederal, TaxTypeState, TaxTypeLocal, TaxTypeSocialSecurity, TaxTypeMedicare}
}

// Valid reports whether t is one of the known tax types
func (t TaxType) Valid() bool {
	for _, known := range AllTaxTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TaxBracket is one income band of a jurisdiction's progressive schedule.
// A nil MaxIncome means the band is unbounded.
type TaxBracket struct {
	Country       string           `yaml:"country" json:"country"`
	TaxType       TaxType          `yaml:"tax_type" json:"tax_type"`
	MinIncome     decimal.Decimal  `yaml:"min_income" json:"min_income"`
	MaxIncome     *decimal.Decimal `yaml:"max_income,omitempty" json:"max_income,omitempty"`
	TaxRate       decimal.Decimal  `yaml:"tax_rate" json:"tax_rate"` // percent
	FixedAmount   *decimal.Decimal `yaml:"fixed_amount,omitempty" json:"fixed_amount,omitempty"`
	EffectiveDate time.Time        `yaml:"effective_date" json:"effective_date"`
	EndDate       *time.Time       `yaml:"end_date,omitempty" json:"end_date,omitempty"`
	IsActive      bool             `yaml:"is_active" json:"is_active"`
}

// Width returns the size of the band. bounded is false for an open-ended band.
func (b TaxBracket) Width() (width decimal.Decimal, bounded bool) {
	if b.MaxIncome == nil {
		return decimal.Zero, false
	}
	return b.MaxIncome.Sub(b.MinIncome), true
}

// ActiveOn reports whether the bracket is in force at t
func (b TaxBracket) ActiveOn(t time.Time) bool {
	if !b.IsActive {
		return false
	}
	if !b.EffectiveDate.IsZero() && b.EffectiveDate.After(t) {
		return false
	}
	if b.EndDate != nil && b.EndDate.Before(t) {
		return false
	}
	return true
}

// ScheduleKey identifies one bracket list within a schedule
type ScheduleKey struct {
	Country string
	TaxType TaxType
}

func newScheduleKey(country string, taxType TaxType) ScheduleKey {
	return ScheduleKey{Country: strings.ToUpper(strings.TrimSpace(country)), TaxType: taxType}
}

// BracketSchedule holds already-loaded active brackets grouped by country and
// tax type, each list sorted by MinIncome.
type BracketSchedule struct {
	AsOf     time.Time
	brackets map[ScheduleKey][]TaxBracket
}

// NewBracketSchedule keeps the brackets in force at asOf
func NewBracketSchedule(brackets []TaxBracket, asOf time.Time) *BracketSchedule {
	s := &BracketSchedule{AsOf: asOf, brackets: make(map[ScheduleKey][]TaxBracket)}
	for _, b := range brackets {
		if !b.ActiveOn(asOf) {
			continue
		}
		key := newScheduleKey(b.Country, b.TaxType)
		s.brackets[key] = append(s.brackets[key], b)
	}
	for key := range s.brackets {
		list := s.brackets[key]
		sort.SliceStable(list, func(i, j int) bool { return list[i].MinIncome.LessThan(list[j].MinIncome) })
	}
	return s
}

// Brackets returns a copy of the active brackets for country and taxType
func (s *BracketSchedule) Brackets(country string, taxType TaxType) []TaxBracket {
	if s == nil {
		return nil
	}
	list := s.brackets[newScheduleKey(country, taxType)]
	if len(list) == 0 {
		return nil
	}
	return append([]TaxBracket(nil), list...)
}

// Keys lists populated schedule keys ordered by country then tax type
func (s *BracketSchedule) Keys() []ScheduleKey {
	if s == nil {
		return nil
	}
	keys := make([]ScheduleKey, 0, len(s.brackets))
	for k := range s.brackets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].TaxType < keys[j].TaxType
	})
	return keys
}

// Len returns the total number of active brackets
func (s *BracketSchedule) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, list := range s.brackets {
		n += len(list)
	}
	return n
}
