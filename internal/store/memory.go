package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// MemoryStore keeps brackets and profiles in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	brackets []domain.TaxBracket
	profiles map[string]domain.EmployeeTaxProfile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]domain.EmployeeTaxProfile)}
}

// NewMemoryStoreFromConfig creates a store holding the brackets and profiles
// of a loaded configuration file.
func NewMemoryStoreFromConfig(cfg *domain.Configuration) *MemoryStore {
	s := NewMemoryStore()
	if cfg == nil {
		return s
	}
	s.brackets = append(s.brackets, cfg.Brackets...)
	for _, p := range cfg.Profiles {
		s.profiles[p.EmployeeID] = p
	}
	return s
}

func (s *MemoryStore) SaveBracket(_ context.Context, b domain.TaxBracket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brackets = append(s.brackets, b)
	return nil
}

// SaveProfile inserts or replaces the profile for p.EmployeeID
func (s *MemoryStore) SaveProfile(_ context.Context, p domain.EmployeeTaxProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.EmployeeID] = p
	return nil
}

func (s *MemoryStore) Profile(_ context.Context, employeeID string) (*domain.EmployeeTaxProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[employeeID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Profiles returns every profile ordered by employee id
func (s *MemoryStore) Profiles(_ context.Context) ([]domain.EmployeeTaxProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EmployeeTaxProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *MemoryStore) ActiveBrackets(_ context.Context, country string, taxType domain.TaxType, asOf time.Time) ([]domain.TaxBracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TaxBracket
	for _, b := range s.brackets {
		if b.TaxType == taxType && strings.EqualFold(strings.TrimSpace(b.Country), strings.TrimSpace(country)) && b.ActiveOn(asOf) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinIncome.LessThan(out[j].MinIncome) })
	return out, nil
}

func (s *MemoryStore) LoadSchedule(_ context.Context, asOf time.Time) (*domain.BracketSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.NewBracketSchedule(s.brackets, asOf), nil
}

func (s *MemoryStore) ImportConfiguration(ctx context.Context, cfg *domain.Configuration) (ImportStats, error) {
	var stats ImportStats
	if cfg == nil {
		return stats, nil
	}
	for _, b := range cfg.Brackets {
		if err := s.SaveBracket(ctx, b); err != nil {
			return stats, err
		}
		stats.Brackets++
	}
	for _, p := range cfg.Profiles {
		if err := s.SaveProfile(ctx, p); err != nil {
			return stats, err
		}
		stats.Profiles++
	}
	return stats, nil
}
