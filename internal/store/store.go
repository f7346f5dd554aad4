// Package store persists tax brackets and employee withholding profiles and
// hands the engine an already-loaded bracket schedule.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// Store is the persistence contract shared by the memory and SQLite backends
type Store interface {
	SaveBracket(ctx context.Context, b domain.TaxBracket) error
	SaveProfile(ctx context.Context, p domain.EmployeeTaxProfile) error
	// Profile returns nil and no error when the employee has no profile
	Profile(ctx context.Context, employeeID string) (*domain.EmployeeTaxProfile, error)
	Profiles(ctx context.Context) ([]domain.EmployeeTaxProfile, error)
	ActiveBrackets(ctx context.Context, country string, taxType domain.TaxType, asOf time.Time) ([]domain.TaxBracket, error)
	LoadSchedule(ctx context.Context, asOf time.Time) (*domain.BracketSchedule, error)
	ImportConfiguration(ctx context.Context, cfg *domain.Configuration) (ImportStats, error)
}

// ImportStats counts the records written by ImportConfiguration
type ImportStats struct {
	Brackets int
	Profiles int
}

func (s ImportStats) String() string {
	return fmt.Sprintf("%d brackets, %d profiles", s.Brackets, s.Profiles)
}
