/*
Package sqlite provides a SQLite-backed implementation of store.Store.

Tables:

	tax_brackets: progressive bands keyed by country, tax type, effective date
	              and minimum income
	tax_profiles: one withholding profile per employee

Money and rates are stored as TEXT through decimal.Decimal's driver.Valuer so
no precision is lost. Dates are RFC3339 strings in UTC, which keeps string
comparison equal to chronological comparison.

The schema is migrated on New. Use ":memory:" for a throwaway database.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/store"
)

// Store implements store.Store using SQLite
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Store = (*Store)(nil)

// New opens or creates the database at dbPath and migrates the schema
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tax_brackets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		country TEXT NOT NULL,
		tax_type TEXT NOT NULL,
		min_income TEXT NOT NULL,
		max_income TEXT,
		tax_rate TEXT NOT NULL,
		fixed_amount TEXT,
		effective_date TEXT NOT NULL,
		end_date TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		UNIQUE(country, tax_type, effective_date, min_income)
	);

	CREATE INDEX IF NOT EXISTS idx_tax_brackets_lookup
		ON tax_brackets(country, tax_type, is_active, effective_date);

	CREATE TABLE IF NOT EXISTS tax_profiles (
		employee_id TEXT PRIMARY KEY,
		country TEXT NOT NULL,
		filing_status TEXT NOT NULL,
		allowances INTEGER NOT NULL DEFAULT 0,
		additional_withholding TEXT NOT NULL DEFAULT '0',
		exempt_from_federal INTEGER NOT NULL DEFAULT 0,
		exempt_from_state INTEGER NOT NULL DEFAULT 0,
		exempt_from_local INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveBracket inserts a bracket, replacing one with the same country, tax
// type, effective date and minimum income.
func (s *Store) SaveBracket(ctx context.Context, b domain.TaxBracket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBracket(ctx, s.db, b)
}

func saveBracket(ctx context.Context, db execer, b domain.TaxBracket) error {
	query := `
		INSERT INTO tax_brackets
		(country, tax_type, min_income, max_income, tax_rate, fixed_amount,
		 effective_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(country, tax_type, effective_date, min_income) DO UPDATE SET
			max_income = excluded.max_income,
			tax_rate = excluded.tax_rate,
			fixed_amount = excluded.fixed_amount,
			end_date = excluded.end_date,
			is_active = excluded.is_active
	`
	_, err := db.ExecContext(ctx, query,
		normalizeCountry(b.Country),
		string(b.TaxType),
		b.MinIncome,
		nullDecimal(b.MaxIncome),
		b.TaxRate,
		nullDecimal(b.FixedAmount),
		formatTime(b.EffectiveDate),
		nullTime(b.EndDate),
		b.IsActive,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s %s bracket at %s: %w", b.Country, b.TaxType, b.MinIncome, err)
	}
	return nil
}

// SaveProfile inserts or replaces the profile for p.EmployeeID
func (s *Store) SaveProfile(ctx context.Context, p domain.EmployeeTaxProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProfile(ctx, s.db, p)
}

func saveProfile(ctx context.Context, db execer, p domain.EmployeeTaxProfile) error {
	query := `
		INSERT INTO tax_profiles
		(employee_id, country, filing_status, allowances, additional_withholding,
		 exempt_from_federal, exempt_from_state, exempt_from_local, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			country = excluded.country,
			filing_status = excluded.filing_status,
			allowances = excluded.allowances,
			additional_withholding = excluded.additional_withholding,
			exempt_from_federal = excluded.exempt_from_federal,
			exempt_from_state = excluded.exempt_from_state,
			exempt_from_local = excluded.exempt_from_local,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query,
		p.EmployeeID,
		normalizeCountry(p.Country),
		string(p.FilingStatus),
		p.Allowances,
		p.AdditionalWithholding,
		p.ExemptFromFederal,
		p.ExemptFromState,
		p.ExemptFromLocal,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.EmployeeID, err)
	}
	return nil
}

const profileColumns = `employee_id, country, filing_status, allowances, additional_withholding,
		exempt_from_federal, exempt_from_state, exempt_from_local`

// Profile returns nil and no error when the employee has no stored profile
func (s *Store) Profile(ctx context.Context, employeeID string) (*domain.EmployeeTaxProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM tax_profiles WHERE employee_id = ?", employeeID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", employeeID, err)
	}
	return p, nil
}

// Profiles returns every stored profile ordered by employee id
func (s *Store) Profiles(ctx context.Context) ([]domain.EmployeeTaxProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+profileColumns+" FROM tax_profiles ORDER BY employee_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []domain.EmployeeTaxProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*domain.EmployeeTaxProfile, error) {
	var (
		p      domain.EmployeeTaxProfile
		status string
	)
	err := row.Scan(
		&p.EmployeeID,
		&p.Country,
		&status,
		&p.Allowances,
		&p.AdditionalWithholding,
		&p.ExemptFromFederal,
		&p.ExemptFromState,
		&p.ExemptFromLocal,
	)
	if err != nil {
		return nil, err
	}
	p.FilingStatus = domain.FilingStatus(status)
	return &p, nil
}

const bracketColumns = `country, tax_type, min_income, max_income, tax_rate, fixed_amount,
		effective_date, end_date, is_active`

// ActiveBrackets returns the brackets of one country and tax type in force at
// asOf, ordered by minimum income.
func (s *Store) ActiveBrackets(ctx context.Context, country string, taxType domain.TaxType, asOf time.Time) ([]domain.TaxBracket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at := formatTime(asOf)
	query := `
		SELECT ` + bracketColumns + `
		FROM tax_brackets
		WHERE country = ? AND tax_type = ? AND is_active = 1
		  AND effective_date <= ?
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY CAST(min_income AS REAL) ASC, id ASC
	`
	return s.queryBrackets(ctx, query, normalizeCountry(country), string(taxType), at, at)
}

// LoadSchedule loads every bracket in force at asOf into a schedule
func (s *Store) LoadSchedule(ctx context.Context, asOf time.Time) (*domain.BracketSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	at := formatTime(asOf)
	query := `
		SELECT ` + bracketColumns + `
		FROM tax_brackets
		WHERE is_active = 1
		  AND effective_date <= ?
		  AND (end_date IS NULL OR end_date >= ?)
		ORDER BY country, tax_type, CAST(min_income AS REAL) ASC, id ASC
	`
	brackets, err := s.queryBrackets(ctx, query, at, at)
	if err != nil {
		return nil, err
	}
	return domain.NewBracketSchedule(brackets, asOf), nil
}

func (s *Store) queryBrackets(ctx context.Context, query string, args ...any) ([]domain.TaxBracket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets: %w", err)
	}
	defer rows.Close()

	var out []domain.TaxBracket
	for rows.Next() {
		var (
			b           domain.TaxBracket
			taxType     string
			maxIncome   decimal.NullDecimal
			fixedAmount decimal.NullDecimal
			effective   string
			end         sql.NullString
		)
		if err := rows.Scan(
			&b.Country,
			&taxType,
			&b.MinIncome,
			&maxIncome,
			&b.TaxRate,
			&fixedAmount,
			&effective,
			&end,
			&b.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bracket: %w", err)
		}
		b.TaxType = domain.TaxType(taxType)
		if maxIncome.Valid {
			b.MaxIncome = &maxIncome.Decimal
		}
		if fixedAmount.Valid {
			b.FixedAmount = &fixedAmount.Decimal
		}
		if b.EffectiveDate, err = parseTime(effective); err != nil {
			return nil, err
		}
		if end.Valid {
			t, err := parseTime(end.String)
			if err != nil {
				return nil, err
			}
			b.EndDate = &t
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ImportConfiguration writes every bracket and profile of cfg in a single
// transaction.
func (s *Store) ImportConfiguration(ctx context.Context, cfg *domain.Configuration) (store.ImportStats, error) {
	var stats store.ImportStats
	if cfg == nil {
		return stats, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, b := range cfg.Brackets {
		if err := saveBracket(ctx, tx, b); err != nil {
			return store.ImportStats{}, err
		}
		stats.Brackets++
	}
	for _, p := range cfg.Profiles {
		if err := saveProfile(ctx, tx, p); err != nil {
			return store.ImportStats{}, err
		}
		stats.Profiles++
	}

	if err := tx.Commit(); err != nil {
		return store.ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return stats, nil
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", s, err)
	}
	return t, nil
}
