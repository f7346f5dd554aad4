package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/config"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/store"
	"github.com/rgehrsitz/paytax/internal/store/sqlite"
)

const dateLayout = "2006-01-02"

// sourceOptions selects where brackets, profiles and rules come from
type sourceOptions struct {
	configPath string
	sqlitePath string
	rulesPath  string
	asOf       string
}

func (s *sourceOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.configPath, "config", "c", "", "Payroll configuration file (YAML or JSON)")
	cmd.Flags().StringVar(&s.sqlitePath, "sqlite", "", "SQLite database holding brackets and profiles")
	cmd.Flags().StringVar(&s.rulesPath, "rules", "", "Tax rules file overriding the reference constants")
	cmd.Flags().StringVar(&s.asOf, "as-of", "", "Effective date for bracket selection (YYYY-MM-DD)")
}

// environment is the loaded state a command computes against. When a SQLite
// database is given it supplies brackets and profiles and the configuration
// file only contributes payroll entries and rules.
type environment struct {
	config   *domain.Configuration
	asOf     time.Time
	store    store.Store
	schedule *domain.BracketSchedule
	engine   *calculation.Engine
	closer   func() error
}

func (e *environment) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer()
}

func (s *sourceOptions) load(ctx context.Context, logger calculation.Logger) (*environment, error) {
	if s.configPath == "" && s.sqlitePath == "" {
		return nil, errors.New("a --config file or --sqlite database is required")
	}

	parser := config.NewInputParser()
	env := &environment{}

	if s.configPath != "" {
		cfg, err := parser.LoadFromFile(s.configPath)
		if err != nil {
			return nil, err
		}
		env.config = cfg
	}

	rules := env.config.EngineConfig()
	if s.rulesPath != "" {
		override, err := parser.LoadRulesFromFile(s.rulesPath)
		if err != nil {
			return nil, err
		}
		rules = override
	}

	asOf, err := s.effectiveDate(env.config)
	if err != nil {
		return nil, err
	}
	env.asOf = asOf

	if s.sqlitePath != "" {
		db, err := sqlite.New(s.sqlitePath)
		if err != nil {
			return nil, err
		}
		env.store = db
		env.closer = db.Close
	} else {
		env.store = store.NewMemoryStoreFromConfig(env.config)
	}

	schedule, err := env.store.LoadSchedule(ctx, env.asOf)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to load bracket schedule: %w", err)
	}
	env.schedule = schedule
	env.engine = calculation.NewEngine(schedule, rules, calculation.WithLogger(logger))

	if err := env.engine.CheckSchedule(schedule); err != nil {
		env.Close()
		return nil, fmt.Errorf("bracket schedule is invalid: %w", err)
	}

	logger.Debugf("loaded %d active brackets as of %s", schedule.Len(), env.asOf.Format(dateLayout))
	return env, nil
}

func (s *sourceOptions) effectiveDate(cfg *domain.Configuration) (time.Time, error) {
	if s.asOf == "" {
		return cfg.EffectiveDate(), nil
	}
	t, err := time.Parse(dateLayout, s.asOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q: expected YYYY-MM-DD", s.asOf)
	}
	return t, nil
}
