// Package payroll computes withholding for a batch of payroll entries.
package payroll

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/metrics"
)

// ProfileSource looks up employee withholding profiles. It returns nil and no
// error for an unknown employee.
type ProfileSource interface {
	Profile(ctx context.Context, employeeID string) (*domain.EmployeeTaxProfile, error)
}

// Runner computes a payroll batch on a bounded worker pool
type Runner struct {
	Engine   *calculation.Engine
	Profiles ProfileSource
	Workers  int
	Logger   calculation.Logger
	Metrics  *metrics.Recorder
	// AsOf stamps the run; zero means the time Run is called
	AsOf time.Time
}

// NewRunner creates a runner with one worker per CPU
func NewRunner(engine *calculation.Engine, profiles ProfileSource) *Runner {
	return &Runner{
		Engine:   engine,
		Profiles: profiles,
		Workers:  runtime.GOMAXPROCS(0),
		Logger:   calculation.NopLogger{},
	}
}

// Run computes every entry and returns the payslips in input order with
// their totals. Entries without a profile produce a zero row. The first
// lookup error cancels the remaining work.
func (r *Runner) Run(ctx context.Context, entries []domain.PayrollEntry) (*domain.PayrollRun, error) {
	if r.Engine == nil {
		return nil, fmt.Errorf("payroll runner has no engine")
	}
	if r.Profiles == nil {
		return nil, fmt.Errorf("payroll runner has no profile source")
	}
	for i, e := range entries {
		if err := calculation.ValidateGrossPay(e.GrossPay); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.EmployeeID, err)
		}
	}

	log := r.log()
	runID := uuid.NewString()
	log.Infof("payroll run %s: computing %d entries with %d workers", runID, len(entries), r.workers())

	payslips := make([]domain.PayslipTaxes, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for i, entry := range entries {
		idx, e := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slip, err := r.compute(ctx, e)
			if err != nil {
				return fmt.Errorf("entry %d (%s): %w", idx, e.EmployeeID, err)
			}
			payslips[idx] = slip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorf("payroll run %s failed: %v", runID, err)
		return nil, err
	}

	totals := domain.ZeroTaxResult()
	for _, slip := range payslips {
		totals = totals.Add(slip.Result)
	}

	log.Infof("payroll run %s: total withheld %s", runID, totals.TotalTax.StringFixed(2))
	return &domain.PayrollRun{
		RunID:   runID,
		AsOf:    r.asOf(),
		Entries: payslips,
		Totals:  totals,
	}, nil
}

func (r *Runner) compute(ctx context.Context, e domain.PayrollEntry) (domain.PayslipTaxes, error) {
	start := time.Now()
	profile, err := r.Profiles.Profile(ctx, e.EmployeeID)
	if err != nil {
		return domain.PayslipTaxes{}, fmt.Errorf("failed to load profile: %w", err)
	}

	slip := domain.PayslipTaxes{
		EmployeeID:   e.EmployeeID,
		GrossPay:     e.GrossPay,
		PayPeriod:    e.PayPeriod,
		Multiplier:   calculation.PeriodMultiplier(e.PayPeriod),
		ProfileFound: profile != nil,
	}
	country := ""
	if profile == nil {
		r.log().Warnf("no tax profile for employee %s; withholding nothing", e.EmployeeID)
	} else {
		country = profile.Country
	}
	slip.Result = r.Engine.CalculateTaxes(profile, e.GrossPay, e.PayPeriod)

	r.Metrics.ObserveCalculation(country, slip.ProfileFound, slip.Result, time.Since(start))
	return slip, nil
}

func (r *Runner) workers() int {
	if r.Workers < 1 {
		return 1
	}
	return r.Workers
}

func (r *Runner) log() calculation.Logger {
	if r.Logger == nil {
		return calculation.NopLogger{}
	}
	return r.Logger
}

func (r *Runner) asOf() time.Time {
	if r.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return r.AsOf
}
