package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/output"
	"github.com/rgehrsitz/paytax/internal/payroll"
	"github.com/rgehrsitz/paytax/internal/store"
)

const adhocEmployeeID = "adhoc"

// profileFlags describe a profile given on the command line instead of a
// stored one
type profileFlags struct {
	country       string
	filingStatus  string
	allowances    int
	additional    string
	exemptFederal bool
	exemptState   bool
	exemptLocal   bool
}

func (p profileFlags) profile() (domain.EmployeeTaxProfile, error) {
	additional := decimal.Zero
	if p.additional != "" {
		amount, err := decimal.NewFromString(p.additional)
		if err != nil {
			return domain.EmployeeTaxProfile{}, fmt.Errorf("invalid --additional amount %q", p.additional)
		}
		additional = amount
	}
	if additional.IsNegative() {
		return domain.EmployeeTaxProfile{}, fmt.Errorf("--additional cannot be negative")
	}
	if p.allowances < 0 {
		return domain.EmployeeTaxProfile{}, fmt.Errorf("--allowances cannot be negative")
	}
	return domain.EmployeeTaxProfile{
		EmployeeID:            adhocEmployeeID,
		Country:               p.country,
		FilingStatus:          domain.FilingStatus(p.filingStatus),
		Allowances:            p.allowances,
		AdditionalWithholding: additional,
		ExemptFromFederal:     p.exemptFederal,
		ExemptFromState:       p.exemptState,
		ExemptFromLocal:       p.exemptLocal,
	}, nil
}

func calculateCmd(opts *globalOptions) *cobra.Command {
	var (
		sources  sourceOptions
		flags    profileFlags
		employee string
		gross    string
		period   string
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate withholding for one pay period",
		Long: "Calculate the withholding for a single gross payment. The employee profile\n" +
			"comes from --employee in the configuration or database, or is described\n" +
			"with the profile flags.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			grossPay, err := calculation.ParseGrossPay(gross)
			if err != nil {
				return err
			}

			env, err := sources.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer env.Close()

			var profiles payroll.ProfileSource = env.store
			employeeID := employee
			if employeeID == "" {
				profile, err := flags.profile()
				if err != nil {
					return err
				}
				adhoc := store.NewMemoryStore()
				if err := adhoc.SaveProfile(cmd.Context(), profile); err != nil {
					return err
				}
				profiles = adhoc
				employeeID = adhocEmployeeID
			}

			runner := payroll.NewRunner(env.engine, profiles)
			runner.Logger = logger
			runner.AsOf = env.asOf
			run, err := runner.Run(cmd.Context(), []domain.PayrollEntry{
				{EmployeeID: employeeID, GrossPay: grossPay, PayPeriod: period},
			})
			if err != nil {
				return err
			}
			run.Assumptions = output.Assumptions(env.engine.Config())

			return output.GenerateReport(cmd.OutOrStdout(), run, opts.format)
		},
	}

	sources.bind(cmd)
	cmd.Flags().StringVarP(&employee, "employee", "e", "", "Employee id to look up")
	cmd.Flags().StringVarP(&gross, "gross", "g", "", "Gross pay for the period")
	cmd.Flags().StringVarP(&period, "period", "p", "monthly", "Pay period (weekly, bi-weekly, semi-monthly, monthly)")
	cmd.Flags().StringVar(&flags.country, "country", "US", "Country for an ad hoc profile")
	cmd.Flags().StringVar(&flags.filingStatus, "filing-status", string(domain.FilingSingle), "Filing status for an ad hoc profile")
	cmd.Flags().IntVar(&flags.allowances, "allowances", 0, "Withholding allowances for an ad hoc profile")
	cmd.Flags().StringVar(&flags.additional, "additional", "", "Additional withholding per period for an ad hoc profile")
	cmd.Flags().BoolVar(&flags.exemptFederal, "exempt-federal", false, "Exempt the ad hoc profile from federal tax")
	cmd.Flags().BoolVar(&flags.exemptState, "exempt-state", false, "Exempt the ad hoc profile from state tax")
	cmd.Flags().BoolVar(&flags.exemptLocal, "exempt-local", false, "Exempt the ad hoc profile from local tax")
	_ = cmd.MarkFlagRequired("gross")

	return cmd
}
