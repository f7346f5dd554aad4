package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/config"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/store/sqlite"
)

func validateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a payroll configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			sources := sourceOptions{configPath: args[0]}
			env, err := sources.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer env.Close()

			cfg := env.config
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %d brackets (%d active as of %s), %d profiles, %d payroll entries\n",
				len(cfg.Brackets), env.schedule.Len(), env.asOf.Format(dateLayout), len(cfg.Profiles), len(cfg.Payroll))
			return nil
		},
	}
}

func bracketsCmd(opts *globalOptions) *cobra.Command {
	var sources sourceOptions

	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "List the bracket schedule in force on the effective date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			env, err := sources.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer env.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Active brackets as of %s\n", env.asOf.Format(dateLayout))
			if countries := env.engine.Registry.Countries(); len(countries) > 0 {
				fmt.Fprintf(out, "Social security and medicare withheld for: %s\n", strings.Join(countries, ", "))
			}
			if env.schedule.Len() == 0 {
				fmt.Fprintln(out, "No active brackets.")
				return nil
			}
			fmt.Fprintln(out, scheduleTable(env.schedule).Render())
			return nil
		},
	}

	sources.bind(cmd)
	return cmd
}

func scheduleTable(schedule *domain.BracketSchedule) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COUNTRY", "TAX TYPE", "MIN INCOME", "MAX INCOME", "RATE", "FIXED", "EFFECTIVE", "ENDS")

	for _, key := range schedule.Keys() {
		for _, b := range schedule.Brackets(key.Country, key.TaxType) {
			maxIncome := "-"
			if b.MaxIncome != nil {
				maxIncome = b.MaxIncome.StringFixed(2)
			}
			fixed := "-"
			if b.FixedAmount != nil {
				fixed = b.FixedAmount.StringFixed(2)
			}
			effective := "-"
			if !b.EffectiveDate.IsZero() {
				effective = b.EffectiveDate.Format(dateLayout)
			}
			ends := "-"
			if b.EndDate != nil {
				ends = b.EndDate.Format(dateLayout)
			}
			t.Row(key.Country, string(key.TaxType), b.MinIncome.StringFixed(2), maxIncome,
				b.TaxRate.StringFixed(2)+"%", fixed, effective, ends)
		}
	}
	return t
}

func importCmd(opts *globalOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import [config-file]",
		Short: "Import brackets and profiles from a configuration file into SQLite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("--sqlite is required")
			}
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			db, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.ImportConfiguration(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logger.Debugf("imported %s into %s", stats, dbPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s\n", stats, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "sqlite", "", "SQLite database to import into")
	return cmd
}
