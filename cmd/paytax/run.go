package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/logging"
	"github.com/rgehrsitz/paytax/internal/metrics"
	"github.com/rgehrsitz/paytax/internal/output"
	"github.com/rgehrsitz/paytax/internal/payroll"
)

func runCmd(opts *globalOptions) *cobra.Command {
	var (
		sources     sourceOptions
		workers     int
		metricsFile string
		saveFile    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute withholding for a payroll batch",
		Long: "Compute withholding for every payroll entry of a configuration file.\n" +
			"Entries whose employee has no profile are reported with nothing withheld.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sources.configPath == "" {
				return errors.New("--config is required: payroll entries are read from the configuration file")
			}
			logger, err := opts.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			env, err := sources.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer env.Close()

			recorder := metrics.NewRecorder()
			runner := payroll.NewRunner(env.engine, env.store)
			runner.Logger = logger
			runner.Metrics = recorder
			runner.AsOf = env.asOf
			if workers > 0 {
				runner.Workers = workers
			}

			run, err := runner.Run(cmd.Context(), env.config.Payroll)
			if err != nil {
				logger.Error("payroll run failed", err, logging.Int("entries", len(env.config.Payroll)))
				return err
			}
			run.Assumptions = output.Assumptions(env.engine.Config())

			runLog := logger.With(logging.String("run_id", run.RunID))
			runLog.Info("payroll run complete",
				logging.Int("payslips", len(run.Entries)),
				logging.String("total_withheld", run.Totals.TotalTax.StringFixed(2)),
			)

			if metricsFile != "" {
				if err := recorder.WriteTextfile(metricsFile); err != nil {
					return err
				}
				logger.Debugf("metrics written to %s", metricsFile)
			}

			if saveFile {
				f := output.GetFormatterByName(opts.format)
				if f == nil {
					return fmt.Errorf("unsupported format: %s (available: %s)", opts.format, strings.Join(output.AvailableFormatterNames(), ", "))
				}
				filename, err := output.WriteFormatted(f, run, extensionFor(f.Name()))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			return output.GenerateReport(cmd.OutOrStdout(), run, opts.format)
		},
	}

	sources.bind(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent calculations (default: one per CPU)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
	cmd.Flags().BoolVar(&saveFile, "save", false, "Write the report to a timestamped file instead of stdout")

	return cmd
}

func extensionFor(formatter string) string {
	switch formatter {
	case "console", "console-lite":
		return "txt"
	default:
		return formatter
	}
}
