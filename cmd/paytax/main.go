package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions holds the persistent root flags
type globalOptions struct {
	debug     bool
	logFormat string
	format    string
}

func (o *globalOptions) logger(w io.Writer) (*logging.ZerologAdapter, error) {
	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(w, "paytax", format, o.debug), nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "paytax",
		Short: "Payroll withholding calculator CLI",
		Long: "Computes per-period federal, state, local, social security and medicare\n" +
			"withholding from progressive bracket schedules and employee tax profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format (console, json)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "console", "Output format (console, console-lite, csv, json, yaml, html)")

	root.AddCommand(
		calculateCmd(opts),
		runCmd(opts),
		validateCmd(opts),
		bracketsCmd(opts),
		importCmd(opts),
		exploreCmd(opts),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "paytax %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
