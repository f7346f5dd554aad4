package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/paytax/internal/tui"
)

func exploreCmd(opts *globalOptions) *cobra.Command {
	var sources sourceOptions

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore withholding interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// log lines would corrupt the alternate screen
			logger, err := opts.logger(io.Discard)
			if err != nil {
				return err
			}

			env, err := sources.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer env.Close()

			model := tui.NewModel(cmd.Context(), env.engine, env.store)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	sources.bind(cmd)
	return cmd
}
