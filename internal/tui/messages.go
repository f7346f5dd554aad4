package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// ProfilesLoadedMsg carries the employee profiles read at startup
type ProfilesLoadedMsg struct {
	Profiles []domain.EmployeeTaxProfile
	Err      error
}

// loadProfilesCmd reads every profile from the source
func loadProfilesCmd(ctx context.Context, source ProfileLister) tea.Cmd {
	return func() tea.Msg {
		profiles, err := source.Profiles(ctx)
		return ProfilesLoadedMsg{Profiles: profiles, Err: err}
	}
}
