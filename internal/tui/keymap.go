package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the explorer key bindings
type KeyMap struct {
	NextProfile key.Binding
	PrevProfile key.Binding
	NextPeriod  key.Binding
	PrevPeriod  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default bindings. Letters other than q are left
// free so they reach the gross pay input.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextProfile: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next employee"),
		),
		PrevProfile: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous employee"),
		),
		NextPeriod: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pay period"),
		),
		PrevPeriod: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous pay period"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextProfile, k.NextPeriod, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextProfile, k.PrevProfile},
		{k.NextPeriod, k.PrevPeriod},
		{k.Help, k.Quit},
	}
}
