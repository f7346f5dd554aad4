package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/store"
)

type brokenLister struct{}

func (brokenLister) Profiles(context.Context) ([]domain.EmployeeTaxProfile, error) {
	return nil, errors.New("database is locked")
}

func testProfiles() *store.MemoryStore {
	return store.NewMemoryStoreFromConfig(&domain.Configuration{
		Profiles: []domain.EmployeeTaxProfile{
			{EmployeeID: "E-1", Country: "US", FilingStatus: domain.FilingSingle},
			{EmployeeID: "E-2", Country: "US", FilingStatus: domain.FilingMarriedJoint, ExemptFromState: true},
		},
	})
}

func testEngine() *calculation.Engine {
	schedule := domain.NewBracketSchedule([]domain.TaxBracket{
		{Country: "US", TaxType: domain.TaxTypeState, MinIncome: decimal.Zero, TaxRate: decimal.NewFromInt(5), IsActive: true},
	}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	return calculation.NewEngine(schedule, domain.DefaultEngineConfig())
}

// loadedModel returns a model that has received its profiles
func loadedModel(t *testing.T) Model {
	t.Helper()
	source := testProfiles()
	m := NewModel(context.Background(), testEngine(), source)

	msg := loadProfilesCmd(context.Background(), source)()
	loaded, ok := msg.(ProfilesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.Err)

	return update(t, m, loaded)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"NextProfile", km.NextProfile},
		{"PrevProfile", km.PrevProfile},
		{"NextPeriod", km.NextPeriod},
		{"PrevPeriod", km.PrevPeriod},
		{"Help", km.Help},
		{"Quit", km.Quit},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			assert.True(t, b.binding.Enabled())
			assert.NotEmpty(t, b.binding.Keys())
			assert.NotEmpty(t, b.binding.Help().Desc)
		})
	}

	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Len(t, km.ShortHelp(), 4)
	assert.Len(t, km.FullHelp(), 3)
}

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(context.Background(), testEngine(), testProfiles())

	assert.Equal(t, "monthly", m.PayPeriod())
	assert.Nil(t, m.SelectedProfile())
	assert.True(t, m.Result().TotalTax.IsZero())
	assert.Contains(t, m.View(), "Loading employee profiles")
	assert.NotNil(t, m.Init())
}

func TestLoadProfilesCmd(t *testing.T) {
	msg := loadProfilesCmd(context.Background(), testProfiles())()

	loaded, ok := msg.(ProfilesLoadedMsg)
	require.True(t, ok)
	require.Len(t, loaded.Profiles, 2)
	assert.Equal(t, "E-1", loaded.Profiles[0].EmployeeID)
}

func TestUpdate_ProfilesLoaded(t *testing.T) {
	m := loadedModel(t)

	require.NotNil(t, m.SelectedProfile())
	assert.Equal(t, "E-1", m.SelectedProfile().EmployeeID)
	assert.True(t, m.Result().TotalTax.IsZero(), "empty input computes as zero")
	assert.NoError(t, m.InputErr())

	view := m.View()
	assert.Contains(t, view, "PAYTAX WITHHOLDING EXPLORER")
	assert.Contains(t, view, "E-1 (US, single)")
	assert.Contains(t, view, "E-2 (US, married joint)")
}

func TestUpdate_ProfilesLoadError(t *testing.T) {
	m := NewModel(context.Background(), testEngine(), brokenLister{})

	m = update(t, m, loadProfilesCmd(context.Background(), brokenLister{})())

	assert.Contains(t, m.View(), "database is locked")
}

func TestUpdate_TypingGrossRecalculates(t *testing.T) {
	m := typeText(t, loadedModel(t), "6000")

	result := m.Result()
	assert.Equal(t, "0.00", result.FederalTax.StringFixed(2))
	assert.Equal(t, "300.00", result.StateTax.StringFixed(2))
	assert.Equal(t, "372.00", result.SocialSecurityTax.StringFixed(2))
	assert.Equal(t, "87.00", result.MedicareTax.StringFixed(2))
	assert.Equal(t, "759.00", result.TotalTax.StringFixed(2))

	view := m.View()
	assert.Contains(t, view, "$759.00")
	assert.Contains(t, view, "$5241.00", "net pay")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "30.00", m.Result().StateTax.StringFixed(2), "600 monthly")
}

func TestUpdate_InvalidGross(t *testing.T) {
	m := typeText(t, loadedModel(t), "12x")

	require.Error(t, m.InputErr())
	assert.ErrorIs(t, m.InputErr(), calculation.ErrInvalidGrossPay)
	assert.True(t, m.Result().TotalTax.IsZero())
	assert.Contains(t, m.View(), "invalid gross pay")
}

func TestUpdate_ProfileNavigation(t *testing.T) {
	m := typeText(t, loadedModel(t), "6000")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, "E-2", m.SelectedProfile().EmployeeID)
	assert.True(t, m.Result().StateTax.IsZero(), "E-2 is exempt from state tax")
	assert.Equal(t, "459.00", m.Result().TotalTax.StringFixed(2))

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "E-1", m.SelectedProfile().EmployeeID, "wraps around")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "E-2", m.SelectedProfile().EmployeeID, "wraps backwards")
}

func TestUpdate_PeriodCycle(t *testing.T) {
	m := typeText(t, loadedModel(t), "6000")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "weekly", m.PayPeriod(), "monthly wraps to weekly")
	assert.Equal(t, "300.00", m.Result().StateTax.StringFixed(2), "flat state rate is period independent")
	assert.True(t, m.Result().SocialSecurityTax.IsZero(), "annualized weekly pay is above the wage base")
	assert.Contains(t, m.View(), "weekly (52 per year)")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "semi-monthly", m.PayPeriod())
	assert.Equal(t, "372.00", m.Result().SocialSecurityTax.StringFixed(2))
}

func TestUpdate_HelpAndQuit(t *testing.T) {
	m := loadedModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	assert.True(t, m.help.ShowAll)
	assert.Empty(t, m.gross.Value(), "help key is not typed into the input")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdate_WindowSize(t *testing.T) {
	m := update(t, loadedModel(t), tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 120, m.help.Width)
}

func TestUpdate_NoProfiles(t *testing.T) {
	m := update(t, NewModel(context.Background(), testEngine(), nil), ProfilesLoadedMsg{})
	m = typeText(t, m, "500")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	assert.Nil(t, m.SelectedProfile())
	assert.True(t, m.Result().TotalTax.IsZero(), "no profile withholds nothing")
	assert.Contains(t, m.View(), "no profiles loaded")
}
