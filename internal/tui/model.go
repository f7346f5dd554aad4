package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
)

// ProfileLister supplies the profiles the explorer can pick from
type ProfileLister interface {
	Profiles(ctx context.Context) ([]domain.EmployeeTaxProfile, error)
}

// PayPeriods is the cycle order of the pay period selector
var PayPeriods = []string{"weekly", "bi-weekly", "semi-monthly", "monthly"}

const defaultPeriod = 3 // monthly

// Model is the withholding explorer state
type Model struct {
	ctx    context.Context
	engine *calculation.Engine
	source ProfileLister

	profiles []domain.EmployeeTaxProfile
	selected int
	period   int

	gross    textinput.Model
	grossPay decimal.Decimal
	inputErr error

	result domain.TaxResult

	keymap KeyMap
	help   help.Model

	width  int
	height int

	loading bool
	err     error
}

// NewModel creates an explorer over an engine and a profile source
func NewModel(ctx context.Context, engine *calculation.Engine, source ProfileLister) Model {
	gross := textinput.New()
	gross.Placeholder = "0.00"
	gross.Prompt = "$ "
	gross.CharLimit = 14
	gross.Width = 16
	gross.Focus()

	return Model{
		ctx:     ctx,
		engine:  engine,
		source:  source,
		period:  defaultPeriod,
		gross:   gross,
		result:  domain.ZeroTaxResult(),
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
		loading: source != nil,
	}
}

// Init starts the cursor blink and the profile load
func (m Model) Init() tea.Cmd {
	if m.source == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, loadProfilesCmd(m.ctx, m.source))
}

// SelectedProfile returns the highlighted profile, or nil when none are loaded
func (m Model) SelectedProfile() *domain.EmployeeTaxProfile {
	if m.selected < 0 || m.selected >= len(m.profiles) {
		return nil
	}
	p := m.profiles[m.selected]
	return &p
}

// PayPeriod returns the selected pay period label
func (m Model) PayPeriod() string {
	return PayPeriods[m.period]
}

// Result returns the breakdown for the current selection
func (m Model) Result() domain.TaxResult {
	return m.result
}

// InputErr returns the gross pay parse error, if any
func (m Model) InputErr() error {
	return m.inputErr
}

// recalculate parses the gross input and recomputes the breakdown. An empty
// input counts as zero.
func (m *Model) recalculate() {
	m.inputErr = nil
	m.grossPay = decimal.Zero
	if value := m.gross.Value(); value != "" {
		amount, err := calculation.ParseGrossPay(value)
		if err != nil {
			m.inputErr = err
			m.result = domain.ZeroTaxResult()
			return
		}
		m.grossPay = amount
	}

	if m.engine == nil {
		m.result = domain.ZeroTaxResult()
		return
	}
	m.result = m.engine.CalculateTaxes(m.SelectedProfile(), m.grossPay, m.PayPeriod())
}
