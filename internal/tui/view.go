package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/rgehrsitz/paytax/internal/output"
)

// View renders the explorer
func (m Model) View() string {
	if m.err != nil {
		return AppStyle.Render(ErrorStyle.Render("Error: "+m.err.Error()) + "\n\nPress q to quit.")
	}
	if m.loading {
		return AppStyle.Render("Loading employee profiles...")
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("PAYTAX WITHHOLDING EXPLORER"),
		SubtitleStyle.Render("Pick an employee, a pay period and a gross amount"),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Render(m.renderProfiles()),
		PanelStyle.Render(m.renderBreakdown()),
	)

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		m.help.View(m.keymap),
	))
}

func (m Model) renderProfiles() string {
	var b strings.Builder
	b.WriteString("Employees\n\n")
	if len(m.profiles) == 0 {
		b.WriteString(SubtitleStyle.Render("no profiles loaded"))
		return b.String()
	}
	for i, p := range m.profiles {
		line := fmt.Sprintf("%s (%s, %s)", p.EmployeeID, p.Country, filingLabel(p.FilingStatus))
		if i == m.selected {
			b.WriteString(SelectedItemStyle.Render("> " + line))
		} else {
			b.WriteString(UnselectedItemStyle.Render("  " + line))
		}
		if i < len(m.profiles)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderBreakdown() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Pay Period: %s (%d per year)\n", m.PayPeriod(), calculation.PeriodMultiplier(m.PayPeriod())))
	b.WriteString("Gross Pay:  " + m.gross.View() + "\n")
	if m.inputErr != nil {
		b.WriteString(ErrorStyle.Render(m.inputErr.Error()) + "\n")
	}
	b.WriteString("\n")

	for _, tt := range domain.AllTaxTypes() {
		b.WriteString(metricRow(taxTypeLabel(tt), m.result.Component(tt), MetricValueStyle))
	}
	b.WriteString(metricRow("Total Withheld", m.result.TotalTax, TotalValueStyle))
	b.WriteString(metricRow("Net Pay", m.grossPay.Sub(m.result.TotalTax), TotalValueStyle))
	return strings.TrimRight(b.String(), "\n")
}

func metricRow(label string, amount decimal.Decimal, style lipgloss.Style) string {
	return MetricLabelStyle.Render(label) + style.Render(output.FormatCurrency(amount)) + "\n"
}

func taxTypeLabel(tt domain.TaxType) string {
	switch tt {
	case domain.TaxTypeFederal:
		return "Federal"
	case domain.TaxTypeState:
		return "State"
	case domain.TaxTypeLocal:
		return "Local"
	case domain.TaxTypeSocialSecurity:
		return "Social Security"
	case domain.TaxTypeMedicare:
		return "Medicare"
	default:
		return string(tt)
	}
}

func filingLabel(status domain.FilingStatus) string {
	if status == "" {
		return "default"
	}
	return strings.ReplaceAll(string(status), "_", " ")
}
