package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// ConsoleFormatter renders one table row per payslip
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

const (
	idWidth  = 12
	numWidth = 11
)

func (c ConsoleFormatter) Format(run *domain.PayrollRun) ([]byte, error) {
	var buf bytes.Buffer
	width := idWidth + 13 + numWidth*7 + 8

	fmt.Fprintln(&buf, "PAYROLL WITHHOLDING SUMMARY")
	fmt.Fprintln(&buf, strings.Repeat("=", width))
	fmt.Fprintf(&buf, "Run: %s   As of: %s   Payslips: %d\n\n", run.RunID, run.AsOf.Format("2006-01-02"), len(run.Entries))

	fmt.Fprintf(&buf, "%-*s %-12s %*s %*s %*s %*s %*s %*s %*s\n",
		idWidth, "Employee", "Period",
		numWidth, "Gross",
		numWidth, "Federal",
		numWidth, "State",
		numWidth, "Local",
		numWidth, "Soc Sec",
		numWidth, "Medicare",
		numWidth, "Total")
	fmt.Fprintln(&buf, strings.Repeat("-", width))

	for _, slip := range run.Entries {
		id := truncate(slip.EmployeeID, idWidth)
		if !slip.ProfileFound {
			id = truncate(slip.EmployeeID, idWidth-1) + "*"
		}
		writeRow(&buf, id, slip.PayPeriod, slip.GrossPay.StringFixed(2), slip.Result)
	}

	fmt.Fprintln(&buf, strings.Repeat("-", width))
	writeRow(&buf, "TOTAL", "", grossTotal(run).StringFixed(2), run.Totals)
	fmt.Fprintln(&buf, strings.Repeat("=", width))

	if missing := missingProfiles(run); missing > 0 {
		fmt.Fprintf(&buf, "* %d employee(s) without a tax profile; nothing withheld\n", missing)
	}
	return buf.Bytes(), nil
}

func writeRow(buf *bytes.Buffer, id, period, gross string, r domain.TaxResult) {
	fmt.Fprintf(buf, "%-*s %-12s %*s %*s %*s %*s %*s %*s %*s\n",
		idWidth, id, truncate(period, 12),
		numWidth, gross,
		numWidth, r.FederalTax.StringFixed(2),
		numWidth, r.StateTax.StringFixed(2),
		numWidth, r.LocalTax.StringFixed(2),
		numWidth, r.SocialSecurityTax.StringFixed(2),
		numWidth, r.MedicareTax.StringFixed(2),
		numWidth, r.TotalTax.StringFixed(2))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
