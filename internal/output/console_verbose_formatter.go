package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/paytax/internal/calculation"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleVerboseFormatter renders a payslip-by-payslip breakdown
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(run *domain.PayrollRun) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 64))
	fmt.Fprintln(&buf, "PAYROLL WITHHOLDING DETAIL")
	fmt.Fprintln(&buf, strings.Repeat("=", 64))
	fmt.Fprintf(&buf, "Run ID: %s\n", run.RunID)
	fmt.Fprintf(&buf, "As of:  %s\n", run.AsOf.Format("2006-01-02"))
	fmt.Fprintln(&buf)

	if len(run.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range run.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	for i, slip := range run.Entries {
		fmt.Fprintf(&buf, "PAYSLIP %d: %s\n", i+1, slip.EmployeeID)
		fmt.Fprintln(&buf, strings.Repeat("-", 40))
		fmt.Fprintf(&buf, "  Pay Period:          %s (%d per year)\n", periodLabel(slip.PayPeriod), slip.Multiplier)
		fmt.Fprintf(&buf, "  Gross Pay:           %s\n", FormatCurrency(slip.GrossPay))
		fmt.Fprintf(&buf, "  Annualized Gross:    %s\n", FormatCurrency(calculation.Annualize(slip.GrossPay, slip.PayPeriod)))
		if !slip.ProfileFound {
			fmt.Fprintln(&buf, "  No tax profile on file; nothing withheld.")
			fmt.Fprintln(&buf)
			continue
		}
		writeBreakdown(&buf, slip.Result)
		fmt.Fprintf(&buf, "  Net Pay:             %s\n", FormatCurrency(slip.GrossPay.Sub(slip.Result.TotalTax)))
		if slip.GrossPay.IsPositive() {
			rate := slip.Result.TotalTax.Div(slip.GrossPay).Mul(decimal.NewFromInt(100))
			fmt.Fprintf(&buf, "  Effective Rate:      %s\n", FormatPercentage(rate))
		}
		fmt.Fprintln(&buf)
	}

	fmt.Fprintln(&buf, "RUN TOTALS")
	fmt.Fprintln(&buf, strings.Repeat("-", 40))
	fmt.Fprintf(&buf, "  Payslips:            %d\n", len(run.Entries))
	fmt.Fprintf(&buf, "  Gross Pay:           %s\n", FormatCurrency(grossTotal(run)))
	writeBreakdown(&buf, run.Totals)
	if missing := missingProfiles(run); missing > 0 {
		fmt.Fprintf(&buf, "  Missing Profiles:    %d\n", missing)
	}
	return buf.Bytes(), nil
}

func writeBreakdown(buf *bytes.Buffer, r domain.TaxResult) {
	fmt.Fprintf(buf, "  Federal Tax:         %s\n", FormatCurrency(r.FederalTax))
	fmt.Fprintf(buf, "  State Tax:           %s\n", FormatCurrency(r.StateTax))
	fmt.Fprintf(buf, "  Local Tax:           %s\n", FormatCurrency(r.LocalTax))
	fmt.Fprintf(buf, "  Social Security:     %s\n", FormatCurrency(r.SocialSecurityTax))
	fmt.Fprintf(buf, "  Medicare:            %s\n", FormatCurrency(r.MedicareTax))
	fmt.Fprintf(buf, "  TOTAL WITHHELD:      %s\n", FormatCurrency(r.TotalTax))
}

func periodLabel(payPeriod string) string {
	if calculation.IsKnownPeriod(payPeriod) {
		return payPeriod
	}
	if payPeriod == "" {
		return "monthly (default)"
	}
	return payPeriod + " (treated as monthly)"
}

func grossTotal(run *domain.PayrollRun) decimal.Decimal {
	total := decimal.Zero
	for _, slip := range run.Entries {
		total = total.Add(slip.GrossPay)
	}
	return total
}

func missingProfiles(run *domain.PayrollRun) int {
	n := 0
	for _, slip := range run.Entries {
		if !slip.ProfileFound {
			n++
		}
	}
	return n
}
