package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/paytax/internal/domain"
)

// CSVSummarizer writes one row per payslip followed by a TOTAL row
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(run *domain.PayrollRun) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"EmployeeID", "PayPeriod", "PeriodsPerYear", "GrossPay", "FederalTax", "StateTax", "LocalTax", "SocialSecurityTax", "MedicareTax", "TotalTax", "ProfileFound"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, slip := range run.Entries {
		row := append([]string{
			slip.EmployeeID,
			slip.PayPeriod,
			strconv.Itoa(slip.Multiplier),
			slip.GrossPay.StringFixed(2),
		}, amounts(slip.Result)...)
		row = append(row, strconv.FormatBool(slip.ProfileFound))
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	total := append([]string{"TOTAL", "", "", grossTotal(run).StringFixed(2)}, amounts(run.Totals)...)
	total = append(total, "")
	if err := w.Write(total); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func amounts(r domain.TaxResult) []string {
	return []string{
		r.FederalTax.StringFixed(2),
		r.StateTax.StringFixed(2),
		r.LocalTax.StringFixed(2),
		r.SocialSecurityTax.StringFixed(2),
		r.MedicareTax.StringFixed(2),
		r.TotalTax.StringFixed(2),
	}
}
