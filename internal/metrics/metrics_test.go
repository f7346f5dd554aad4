package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rgehrsitz/paytax/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result() domain.TaxResult {
	return domain.TaxResult{
		FederalTax:        decimal.RequireFromString("1932.33"),
		StateTax:          decimal.NewFromInt(620),
		LocalTax:          decimal.Zero,
		SocialSecurityTax: decimal.Zero,
		MedicareTax:       decimal.NewFromInt(145),
		TotalTax:          decimal.RequireFromString("2697.33"),
	}
}

func TestRecorder_ObserveCalculation(t *testing.T) {
	r := NewRecorder()

	r.ObserveCalculation("us", true, result(), 2*time.Millisecond)
	r.ObserveCalculation("US", true, result(), time.Millisecond)
	r.ObserveCalculation("US", false, domain.ZeroTaxResult(), time.Microsecond)
	r.ObserveCalculation("", false, domain.ZeroTaxResult(), time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calculations.WithLabelValues("US", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calculations.WithLabelValues("US", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calculations.WithLabelValues("UNKNOWN", "false")))
	assert.InDelta(t, 3864.66, testutil.ToFloat64(r.withheld.WithLabelValues("federal")), 0.001)
	assert.InDelta(t, 290.0, testutil.ToFloat64(r.withheld.WithLabelValues("medicare")), 0.001)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.withheld.WithLabelValues("local")))

	count, err := testutil.GatherAndCount(r.Registry(), "paytax_calculation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveCalculation("US", true, result(), time.Millisecond)

	path := filepath.Join(t.TempDir(), "paytax.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `paytax_calculations_total{country="US",profile_found="true"} 1`)
	assert.Contains(t, content, `paytax_withheld_amount_total{tax_type="state"} 620`)
	assert.Contains(t, content, "paytax_calculation_duration_seconds_count 1")
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.ObserveCalculation("US", true, result(), time.Millisecond)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}
