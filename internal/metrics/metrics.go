// Package metrics records payroll run counters in a Prometheus registry that
// the CLI can dump to a node_exporter textfile.
package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rgehrsitz/paytax/internal/domain"
)

const namespace = "paytax"

// Recorder collects per-run calculation metrics. A nil *Recorder discards
// every observation.
type Recorder struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	withheld     *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Payslip withholding calculations by country and whether a tax profile was found.",
		}, []string{"country", "profile_found"}),
		withheld: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withheld_amount_total",
			Help:      "Sum of per-period withholding by tax type.",
		}, []string{"tax_type"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent computing one payslip.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
	r.registry.MustRegister(r.calculations, r.withheld, r.duration)
	return r
}

// ObserveCalculation records one computed payslip
func (r *Recorder) ObserveCalculation(country string, profileFound bool, result domain.TaxResult, elapsed time.Duration) {
	if r == nil {
		return
	}
	if country == "" {
		country = "unknown"
	}
	r.calculations.WithLabelValues(strings.ToUpper(country), strconv.FormatBool(profileFound)).Inc()
	for _, taxType := range domain.AllTaxTypes() {
		r.withheld.WithLabelValues(string(taxType)).Add(result.Component(taxType).InexactFloat64())
	}
	r.duration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for gathering
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes the current metrics in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.Registry()); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
