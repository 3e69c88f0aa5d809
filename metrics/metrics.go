package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts engine invocations by mode and outcome.
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_calculations_total",
			Help: "Interest calculations by mode and status",
		},
		[]string{"mode", "status"},
	)

	// CalculationPeriods observes how many periods each request segmented
	// into. Multi-year floating requests can span dozens.
	CalculationPeriods = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interest_calculation_periods",
			Help:    "Number of accrual periods per calculation",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100, 200},
		},
	)

	// ReportSections counts workbook section appends.
	ReportSections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_sections_total",
			Help: "Workbook sections appended by status",
		},
		[]string{"status"},
	)
)
