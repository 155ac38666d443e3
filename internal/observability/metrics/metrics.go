package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "availability"

// AvailabilityMetrics exposes counters/histograms for availability decisions.
type AvailabilityMetrics struct {
	checksTotal     *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	evaluation      *prometheus.HistogramVec
}

// NewAvailabilityMetrics registers the collectors on reg, or the default registerer when nil.
func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Total reservation checks by outcome",
		}, []string{"result"}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Total rejection reasons reported by reservation checks",
		}, []string{"reason"}),
		evaluation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_seconds",
			Help:      "Latency of availability evaluations including snapshot loading",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checksTotal, m.rejectionsTotal, m.evaluation)
	return m
}

// ObserveCheck counts one reservation check; reasons are counted individually.
func (m *AvailabilityMetrics) ObserveCheck(reservable bool, reasons []string) {
	if m == nil {
		return
	}
	result := "rejected"
	if reservable {
		result = "reservable"
	}
	m.checksTotal.WithLabelValues(result).Inc()
	for _, reason := range reasons {
		m.rejectionsTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveEvaluation records how long one operation took, in seconds.
func (m *AvailabilityMetrics) ObserveEvaluation(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.evaluation.WithLabelValues(operation).Observe(seconds)
}
