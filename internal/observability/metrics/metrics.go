package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClientMetrics exposes counters/histograms for calls to the hospital API.
type ClientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Total hospital API requests by operation and outcome",
		}, []string{"operation", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hospital",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of hospital API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestDuration)
	return m
}

// ObserveRequest records one finished API call.
func (m *ClientMetrics) ObserveRequest(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(seconds)
}

// BookingMetrics counts booking attempts by how they ended.
type BookingMetrics struct {
	outcomesTotal *prometheus.CounterVec
	orphanedTotal prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "booking",
			Name:      "outcomes_total",
			Help:      "Booking submissions by outcome and the step that decided it",
		}, []string{"outcome", "step"}),
		orphanedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "booking",
			Name:      "orphaned_patients_total",
			Help:      "Patients created whose appointment could not be booked",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.outcomesTotal, m.orphanedTotal)
	return m
}

func (m *BookingMetrics) ObserveOutcome(outcome, step string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome, step).Inc()
}

func (m *BookingMetrics) ObserveOrphanedPatient() {
	if m == nil {
		return
	}
	m.orphanedTotal.Inc()
}
