package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters/histograms for the contact pipeline.
type ContactMetrics struct {
	submissionsTotal *prometheus.CounterVec
	dispatchLatency  *prometheus.HistogramVec
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by terminal state",
		}, []string{"state"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "site",
			Subsystem: "contact",
			Name:      "dispatch_seconds",
			Help:      "Duration of SMTP delivery attempts",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.dispatchLatency)
	return m
}

func (m *ContactMetrics) ObserveSubmission(state string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(state).Inc()
}

func (m *ContactMetrics) ObserveDispatch(result string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(result).Observe(seconds)
}

// ContentMetrics counts content repository reads by how they were served.
type ContentMetrics struct {
	fetchTotal *prometheus.CounterVec
}

func NewContentMetrics(reg prometheus.Registerer) *ContentMetrics {
	m := &ContentMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "site",
			Subsystem: "content",
			Name:      "fetch_total",
			Help:      "Content reads by result (live, cache, fallback, error)",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal)
	return m
}

func (m *ContentMetrics) ObserveFetch(result string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(result).Inc()
}
