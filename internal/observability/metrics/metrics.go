package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for assistant webhook dispatch.
type WebhookMetrics struct {
	callsTotal      *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
	tenantMisses    prometheus.Counter
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "webhook",
			Name:      "function_calls_total",
			Help:      "Total assistant function calls by name and outcome",
		}, []string{"function", "outcome"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "webhook",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency of one assistant function dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		tenantMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "webhook",
			Name:      "tenant_resolution_misses_total",
			Help:      "Webhook calls whose phone line mapped to no tenant",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.dispatchLatency, m.tenantMisses)
	return m
}

func (m *WebhookMetrics) ObserveCall(function, outcome string) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(function, outcome).Inc()
}

func (m *WebhookMetrics) ObserveDispatchLatency(function string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(function).Observe(seconds)
}

func (m *WebhookMetrics) ObserveTenantMiss() {
	if m == nil {
		return
	}
	m.tenantMisses.Inc()
}
