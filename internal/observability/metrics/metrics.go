package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for triage pipeline runs.
type PipelineMetrics struct {
	runsTotal        *prometheus.CounterVec
	stageLatency     *prometheus.HistogramVec
	escalationsTotal *prometheus.CounterVec
	ordersTotal      prometheus.Counter
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total pipeline runs",
		}, []string{"status"}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "pipeline",
			Name:      "stage_latency_seconds",
			Help:      "Latency of individual pipeline stages",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "pipeline",
			Name:      "escalations_total",
			Help:      "Total escalation decisions",
		}, []string{"needed"}),
		ordersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "orders",
			Name:      "confirmations_total",
			Help:      "Total confirmed orders",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.stageLatency, m.escalationsTotal, m.ordersTotal)
	return m
}

func (m *PipelineMetrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

func (m *PipelineMetrics) ObserveStageLatency(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(seconds)
}

func (m *PipelineMetrics) ObserveEscalation(needed bool) {
	if m == nil {
		return
	}
	label := "false"
	if needed {
		label = "true"
	}
	m.escalationsTotal.WithLabelValues(label).Inc()
}

func (m *PipelineMetrics) ObserveOrderConfirmed() {
	if m == nil {
		return
	}
	m.ordersTotal.Inc()
}
