package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for triage, alerting and narratives.
type PipelineMetrics struct {
	classifications *prometheus.CounterVec
	gateTrips       prometheus.Counter
	alerts          *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	narratives      *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	ingested        *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "triage",
			Name:      "classifications_total",
			Help:      "Latest-sample classifications by resulting status",
		}, []string{"status"}),
		gateTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "triage",
			Name:      "alert_gate_trips_total",
			Help:      "Samples that crossed the alert gate",
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "alerts",
			Name:      "dispatch_total",
			Help:      "Emergency alert dispatch attempts",
		}, []string{"result"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "alerts",
			Name:      "deliveries_total",
			Help:      "Individual notification deliveries",
		}, []string{"channel", "role", "status"}),
		narratives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "narrative",
			Name:      "summaries_total",
			Help:      "Generated summaries by source",
		}, []string{"source"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vitalwatch",
			Subsystem: "narrative",
			Name:      "llm_latency_seconds",
			Help:      "Latency of remote text generation calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitalwatch",
			Subsystem: "ingest",
			Name:      "events_total",
			Help:      "Vitals ingestion events handled",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.classifications, m.gateTrips, m.alerts, m.deliveries, m.narratives, m.llmLatency, m.ingested)
	return m
}

func (m *PipelineMetrics) ObserveClassification(status string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(status).Inc()
}

func (m *PipelineMetrics) ObserveGateTrip() {
	if m == nil {
		return
	}
	m.gateTrips.Inc()
}

// ObserveAlert records a dispatch result: "sent", "partial", "failed" or "suppressed".
func (m *PipelineMetrics) ObserveAlert(result string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) ObserveDelivery(channel, role string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.deliveries.WithLabelValues(channel, role, status).Inc()
}

func (m *PipelineMetrics) ObserveNarrative(source string) {
	if m == nil {
		return
	}
	m.narratives.WithLabelValues(source).Inc()
}

func (m *PipelineMetrics) ObserveLLMLatency(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *PipelineMetrics) ObserveIngest(status string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(status).Inc()
}
