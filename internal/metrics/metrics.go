package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the console.
type Metrics struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	WorkflowRuns    *prometheus.CounterVec
	DocumentsMade   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atendimento_backend_requests_total",
			Help: "Calls to the automation backend by action and outcome",
		}, []string{"action", "outcome"}),
		BackendLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atendimento_backend_request_duration_seconds",
			Help:    "Latency of automation backend calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"action"}),
		WorkflowRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atendimento_workflow_runs_total",
			Help: "Document generation runs by final state",
		}, []string{"state"}),
		DocumentsMade: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atendimento_documents_generated_total",
			Help: "Generated documents by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveBackend is safe on a nil receiver so callers can skip metrics.
func (m *Metrics) ObserveBackend(action, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(action, outcome).Inc()
	m.BackendLatency.WithLabelValues(action).Observe(seconds)
}

func (m *Metrics) ObserveRun(state string) {
	if m == nil {
		return
	}
	m.WorkflowRuns.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveDocument(ok bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	m.DocumentsMade.WithLabelValues(outcome).Inc()
}
