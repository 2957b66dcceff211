package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workflows holds the RED metrics for the fulfillment workflows.
type Workflows struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewWorkflows(reg prometheus.Registerer) *Workflows {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fulfillment",
		Name:      "workflow_requests_total",
		Help:      "Total number of workflow executions.",
	}, []string{"workflow", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fulfillment",
		Name:      "workflow_duration_seconds",
		Help:      "Duration of workflow execution in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"workflow"})

	reg.MustRegister(requests, duration)
	return &Workflows{Requests: requests, Duration: duration}
}

// Observe records one workflow execution.
func (w *Workflows) Observe(workflow, outcome string, seconds float64) {
	if w == nil {
		return
	}
	w.Requests.WithLabelValues(workflow, outcome).Inc()
	w.Duration.WithLabelValues(workflow).Observe(seconds)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
