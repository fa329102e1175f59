package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for dispatched calls.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the dispatcher collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fleamarket_client_requests_total",
			Help: "Backend calls by method and outcome (ok, transport, application, unauthorized)",
		}, []string{"method", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleamarket_client_request_duration_seconds",
			Help:    "Round-trip duration of backend calls",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}
}

func (m *Metrics) observe(method string, f *Failure, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if f != nil {
		outcome = f.Kind.String()
	}
	m.Requests.WithLabelValues(method, outcome).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
