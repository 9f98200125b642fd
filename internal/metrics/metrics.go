// Package metrics instruments root-finding runs with Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rootfind/internal/rootfind"
)

// Metrics holds the run collectors. Sink adapts it to rootfind.Sink.
type Metrics struct {
	runs       *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	residual   *prometheus.GaugeVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootfind_runs_total",
				Help: "Completed method runs by outcome.",
			},
			[]string{"method", "status", "reason"},
		),
		iterations: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rootfind_run_iterations",
				Help:    "Iteration records emitted per run.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 500},
			},
			[]string{"method"},
		),
		residual: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rootfind_last_residual",
				Help: "Residual of the most recent iteration per method.",
			},
			[]string{"method"},
		),
	}
}

// Sink returns a sink recording the run of method m.
func (m *Metrics) Sink(method rootfind.Method) rootfind.Sink {
	return sink{m: m, method: string(method)}
}

type sink struct {
	m      *Metrics
	method string
}

func (s sink) Record(it rootfind.Iter) {
	s.m.residual.WithLabelValues(s.method).Set(it.Residual)
}

func (s sink) Finish(o rootfind.Outcome) {
	s.m.runs.WithLabelValues(s.method, o.Status.String(), o.Reason.String()).Inc()
	s.m.iterations.WithLabelValues(s.method).Observe(float64(o.Iterations))
}
