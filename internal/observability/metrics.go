package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Draw outcomes recorded by Metrics.ObserveDraw.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeDepthExceeded = "depth_exceeded"
	OutcomeError         = "error"
)

// Metrics holds the draw service collectors on a private registry.
type Metrics struct {
	Registry    *prometheus.Registry
	Draws       *prometheus.CounterVec
	Passes      prometheus.Histogram
	Diagnostics prometheus.Counter
	Duration    *prometheus.HistogramVec
}

// NewMetrics registers the deckdraw collectors, plus Go and process
// collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Draws: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deckdraw_draws_total",
			Help: "Top-level draws by outcome.",
		}, []string{"outcome"}),
		Passes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deckdraw_resolution_passes",
			Help:    "Reference resolution passes per request.",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
		Diagnostics: f.NewCounter(prometheus.CounterOpts{
			Name: "deckdraw_diagnostics_total",
			Help: "Inline diagnostics emitted for missing or empty collections.",
		}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name: "deckdraw_rpc_seconds",
			Help: "Time spent serving each draw service method.",
		}, []string{"method"}),
	}
}

// ObserveDraw records one top-level draw.
func (m *Metrics) ObserveDraw(outcome string, passes, diagnostics int) {
	m.Draws.WithLabelValues(outcome).Inc()
	m.ObserveResolve(passes, diagnostics)
}

// ObserveResolve records the work of one resolution.
func (m *Metrics) ObserveResolve(passes, diagnostics int) {
	m.Passes.Observe(float64(passes))
	m.Diagnostics.Add(float64(diagnostics))
}

// Since records the time elapsed for method.
func (m *Metrics) Since(method string, start time.Time) {
	m.Duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
