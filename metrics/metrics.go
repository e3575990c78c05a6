// Package metrics exposes sitewatch's per-site aggregates as
// Prometheus gauges. Entirely optional: the core engine's behavior is
// unaffected by whether an Exporter exists or is ever updated.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitewatch/sitewatch/internal/model"
)

// Exporter implements global.MetricConsumer, feeding each
// (site, window, aggregate) triple into a small set of gauges keyed by
// site name.
type Exporter struct {
	registry *prometheus.Registry

	availability *prometheus.GaugeVec
	avgResponse  *prometheus.GaugeVec
	maxResponse  *prometheus.GaugeVec
	unavailable  *prometheus.GaugeVec
	probeCodes   *prometheus.GaugeVec
}

// New creates an Exporter with its own registry, so it never collides
// with Go-runtime default-registry metrics another package might add.
func New() *Exporter {
	reg := prometheus.NewRegistry()

	e := &Exporter{
		registry: reg,
		availability: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitewatch_availability",
			Help: "Fraction of probes with status < 400 over the last 120s window.",
		}, []string{"site"}),
		avgResponse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitewatch_avg_response_seconds",
			Help: "Average probe response time over the window's lookback.",
		}, []string{"site", "window"}),
		maxResponse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitewatch_max_response_seconds",
			Help: "Maximum probe response time over the window's lookback.",
		}, []string{"site", "window"}),
		unavailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitewatch_unavailable",
			Help: "1 if the site is currently considered down (availability < 0.8), else 0.",
		}, []string{"site"}),
		probeCodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sitewatch_probe_codes",
			Help: "Count of each HTTP status code within the window's current lookback range. Not cumulative: each recompute replaces the prior value for the window's overlapping range.",
		}, []string{"site", "window", "code"}),
	}

	reg.MustRegister(e.availability, e.avgResponse, e.maxResponse, e.unavailable, e.probeCodes)
	return e
}

// Consume updates the exporter's gauges from one aggregate. Every
// field here is a snapshot over the window's current lookback range,
// not a running total, since the aggregates themselves are recomputed
// from scratch (not accumulated) each recompute cycle.
func (e *Exporter) Consume(site string, agg model.Aggregate) {
	switch agg.Window {
	case model.Window120s:
		e.availability.WithLabelValues(site).Set(agg.Availability)
		down := 0.0
		if agg.UnavailableSince != nil {
			down = 1.0
		}
		e.unavailable.WithLabelValues(site).Set(down)
	default:
		w := agg.Window.String()
		e.avgResponse.WithLabelValues(site, w).Set(agg.AvgElapsed.Seconds())
		e.maxResponse.WithLabelValues(site, w).Set(agg.MaxElapsed.Seconds())
		for code, count := range agg.Codes {
			e.probeCodes.WithLabelValues(site, w, strconv.Itoa(int(code))).Set(float64(count))
		}
	}
}

// Handler returns the /metrics HTTP handler for this exporter.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr. Runs until
// the server errors; callers typically invoke it in its own goroutine
// and log the result.
func (e *Exporter) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	return http.ListenAndServe(addr, mux)
}
