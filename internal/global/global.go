// Package global implements the top-level orchestrator (spec §4.5):
// it owns every SiteMonitor, polls their snapshots once a second, and
// coordinates shutdown and fatal-error propagation across the fleet.
package global

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
	"github.com/sitewatch/sitewatch/internal/monitor"
)

// pollInterval is the global monitor's own wake granularity; work
// (snapshot polling) is gated to once a second on top of it.
const pollInterval = 10 * time.Millisecond

const workGate = time.Second

// SnapshotConsumer receives the combined per-site metrics snapshot
// once a second (spec §4.5/§6's Snapshot API). Implemented by the UI
// and by nothing else in the core — the core only calls it.
type SnapshotConsumer interface {
	Consume(snapshots map[string]model.MetricsSnapshot)
}

// MetricConsumer receives each (site, window, aggregate) triple as it
// is read, for the formatted log and the optional Prometheus exporter.
type MetricConsumer interface {
	Consume(site string, agg model.Aggregate)
}

// Fatal is the shared cross-worker fatal flag (spec §5/§7): any
// worker may set it; the first observer initiates the shutdown
// cascade.
type Fatal struct {
	flag atomic.Bool
	err  atomic.Value // error
}

// Raise records err (if not already raised) and marks the flag set.
func (f *Fatal) Raise(err error) {
	if f.flag.CompareAndSwap(false, true) {
		f.err.Store(err)
	}
}

// Raised reports whether any worker has raised a fatal error.
func (f *Fatal) Raised() bool { return f.flag.Load() }

// Err returns the first fatal error raised, or nil.
func (f *Fatal) Err() error {
	v := f.err.Load()
	if v == nil {
		return nil
	}
	return v.(error)
}

// GlobalMonitor starts every SiteMonitor, polls their snapshots once a
// second, and hands the results to the UI and logging consumers.
type GlobalMonitor struct {
	monitors map[string]*monitor.SiteMonitor
	ui       SnapshotConsumer
	logSink  MetricConsumer

	fatal   *Fatal
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// New creates a GlobalMonitor for sites, reporting snapshots to ui and
// individual aggregates to logSink.
func New(sites []model.SiteConfig, ui SnapshotConsumer, logSink MetricConsumer, fatal *Fatal) *GlobalMonitor {
	monitors := make(map[string]*monitor.SiteMonitor, len(sites))
	for _, cfg := range sites {
		monitors[cfg.Name] = monitor.New(cfg)
	}
	return &GlobalMonitor{
		monitors: monitors,
		ui:       ui,
		logSink:  logSink,
		fatal:    fatal,
	}
}

// Monitors exposes the underlying per-site monitors, e.g. so a raw-log
// writer can range-query their stores.
func (g *GlobalMonitor) Monitors() map[string]*monitor.SiteMonitor { return g.monitors }

// Run starts every SiteMonitor and then polls their snapshots once a
// second until Stop is called or the fatal flag is observed set.
// Blocks until shutdown; callers typically invoke it in its own
// goroutine.
func (g *GlobalMonitor) Run() {
	for _, m := range g.monitors {
		m.Start()
	}

	lastPoll := time.Now()
	for !g.stopped.Load() {
		if g.fatal.Raised() {
			g.Stop()
			break
		}
		if time.Since(lastPoll) >= workGate {
			g.pollOnce()
			lastPoll = time.Now()
		}
		time.Sleep(pollInterval)
	}

	for _, m := range g.monitors {
		m.Stop()
	}
}

func (g *GlobalMonitor) pollOnce() {
	combined := make(map[string]model.MetricsSnapshot, len(g.monitors))
	for name, m := range g.monitors {
		snap := m.ReadMetrics()
		combined[name] = snap
		if g.logSink != nil {
			for _, agg := range snap {
				g.logSink.Consume(name, agg)
			}
		}
	}
	if g.ui != nil {
		g.ui.Consume(combined)
	}
}

// Stop requests every SiteMonitor, and this loop, to stop. Safe to
// call more than once or from multiple goroutines.
func (g *GlobalMonitor) Stop() {
	g.stopped.Store(true)
}
