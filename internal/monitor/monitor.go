// Package monitor implements the per-site aggregation engine (spec
// §4.4): it owns one ResponseStore and ProbeScheduler, recomputes the
// 10s/60s/120s window aggregates on their own cadences, runs the
// outage/recovery state machine off the 120s window, and publishes
// read-once metric snapshots.
package monitor

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
	"github.com/sitewatch/sitewatch/internal/scheduler"
	"github.com/sitewatch/sitewatch/internal/store"
)

// pollInterval bounds how often the monitor loop re-checks its three
// window deadlines.
const pollInterval = 10 * time.Millisecond

// availabilityThreshold is the outage/recovery boundary (θ in the
// spec): availability below this over a 120s window means down.
const availabilityThreshold = 0.8

var allWindows = [3]model.Window{model.Window10s, model.Window60s, model.Window120s}

// SiteMonitor owns one site's ResponseStore, ProbeScheduler, window
// aggregates, and outage state.
type SiteMonitor struct {
	Name string

	cfg   model.SiteConfig
	store *store.ResponseStore
	sched *scheduler.ProbeScheduler

	mu         sync.Mutex
	lastUpdate map[model.Window]time.Time
	aggregate  map[model.Window]model.Aggregate
	unread     map[model.Window]bool

	unavailableSince *time.Time
	recoveredAt      *time.Time

	stopped atomic.Bool
}

// New creates a SiteMonitor for cfg, owning a freshly sized
// ResponseStore and a ProbeScheduler targeting cfg.URL.
func New(cfg model.SiteConfig) *SiteMonitor {
	s := store.New(cfg.StoreCapacity())
	now := time.Now()
	return &SiteMonitor{
		Name:  cfg.Name,
		cfg:   cfg,
		store: s,
		sched: scheduler.New(cfg.URL, cfg.Interval, cfg.Timeout, s),
		lastUpdate: map[model.Window]time.Time{
			model.Window10s:  now,
			model.Window60s:  now,
			model.Window120s: now,
		},
		aggregate: make(map[model.Window]model.Aggregate),
		unread: map[model.Window]bool{
			model.Window10s:  false,
			model.Window60s:  false,
			model.Window120s: false,
		},
	}
}

// Store exposes the underlying ResponseStore for the raw-log writer.
func (m *SiteMonitor) Store() *store.ResponseStore { return m.store }

// Start launches the scheduler and the aggregation loop, both as
// background goroutines. Returns immediately.
func (m *SiteMonitor) Start() {
	go m.sched.Run()
	go m.run()
}

// Stop requests the scheduler and aggregation loop to stop. In-flight
// probes are allowed to complete.
func (m *SiteMonitor) Stop() {
	m.sched.Stop()
	m.stopped.Store(true)
}

func (m *SiteMonitor) run() {
	for !m.stopped.Load() {
		now := time.Now()
		if now.Sub(m.lastUpdateOf(model.Window10s)) >= model.Window10s.Delay() {
			m.updateWindow(model.Window10s)
		}
		if now.Sub(m.lastUpdateOf(model.Window60s)) >= model.Window60s.Delay() {
			m.updateWindow(model.Window60s)
		}
		if now.Sub(m.lastUpdateOf(model.Window120s)) >= model.Window120s.Delay() {
			m.updateAvailability()
		}
		time.Sleep(pollInterval)
	}
}

func (m *SiteMonitor) lastUpdateOf(w model.Window) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdate[w]
}

// windowRange computes the [lo, hi] query range for recomputing window
// w, given its last recompute instant. The window ends Timeout in the
// past so any probe still in flight has either completed or already
// been classified as a 408 (spec §4.4).
func (m *SiteMonitor) windowRange(w model.Window, last time.Time) (lo, hi time.Time) {
	hi = last.Add(w.Delay() - m.cfg.Timeout)
	lo = hi.Add(-w.Lookback())
	return lo, hi
}

// updateWindow recomputes the codes/avg/max aggregate for the 10s or
// 60s window. A no-op (including not advancing last_update) if the
// range is empty.
func (m *SiteMonitor) updateWindow(w model.Window) {
	last := m.lastUpdateOf(w)
	lo, hi := m.windowRange(w, last)
	results := m.store.Range(lo, hi)
	if len(results) == 0 {
		return
	}

	var maxElapsed time.Duration
	var totalElapsed time.Duration
	codes := make(map[int16]int)
	for _, r := range results {
		codes[r.Status]++
		if r.Elapsed > maxElapsed {
			maxElapsed = r.Elapsed
		}
		totalElapsed += r.Elapsed
	}
	avgElapsed := totalElapsed / time.Duration(len(results))

	now := time.Now()
	m.mu.Lock()
	m.lastUpdate[w] = now
	m.aggregate[w] = model.Aggregate{
		Window:     w,
		LastUpdate: now,
		AvgElapsed: avgElapsed,
		MaxElapsed: maxElapsed,
		Codes:      codes,
		Unread:     true,
	}
	m.unread[w] = true
	m.mu.Unlock()
}

// updateAvailability recomputes the 120s window and drives the outage
// state machine. A no-op if the range is empty.
func (m *SiteMonitor) updateAvailability() {
	w := model.Window120s
	last := m.lastUpdateOf(w)
	lo, hi := m.windowRange(w, last)
	results := m.store.Range(lo, hi)
	if len(results) == 0 {
		return
	}

	okCount := 0
	for _, r := range results {
		if r.Status < 400 {
			okCount++
		}
	}
	availability := float64(okCount) / float64(len(results))

	now := time.Now()
	backdated := now.Add(-120 * time.Second)

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case availability >= availabilityThreshold && m.unavailableSince != nil:
		m.unavailableSince = nil
		m.recoveredAt = &backdated
	case availability < availabilityThreshold && m.recoveredAt != nil:
		m.unavailableSince = &backdated
		m.recoveredAt = nil
	case availability < availabilityThreshold && m.unavailableSince == nil && m.recoveredAt == nil:
		m.unavailableSince = &backdated
	}

	m.lastUpdate[w] = now
	agg := model.Aggregate{
		Window:       w,
		LastUpdate:   now,
		Availability: availability,
		Unread:       true,
	}
	if m.unavailableSince != nil {
		since := *m.unavailableSince
		agg.UnavailableSince = &since
	}
	if m.recoveredAt != nil {
		at := *m.recoveredAt
		agg.RecoveredAt = &at
	}
	m.aggregate[w] = agg
	m.unread[w] = true
}

// ReadMetrics returns every unread aggregate, ordered by LastUpdate
// ascending, and atomically clears their unread flags. Two consecutive
// calls with no intervening update return the same list the first
// time and an empty list the second.
func (m *SiteMonitor) ReadMetrics() model.MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out model.MetricsSnapshot
	for _, w := range allWindows {
		if m.unread[w] {
			out = append(out, m.aggregate[w])
			m.unread[w] = false
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdate.Before(out[j].LastUpdate)
	})
	return out
}
