// Package scheduler implements the per-site probe scheduler (spec
// §4.3): fire one probe every interval, independent of probe latency,
// timing each fire from the previous dispatch instant.
package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/sitewatch/sitewatch/internal/probe"
	"github.com/sitewatch/sitewatch/internal/store"
)

// minWake is the floor on the scheduler's wake granularity.
const minWake = time.Millisecond

// ProbeScheduler fires a new Prober every Interval. Per spec §4.3 the
// next-fire deadline is computed from the dispatch instant itself
// (lastFire = now() at dispatch, so the next check is
// lastFire+interval) rather than accumulated across dispatches — a
// wake that comes late silently extends that period, and every later
// fire shifts with it, instead of the scheduler trying to "catch up". This trades rate accuracy for
// schedule stability, which the spec documents as the source's
// deliberate, if debatable, choice; we keep it as spec'd.
type ProbeScheduler struct {
	url      string
	interval time.Duration
	timeout  time.Duration
	store    *store.ResponseStore

	stopped atomic.Bool
}

// New creates a scheduler that dispatches Probers targeting url into s
// every interval, with the given per-probe timeout. Call Run to start
// it; Run blocks until Stop is observed, so callers typically invoke
// it in its own goroutine.
func New(url string, interval, timeout time.Duration, s *store.ResponseStore) *ProbeScheduler {
	return &ProbeScheduler{
		url:      url,
		interval: interval,
		timeout:  timeout,
		store:    s,
	}
}

// Run dispatches Probers every interval until Stop is called, then
// returns. It does not join or wait on in-flight probes — they keep
// running and deliver their result to the store on their own schedule.
func (s *ProbeScheduler) Run() {
	wake := s.interval / 1000
	if wake < minWake {
		wake = minWake
	}

	lastFire := time.Now()
	for !s.stopped.Load() {
		now := time.Now()
		if now.Sub(lastFire) >= s.interval {
			s.dispatch()
			lastFire = now
		}
		time.Sleep(wake)
	}
}

// dispatch launches one Prober as an independent goroutine so a slow
// probe never delays the next tick.
func (s *ProbeScheduler) dispatch() {
	go func() {
		p := &probe.Prober{URL: s.url, Timeout: s.timeout, Store: s.store}
		p.Run()
	}()
}

// Stop requests the scheduler issue no further probes. Already
// in-flight probes are allowed to complete and deliver their result.
func (s *ProbeScheduler) Stop() {
	s.stopped.Store(true)
}
