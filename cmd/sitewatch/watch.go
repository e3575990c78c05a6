package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

// watchPrinter implements global.SnapshotConsumer for -ui=watch: a
// plain-text refresh printed to stdout once a second, for
// non-interactive terminals and CI logs where a fullscreen TUI isn't
// usable. MetricsSnapshot only carries aggregates that changed since
// the last poll, so the printer remembers the latest 120s/10s
// aggregate per site and reprints the full table every tick.
type watchPrinter struct {
	latest map[string]map[model.Window]model.Aggregate
}

func (w *watchPrinter) Consume(snapshots map[string]model.MetricsSnapshot) {
	if w.latest == nil {
		w.latest = make(map[string]map[model.Window]model.Aggregate)
	}
	for name, snap := range snapshots {
		windows, ok := w.latest[name]
		if !ok {
			windows = make(map[model.Window]model.Aggregate)
			w.latest[name] = windows
		}
		for _, agg := range snap {
			windows[agg.Window] = agg
		}
	}

	names := make([]string, 0, len(w.latest))
	for name := range w.latest {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("--- %s ---\n", time.Now().Format(time.RFC3339))
	for _, name := range names {
		windows := w.latest[name]
		avail, ok := windows[model.Window120s]
		if !ok {
			fmt.Printf("%-20s pending\n", name)
			continue
		}
		status := "up"
		if avail.UnavailableSince != nil {
			status = "DOWN"
		}
		latency := ""
		if agg10, ok := windows[model.Window10s]; ok {
			latency = fmt.Sprintf(" avg=%s max=%s", agg10.AvgElapsed.Round(time.Millisecond), agg10.MaxElapsed.Round(time.Millisecond))
		}
		fmt.Printf("%-20s %-5s availability=%.1f%%%s\n", name, status, avail.Availability*100, latency)
	}
}
