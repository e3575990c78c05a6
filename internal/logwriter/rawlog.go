// Package logwriter implements the two on-disk log writers spec'd in
// §4.6/§6: a raw per-probe log and a formatted, human-readable event
// log.
package logwriter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sitewatch/sitewatch/internal/monitor"
)

const rawWriteInterval = 10 * time.Second
const rawPollInterval = 10 * time.Millisecond
const rawDelay = 10 * time.Second

// RawLogWriter appends one line per probe result to
// <logsDir>/<name>_raw.txt every 10 seconds, for every monitored site.
type RawLogWriter struct {
	logsDir  string
	monitors map[string]*monitor.SiteMonitor

	cursor  time.Time
	stopped atomic.Bool
	onFatal func(error)
}

// New creates a RawLogWriter. onFatal is invoked (once) if opening or
// writing a log file fails — per spec §7, this is fatal to the writer
// and should trigger the shared fatal flag.
func New(logsDir string, monitors map[string]*monitor.SiteMonitor, onFatal func(error)) *RawLogWriter {
	return &RawLogWriter{
		logsDir:  logsDir,
		monitors: monitors,
		cursor:   time.Now(),
		onFatal:  onFatal,
	}
}

// Run appends raw log lines every 10 seconds until Stop is called.
// Blocks; callers typically invoke it in its own goroutine.
func (w *RawLogWriter) Run() {
	for !w.stopped.Load() {
		if time.Since(w.cursor) > rawWriteInterval {
			t := w.cursor
			now := time.Now()
			if err := w.flush(t); err != nil {
				if w.onFatal != nil {
					w.onFatal(err)
				}
				return
			}
			w.cursor = now
		}
		time.Sleep(rawPollInterval)
	}
}

// flush writes each site's probes in [t-10-delay, t-10] to its raw log.
func (w *RawLogWriter) flush(t time.Time) error {
	lo := t.Add(-rawDelay - rawDelay)
	hi := t.Add(-rawDelay)

	for name, m := range w.monitors {
		results := m.Store().Range(lo, hi)
		if len(results) == 0 {
			continue
		}
		path := filepath.Join(w.logsDir, name+"_raw.txt")
		if err := appendLines(path, func(buf *bufio.Writer) error {
			for _, r := range results {
				if _, err := fmt.Fprintf(buf, "%d %d %f\n", r.Start.Unix(), r.Status, r.Elapsed.Seconds()); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return fmt.Errorf("write raw log for %s: %w", name, err)
		}
	}
	return nil
}

// Stop requests the writer to stop after its current flush, if any.
func (w *RawLogWriter) Stop() {
	w.stopped.Store(true)
}

// appendLines opens path for append (creating it if needed) and calls
// fn with a buffered writer, flushing and closing before returning.
func appendLines(path string, fn func(*bufio.Writer) error) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	if err := fn(buf); err != nil {
		return err
	}
	return buf.Flush()
}
