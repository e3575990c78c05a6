package logwriter

import (
	"bufio"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

// FormattedLogWriter implements global.MetricConsumer: it renders each
// (site, window, aggregate) triple into the human-readable event log
// format spec'd in §6 and appends it to
// <logsDir>/<name>_<interval-without-dot>.txt.
type FormattedLogWriter struct {
	logsDir   string
	intervals map[string]string // site name -> interval-without-dot suffix

	mu      sync.Mutex
	onError func(error)
}

// NewFormatted creates a FormattedLogWriter. intervalSuffix maps each
// site name to its interval string with the decimal point stripped
// (e.g. "0.5" -> "05"), matching the log file naming in spec §6.
func NewFormatted(logsDir string, intervalSuffix map[string]string, onError func(error)) *FormattedLogWriter {
	return &FormattedLogWriter{
		logsDir:   logsDir,
		intervals: intervalSuffix,
		onError:   onError,
	}
}

// Consume formats and appends one aggregate's log lines.
func (w *FormattedLogWriter) Consume(site string, agg model.Aggregate) {
	w.mu.Lock()
	defer w.mu.Unlock()

	suffix := w.intervals[site]
	path := filepath.Join(w.logsDir, site+"_"+suffix+".txt")

	if err := appendLines(path, func(buf *bufio.Writer) error {
		_, err := buf.WriteString(formatAggregate(agg))
		return err
	}); err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("write formatted log for %s: %w", site, err))
		}
	}
}

// formatAggregate renders one aggregate's lines, matching spec §6
// exactly.
func formatAggregate(agg model.Aggregate) string {
	ts := utcStamp(agg.LastUpdate)
	var b strings.Builder

	if agg.Window == model.Window120s {
		fmt.Fprintf(&b, "[%s] Website availability is %.0f%%\n", ts, 100*agg.Availability)
		if agg.UnavailableSince != nil {
			fmt.Fprintf(&b, "[%s] Website is unavailable since %s\n", ts, utcStamp(*agg.UnavailableSince))
		} else if agg.RecoveredAt != nil {
			fmt.Fprintf(&b, "[%s] Website recovered at %s\n", ts, utcStamp(*agg.RecoveredAt))
		}
		return b.String()
	}

	w := agg.Window.ReportSeconds()
	fmt.Fprintf(&b, "[%s] The average response time for the last %d seconds is %.2f\n", ts, w, agg.AvgElapsed.Seconds())
	fmt.Fprintf(&b, "[%s] The maximum response time for the last %d seconds is %.2f\n", ts, w, agg.MaxElapsed.Seconds())
	fmt.Fprintf(&b, "[%s] The response codes counts for the last %d seconds is %s\n", ts, w, formatCodes(agg.Codes))
	return b.String()
}

func formatCodes(codes map[int16]int) string {
	type kv struct {
		code  int16
		count int
	}
	pairs := make([]kv, 0, len(codes))
	for k, v := range codes {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].code < pairs[j].code })

	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%d : %d", p.code, p.count)
	}
	return "{ " + strings.Join(parts, " , ") + " }"
}

func utcStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
