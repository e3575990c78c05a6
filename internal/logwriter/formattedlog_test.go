package logwriter

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

func TestFormatAggregate120sUp(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	agg := model.Aggregate{Window: model.Window120s, LastUpdate: ts, Availability: 0.9375}

	got := formatAggregate(agg)
	want := "[2026-01-02 03:04:05] Website availability is 94%\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatAggregate120sDown(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	since := ts.Add(-120 * time.Second)
	agg := model.Aggregate{Window: model.Window120s, LastUpdate: ts, Availability: 0, UnavailableSince: &since}

	got := formatAggregate(agg)
	if !strings.Contains(got, "Website availability is 0%") {
		t.Fatalf("missing availability line: %q", got)
	}
	if !strings.Contains(got, "Website is unavailable since 2026-01-02 03:02:05") {
		t.Fatalf("missing unavailable-since line: %q", got)
	}
}

func TestFormatAggregate10sCodes(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	agg := model.Aggregate{
		Window:     model.Window10s,
		LastUpdate: ts,
		AvgElapsed: 250 * time.Millisecond,
		MaxElapsed: 900 * time.Millisecond,
		Codes:      map[int16]int{200: 3, 500: 1},
	}

	got := formatAggregate(agg)
	if !strings.Contains(got, "average response time for the last 60 seconds") {
		t.Fatalf("missing average line: %q", got)
	}
	if !strings.Contains(got, "maximum response time for the last 60 seconds") {
		t.Fatalf("missing maximum line: %q", got)
	}
	if !strings.Contains(got, "{ 200 : 3 , 500 : 1 }") {
		t.Fatalf("missing codes line: %q", got)
	}
}

func TestFormattedLogWriterAppendsToNamedFile(t *testing.T) {
	dir := t.TempDir()
	w := NewFormatted(dir, map[string]string{"acme": "01"}, nil)

	w.Consume("acme", model.Aggregate{Window: model.Window120s, LastUpdate: time.Now(), Availability: 1})

	data, err := os.ReadFile(dir + "/acme_01.txt")
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "Website availability is 100%") {
		t.Fatalf("unexpected content: %q", data)
	}
}
