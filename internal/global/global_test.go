package global

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

func TestFatalRaiseIsIdempotent(t *testing.T) {
	var f Fatal
	if f.Raised() {
		t.Fatal("expected not raised initially")
	}

	first := errors.New("first")
	second := errors.New("second")
	f.Raise(first)
	f.Raise(second)

	if !f.Raised() {
		t.Fatal("expected raised after first Raise")
	}
	if !errors.Is(f.Err(), first) {
		t.Fatalf("expected first error to stick, got %v", f.Err())
	}
}

type recordingConsumer struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingConsumer) Consume(map[string]model.MetricsSnapshot) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *recordingConsumer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestGlobalMonitorPollsAndStopsCleanly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sites := []model.SiteConfig{
		{Name: "a", URL: srv.URL, Interval: 10 * time.Millisecond, Timeout: 200 * time.Millisecond},
		{Name: "b", URL: srv.URL, Interval: 10 * time.Millisecond, Timeout: 200 * time.Millisecond},
	}

	ui := &recordingConsumer{}
	fatal := &Fatal{}
	g := New(sites, ui, nil, fatal)

	if len(g.Monitors()) != 2 {
		t.Fatalf("expected 2 monitors, got %d", len(g.Monitors()))
	}

	done := make(chan struct{})
	go func() {
		g.Run()
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for ui.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ui.count() == 0 {
		t.Fatal("expected at least one snapshot poll before stopping")
	}

	g.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestGlobalMonitorStopsOnFatal(t *testing.T) {
	g := New(nil, nil, nil, &Fatal{})
	var stopped atomic.Bool

	go func() {
		g.Run()
		stopped.Store(true)
	}()

	g.fatal.Raise(errors.New("boom"))

	deadline := time.Now().Add(2 * time.Second)
	for !stopped.Load() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !stopped.Load() {
		t.Fatal("expected Run to return once the fatal flag was raised")
	}
}
