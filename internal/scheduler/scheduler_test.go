package scheduler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitewatch/sitewatch/internal/store"
)

func TestSchedulerFiresOncePerInterval(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	_ = hits

	s := store.New(100)
	sched := New(srv.URL, 20*time.Millisecond, time.Second, s)

	go sched.Run()
	time.Sleep(105 * time.Millisecond)
	sched.Stop()
	time.Sleep(30 * time.Millisecond) // let any in-flight probe land

	n := s.Len()
	// 105ms at a 20ms interval should fire roughly 5 times; allow slack
	// for scheduling jitter on a loaded test machine.
	if n < 3 || n > 8 {
		t.Fatalf("expected 3-8 probes, got %d", n)
	}
}

func TestSchedulerStopsIssuingNewProbes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := store.New(100)
	sched := New(srv.URL, 10*time.Millisecond, time.Second, s)

	go sched.Run()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()
	time.Sleep(20 * time.Millisecond)
	n1 := s.Len()
	time.Sleep(50 * time.Millisecond)
	n2 := s.Len()

	if n2 != n1 {
		t.Fatalf("store grew after stop: %d -> %d", n1, n2)
	}
}
