package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

func TestConsumeAvailabilitySetsExactFraction(t *testing.T) {
	e := New()
	e.Consume("acme", model.Aggregate{
		Window:       model.Window120s,
		LastUpdate:   time.Now(),
		Availability: 0.9375,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	e.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `sitewatch_availability{site="acme"} 0.9375`) {
		t.Fatalf("expected exact availability gauge in output, got:\n%s", body)
	}
}

func TestConsumeWindowAggregateSetsLatencyGauges(t *testing.T) {
	e := New()
	e.Consume("acme", model.Aggregate{
		Window:     model.Window10s,
		LastUpdate: time.Now(),
		AvgElapsed: 250 * time.Millisecond,
		MaxElapsed: 900 * time.Millisecond,
		Codes:      map[int16]int{200: 2},
	})

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	if !strings.Contains(body, `sitewatch_avg_response_seconds{site="acme",window="10s"} 0.25`) {
		t.Fatalf("missing avg gauge:\n%s", body)
	}
	if !strings.Contains(body, `sitewatch_probe_codes{code="200",site="acme",window="10s"} 2`) {
		t.Fatalf("missing probe code gauge:\n%s", body)
	}
}
