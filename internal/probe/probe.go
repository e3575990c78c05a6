// Package probe implements the single-shot HTTP GET that feeds one
// ProbeResult into a site's ResponseStore (spec §4.2).
package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
	"github.com/sitewatch/sitewatch/internal/store"
)

// sharedTransport is reused across every Prober so repeated probes to
// the same site benefit from connection keep-alive instead of paying a
// fresh TCP/TLS handshake every interval.
var sharedTransport = &http.Transport{
	MaxIdleConnsPerHost: 4,
	IdleConnTimeout:     90 * time.Second,
}

// Prober performs one GET against URL, classifies the outcome, and
// appends exactly one ProbeResult to Store. It never returns an error
// to its caller — all failure modes are reclassified into synthetic
// status codes so availability stays well-defined during outages.
type Prober struct {
	URL     string
	Timeout time.Duration
	Store   *store.ResponseStore
}

// Run performs the probe synchronously. Callers that want
// fire-and-forget semantics (the ProbeScheduler) invoke this in its
// own goroutine.
func (p *Prober) Run() {
	start := time.Now()

	client := &http.Client{
		Timeout:   p.Timeout,
		Transport: sharedTransport,
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		p.Store.Add(model.ProbeResult{
			Start:   start,
			Status:  model.StatusConnectFailed,
			Elapsed: time.Since(start),
		})
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		status := model.StatusConnectFailed
		elapsed := time.Since(start)
		if isTimeout(err) {
			status = model.StatusTimedOut
			elapsed = p.Timeout
		}
		p.Store.Add(model.ProbeResult{Start: start, Status: status, Elapsed: elapsed})
		return
	}
	defer resp.Body.Close()

	p.Store.Add(model.ProbeResult{
		Start:   start,
		Status:  int16(resp.StatusCode),
		Elapsed: time.Since(start),
	})
}

// isTimeout reports whether err represents the request not receiving a
// response before the timeout expired, as opposed to a connection/DNS
// failure that never got as far as waiting on a response.
func isTimeout(err error) bool {
	if ctxErr := context.DeadlineExceeded; errors.Is(err, ctxErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
