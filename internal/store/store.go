// Package store implements the bounded, time-ordered buffer of probe
// results each site keeps (spec §4.1).
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

// ResponseStore holds up to capacity ProbeResults, kept sorted
// ascending by Start. A binary heap would insert faster but would
// destroy the ordering cheap time-range queries depend on; since probe
// results arrive almost-sorted (one producer per store, monotonic
// Start in the common case), a tail-scan insert is amortized O(1) and
// keeps the slice trivially rangeable.
type ResponseStore struct {
	mu       sync.Mutex
	items    []model.ProbeResult
	capacity int
}

// New creates a ResponseStore with the given capacity.
func New(capacity int) *ResponseStore {
	if capacity < 1 {
		capacity = 1
	}
	return &ResponseStore{
		items:    make([]model.ProbeResult, 0, capacity),
		capacity: capacity,
	}
}

// Add inserts r keeping the slice sorted by Start, then evicts from
// the head until size <= capacity.
func (s *ResponseStore) Add(r model.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	// Expected case: r.Start >= every stored Start, append.
	if n == 0 || !r.Start.Before(s.items[n-1].Start) {
		s.items = append(s.items, r)
	} else {
		// Tail-scan for the first element with Start <= r.Start and
		// insert right after it; insert at head if none found.
		idx := 0
		for i := n - 1; i >= 0; i-- {
			if !s.items[i].Start.After(r.Start) {
				idx = i + 1
				break
			}
		}
		s.items = append(s.items, model.ProbeResult{})
		copy(s.items[idx+1:], s.items[idx:])
		s.items[idx] = r
	}

	if over := len(s.items) - s.capacity; over > 0 {
		s.items = s.items[over:]
	}
}

// Range returns all stored elements with min <= Start <= max,
// preserving order. Returns an empty slice if min > max. The returned
// slice is a copy, independent of further mutation.
func (s *ResponseStore) Range(min, max time.Time) []model.ProbeResult {
	if min.After(max) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lo := sort.Search(len(s.items), func(i int) bool {
		return !s.items[i].Start.Before(min)
	})
	hi := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].Start.After(max)
	})
	if lo >= hi {
		return nil
	}

	out := make([]model.ProbeResult, hi-lo)
	copy(out, s.items[lo:hi])
	return out
}

// Len reports the number of elements currently stored.
func (s *ResponseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns a copy of every stored element, in order.
func (s *ResponseStore) Snapshot() []model.ProbeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ProbeResult, len(s.items))
	copy(out, s.items)
	return out
}
