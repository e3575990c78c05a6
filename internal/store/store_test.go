package store

import (
	"testing"
	"time"

	"github.com/sitewatch/sitewatch/internal/model"
)

func at(sec int64) time.Time {
	return time.Unix(sec, 0)
}

func result(sec int64) model.ProbeResult {
	return model.ProbeResult{Start: at(sec), Status: 200}
}

func starts(rs []model.ProbeResult) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.Start.Unix()
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingOrderingAndBound(t *testing.T) {
	s := New(5)
	for _, sec := range []int64{0, 1, 5, 2, 4, 3} {
		s.Add(result(sec))
	}

	got := starts(s.Snapshot())
	want := []int64{1, 2, 3, 4, 5}
	if !equalInts(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if s.Len() != 5 {
		t.Fatalf("len = %d, want 5", s.Len())
	}
}

func TestRangeSlice(t *testing.T) {
	s := New(5)
	for _, sec := range []int64{0, 1, 5, 2, 4, 3} {
		s.Add(result(sec))
	}

	if got, want := starts(s.Range(at(3), at(4))), []int64{3, 4}; !equalInts(got, want) {
		t.Fatalf("range(3,4) = %v, want %v", got, want)
	}
	if got, want := starts(s.Range(at(2), at(5))), []int64{2, 3, 4, 5}; !equalInts(got, want) {
		t.Fatalf("range(2,5) = %v, want %v", got, want)
	}
}

func TestRangeEmptyWhenMinAfterMax(t *testing.T) {
	s := New(5)
	s.Add(result(1))
	if got := s.Range(at(5), at(1)); len(got) != 0 {
		t.Fatalf("expected empty range, got %v", got)
	}
}

func TestRangeInclusiveBounds(t *testing.T) {
	s := New(10)
	for _, sec := range []int64{1, 2, 3, 4, 5} {
		s.Add(result(sec))
	}
	got := starts(s.Range(at(2), at(4)))
	want := []int64{2, 3, 4}
	if !equalInts(got, want) {
		t.Fatalf("range(2,4) = %v, want %v", got, want)
	}
}

func TestOutOfOrderInsertBeyondCapacityEvictsOldest(t *testing.T) {
	s := New(3)
	for _, sec := range []int64{10, 20, 30, 5, 25} {
		s.Add(result(sec))
	}
	got := starts(s.Snapshot())
	want := []int64{20, 25, 30}
	if !equalInts(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
