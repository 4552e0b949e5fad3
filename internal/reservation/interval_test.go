package reservation

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time { return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func iv(t *testing.T, start, end time.Time) Interval {
	t.Helper()
	v, err := NewInterval(start, end)
	if err != nil {
		t.Fatalf("NewInterval(%v, %v): %v", start, end, err)
	}
	return v
}

func TestNewIntervalRejectsBadRanges(t *testing.T) {
	if _, err := NewInterval(at(1, 0), at(1, 0)); err != ErrInvalidInterval {
		t.Fatalf("zero-length interval: got %v, want ErrInvalidInterval", err)
	}
	if _, err := NewInterval(at(2, 0), at(1, 0)); err != ErrInvalidInterval {
		t.Fatalf("inverted interval: got %v, want ErrInvalidInterval", err)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a := iv(t, at(1, 0), at(2, 0))
	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"identical", iv(t, at(1, 0), at(2, 0)), true},
		{"partial", iv(t, at(1, 30), at(2, 30)), true},
		{"contained", iv(t, at(1, 15), at(1, 45)), true},
		{"touching end-to-start", iv(t, at(2, 0), at(3, 0)), false},
		{"touching start-to-end", iv(t, at(0, 0), at(1, 0)), false},
		{"disjoint", iv(t, at(3, 0), at(4, 0)), false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.b); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
		if got := tc.b.Overlaps(a); got != tc.want {
			t.Errorf("%s (reversed): Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestConflictIndex(t *testing.T) {
	x := NewConflictIndex()
	x.Insert(1, 10, iv(t, at(1, 0), at(2, 0)))
	x.Insert(1, 11, iv(t, at(3, 0), at(4, 0)))

	if !x.HasConflict(1, iv(t, at(1, 30), at(2, 30)), 0) {
		t.Error("expected conflict with booking 10")
	}
	if x.HasConflict(1, iv(t, at(2, 0), at(3, 0)), 0) {
		t.Error("gap between bookings should not conflict")
	}
	// a different venue is a different timeline
	if x.HasConflict(2, iv(t, at(1, 0), at(2, 0)), 0) {
		t.Error("other venue should not conflict")
	}
	// a booking re-validating its own slot ignores itself
	if x.HasConflict(1, iv(t, at(1, 0), at(2, 0)), 10) {
		t.Error("excluded booking should not conflict with itself")
	}

	x.Remove(1, 10)
	if x.HasConflict(1, iv(t, at(1, 0), at(2, 0)), 0) {
		t.Error("removed booking should free its slot")
	}
	if n := x.Count(1); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	// removing an absent booking is a no-op
	x.Remove(1, 999)
	if n := x.Count(1); n != 1 {
		t.Errorf("Count after no-op remove = %d, want 1", n)
	}
}

func TestConflictIndexOrdering(t *testing.T) {
	x := NewConflictIndex()
	// insert out of order and check the sorted scan still finds overlaps
	x.Insert(7, 3, iv(t, at(5, 0), at(6, 0)))
	x.Insert(7, 1, iv(t, at(1, 0), at(2, 0)))
	x.Insert(7, 2, iv(t, at(3, 0), at(4, 0)))

	for _, q := range []Interval{
		iv(t, at(1, 30), at(1, 45)),
		iv(t, at(3, 30), at(3, 45)),
		iv(t, at(5, 30), at(5, 45)),
	} {
		if !x.HasConflict(7, q, 0) {
			t.Errorf("query %v should conflict", q)
		}
	}
	if x.HasConflict(7, iv(t, at(2, 0), at(3, 0)), 0) {
		t.Error("query between entries should not conflict")
	}
}
