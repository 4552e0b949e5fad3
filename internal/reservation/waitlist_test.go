package reservation

import (
	"testing"
	"time"
)

func TestWaitlistFIFO(t *testing.T) {
	q := NewWaitlist()
	now := time.Now().UTC()
	q.Enqueue(1, 1, now)
	q.Enqueue(2, 1, now.Add(time.Second))
	q.Enqueue(3, 1, now.Add(2*time.Second))

	p := NewCapacityPool(10, 8)
	promoted := q.Promote(2, p.Reserve)
	if len(promoted) != 2 || promoted[0] != 1 || promoted[1] != 2 {
		t.Fatalf("promoted = %v, want [1 2]", promoted)
	}
	if q.Len() != 1 {
		t.Fatalf("Len = %d, want 1", q.Len())
	}
}

func TestWaitlistHeadOfLineBlocking(t *testing.T) {
	q := NewWaitlist()
	now := time.Now().UTC()
	q.Enqueue(1, 3, now) // head wants 3 units
	q.Enqueue(2, 1, now.Add(time.Second))

	p := NewCapacityPool(5, 3)
	// only 2 units freed: the head does not fit, and the smaller claim
	// behind it must not jump the queue
	promoted := q.Promote(2, p.Reserve)
	if len(promoted) != 0 {
		t.Fatalf("promoted = %v, want none", promoted)
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}

	p.Release(1)
	promoted = q.Promote(3, p.Reserve)
	if len(promoted) != 2 || promoted[0] != 1 || promoted[1] != 2 {
		t.Fatalf("promoted = %v, want [1 2]", promoted)
	}
}

func TestWaitlistRemove(t *testing.T) {
	q := NewWaitlist()
	now := time.Now().UTC()
	q.Enqueue(1, 1, now)
	q.Enqueue(2, 1, now)
	if !q.Remove(1) {
		t.Fatal("Remove(1) = false, want true")
	}
	if q.Remove(1) {
		t.Fatal("second Remove(1) = true, want false")
	}
	p := NewCapacityPool(2, 1)
	promoted := q.Promote(1, p.Reserve)
	if len(promoted) != 1 || promoted[0] != 2 {
		t.Fatalf("promoted = %v, want [2]", promoted)
	}
}
