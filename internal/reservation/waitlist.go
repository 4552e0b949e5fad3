package reservation

import "time"

// WaitEntry is a queued claim against a full capacity pool.
type WaitEntry struct {
	RequestID  uint64
	Units      int
	EnqueuedAt time.Time
}

// Waitlist is a FIFO queue of pending claims. It is not self-locking: the
// owning ledger serializes access together with its capacity pool so that a
// release and the promotion it triggers form one atomic step.
type Waitlist struct {
	entries []WaitEntry
}

// NewWaitlist returns an empty queue.
func NewWaitlist() *Waitlist { return &Waitlist{} }

// Enqueue appends a claim to the tail.
func (q *Waitlist) Enqueue(requestID uint64, units int, at time.Time) {
	q.entries = append(q.entries, WaitEntry{RequestID: requestID, Units: units, EnqueuedAt: at})
}

// Promote dequeues claims from the head while the head fits into the freed
// capacity, invoking reserve for each. Promotion is strictly first-come
// first-served: when the head does not fit, promotion stops rather than
// skipping ahead to a smaller claim behind it. The promoted request IDs are
// returned in queue order.
func (q *Waitlist) Promote(freed int, reserve func(units int) error) []uint64 {
	var promoted []uint64
	for len(q.entries) > 0 {
		head := q.entries[0]
		if head.Units > freed {
			break
		}
		if err := reserve(head.Units); err != nil {
			break
		}
		q.entries = q.entries[1:]
		freed -= head.Units
		promoted = append(promoted, head.RequestID)
	}
	return promoted
}

// Remove withdraws a queued claim. It reports whether the claim was present;
// removal has no capacity effect.
func (q *Waitlist) Remove(requestID uint64) bool {
	for i, e := range q.entries {
		if e.RequestID == requestID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of queued claims.
func (q *Waitlist) Len() int { return len(q.entries) }
