package reservation

import "sync"

// CapacityPool is a counted resource: a fixed capacity consumed by unit
// claims. Reserve is a single check-and-increment critical section, so two
// concurrent callers can never drive reserved past capacity.
type CapacityPool struct {
	mu       sync.Mutex
	capacity int
	reserved int
}

// NewCapacityPool returns a pool with the given total capacity and an
// initial reserved count (used when rebuilding from persisted registrations).
// reserved is clamped into [0, capacity].
func NewCapacityPool(capacity, reserved int) *CapacityPool {
	if reserved < 0 {
		reserved = 0
	}
	if reserved > capacity {
		reserved = capacity
	}
	return &CapacityPool{capacity: capacity, reserved: reserved}
}

// Reserve claims units from the pool. It fails with ErrInvalidUnitCount when
// units is not in [1, capacity] and with ErrCapacityExceeded when the pool
// cannot hold them; in both cases the counter is untouched.
func (p *CapacityPool) Reserve(units int) error {
	if units < 1 || units > p.capacity {
		return ErrInvalidUnitCount
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reserved+units > p.capacity {
		return ErrCapacityExceeded
	}
	p.reserved += units
	return nil
}

// Release returns units to the pool, clamping at zero, and reports how many
// were actually freed so the caller can drive waitlist promotion.
func (p *CapacityPool) Release(units int) int {
	if units < 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	freed := units
	if freed > p.reserved {
		freed = p.reserved
	}
	p.reserved -= freed
	return freed
}

// Reserved returns the current consumed count.
func (p *CapacityPool) Reserved() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserved
}

// Capacity returns the fixed total capacity.
func (p *CapacityPool) Capacity() int { return p.capacity }

// Available returns capacity minus reserved.
func (p *CapacityPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity - p.reserved
}
