package reservation

import (
	"sync"
	"time"
)

// RegistrationState enumerates the lifecycle of an event registration.
type RegistrationState string

const (
	Registered RegistrationState = "REGISTERED"
	Waitlisted RegistrationState = "WAITLISTED"
	Withdrawn  RegistrationState = "CANCELED"
)

// EventLedger tracks one event's seat pool, waitlist and the lifecycle state
// of every claim it has seen. Register and Cancel each run under a single
// mutex so "check capacity, then enqueue" and "check state, release, then
// promote" cannot interleave with a concurrent registration or a second
// cancellation of the same claim. The ledger, not the persisted row, is the
// transition authority for events it tracks.
type EventLedger struct {
	mu       sync.Mutex
	pool     *CapacityPool
	waitlist *Waitlist
	claims   map[uint64]RegistrationState
}

// NewEventLedger returns a ledger for an event with the given seat capacity
// and the number of seats already taken by persisted registrations.
func NewEventLedger(capacity, reserved int) *EventLedger {
	return &EventLedger{
		pool:     NewCapacityPool(capacity, reserved),
		waitlist: NewWaitlist(),
		claims:   make(map[uint64]RegistrationState),
	}
}

// Register claims one seat for a new registration. When the pool is full
// the claim is queued instead and Waitlisted is returned; capacity
// exhaustion is a business outcome here, not an error.
//
// persist writes the registration row with the decided state and returns
// its generated ID, which is needed to queue a waitlisted claim. It runs
// inside the ledger's critical section so the decision and the seat
// counter move together; if it fails, a reserved seat is returned to the
// pool and the error is passed through.
func (l *EventLedger) Register(at time.Time, persist func(state RegistrationState) (uint64, error)) (RegistrationState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.pool.Reserve(1); err == nil {
		id, err := persist(Registered)
		if err != nil {
			l.pool.Release(1)
			return "", err
		}
		l.claims[id] = Registered
		return Registered, nil
	}
	id, err := persist(Waitlisted)
	if err != nil {
		return "", err
	}
	l.waitlist.Enqueue(id, 1, at)
	l.claims[id] = Waitlisted
	return Waitlisted, nil
}

// Cancel withdraws a registration. The claim's state is checked and moved to
// CANCELED under the ledger lock, so of two concurrent cancels exactly one
// wins and a seat is released exactly once; the loser fails with
// ErrInvalidTransition, as does cancelling a claim the ledger never tracked.
// A waitlisted claim is simply removed. A registered claim frees its seat
// and promotes waitlisted claims in FIFO order; the promoted registration
// IDs are returned so the caller can persist their state change.
func (l *EventLedger) Cancel(registrationID uint64) ([]uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.claims[registrationID]
	if !ok || (state != Registered && state != Waitlisted) {
		return nil, ErrInvalidTransition
	}
	l.claims[registrationID] = Withdrawn
	if state == Waitlisted {
		l.waitlist.Remove(registrationID)
		return nil, nil
	}
	freed := l.pool.Release(1)
	if freed == 0 {
		return nil, nil
	}
	promoted := l.waitlist.Promote(freed, l.pool.Reserve)
	for _, id := range promoted {
		l.claims[id] = Registered
	}
	return promoted, nil
}

// RestoreRegistered re-seats a persisted REGISTERED registration during
// startup, claiming one seat from the pool.
func (l *EventLedger) RestoreRegistered(registrationID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.pool.Reserve(1)
	l.claims[registrationID] = Registered
}

// RestoreWaitlisted re-queues a persisted WAITLISTED registration during
// startup. Entries must be restored in their original registration order.
func (l *EventLedger) RestoreWaitlisted(registrationID uint64, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitlist.Enqueue(registrationID, 1, at)
	l.claims[registrationID] = Waitlisted
}

// Reserved returns the number of seats currently taken.
func (l *EventLedger) Reserved() int { return l.pool.Reserved() }

// Waiting returns the number of queued claims.
func (l *EventLedger) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waitlist.Len()
}

// EventLedgerSet maps event IDs to their ledgers.
type EventLedgerSet struct {
	mu      sync.RWMutex
	ledgers map[uint64]*EventLedger
}

// NewEventLedgerSet returns an empty set.
func NewEventLedgerSet() *EventLedgerSet {
	return &EventLedgerSet{ledgers: make(map[uint64]*EventLedger)}
}

// Ensure returns the event's ledger, creating it with the given counters on
// first sight. Later calls ignore the counters.
func (s *EventLedgerSet) Ensure(eventID uint64, capacity, reserved int) *EventLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[eventID]
	if !ok {
		l = NewEventLedger(capacity, reserved)
		s.ledgers[eventID] = l
	}
	return l
}

// Get returns the event's ledger or nil when none exists yet.
func (s *EventLedgerSet) Get(eventID uint64) *EventLedger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgers[eventID]
}

// RideRequestState enumerates the lifecycle of a ride seat request.
type RideRequestState string

const (
	RequestPending   RideRequestState = "PENDING"
	RequestAccepted  RideRequestState = "ACCEPTED"
	RequestRejected  RideRequestState = "REJECTED"
	RequestCompleted RideRequestState = "COMPLETED"
)

var rideRequestTransitions = map[RideRequestState][]RideRequestState{
	RequestPending:  {RequestAccepted, RequestRejected},
	RequestAccepted: {RequestCompleted},
}

// CanTransition reports whether moving from s to next is in the table.
func (s RideRequestState) CanTransition(next RideRequestState) bool {
	for _, allowed := range rideRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MaxRideSeats bounds a single seat request; a ride never offers more.
const MaxRideSeats = 8

// RideLedger tracks one ride's live seat counter. There is no reserved/
// capacity split: available is decremented when a request is accepted into
// the pool at request time, and a driver's later rejection does not return
// the seats. Releasing seats retroactively is a product decision the source
// system never made, so the ledger does not offer it.
type RideLedger struct {
	mu        sync.Mutex
	available int
}

// NewRideLedger returns a ledger with the given number of open seats.
func NewRideLedger(available int) *RideLedger {
	if available < 0 {
		available = 0
	}
	return &RideLedger{available: available}
}

// Request claims seats from the ride. It fails with ErrInvalidUnitCount when
// seats is not in [1, MaxRideSeats] and with ErrCapacityExceeded when fewer
// seats remain than requested; the counter is untouched on failure.
//
// persist, when non-nil, durably records the claim and the would-be
// remaining counter. It runs inside the ledger's critical section so
// concurrent claims persist their counters in the same order the ledger
// hands them out; if it fails, the claim is abandoned and the counter is
// untouched. On success the remaining seat count is returned along with
// whether the ride just became full.
func (l *RideLedger) Request(seats int, persist func(remaining int, full bool) error) (remaining int, full bool, err error) {
	if seats < 1 || seats > MaxRideSeats {
		return 0, false, ErrInvalidUnitCount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if seats > l.available {
		return 0, false, ErrCapacityExceeded
	}
	rest := l.available - seats
	if persist != nil {
		if err := persist(rest, rest == 0); err != nil {
			return 0, false, err
		}
	}
	l.available = rest
	return rest, rest == 0, nil
}

// Decide runs fn while holding the ride's mutex. Request decisions carry a
// read-check-write sequence over the request row; serializing them against
// each other and against seat claims keeps a concurrent accept and reject of
// the same request from both passing the transition check.
func (l *RideLedger) Decide(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// Available returns the current open seat count.
func (l *RideLedger) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

// RideLedgerSet maps ride IDs to their ledgers.
type RideLedgerSet struct {
	mu      sync.RWMutex
	ledgers map[uint64]*RideLedger
}

// NewRideLedgerSet returns an empty set.
func NewRideLedgerSet() *RideLedgerSet {
	return &RideLedgerSet{ledgers: make(map[uint64]*RideLedger)}
}

// Ensure returns the ride's ledger, creating it with the given seat count on
// first sight. Later calls ignore the count.
func (s *RideLedgerSet) Ensure(rideID uint64, available int) *RideLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[rideID]
	if !ok {
		l = NewRideLedger(available)
		s.ledgers[rideID] = l
	}
	return l
}

// Get returns the ride's ledger or nil when none exists yet.
func (s *RideLedgerSet) Get(rideID uint64) *RideLedger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledgers[rideID]
}
