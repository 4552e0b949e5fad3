// Package reservation implements the capacity-constrained core of the
// platform: interval conflict detection for venue bookings, the booking
// approval state machine, seat pools with atomic reserve/release, and the
// event waitlist. All state here is in-memory and rebuilt from the database
// at startup; the ledgers in this package are the sole writers of capacity
// counters and interval entries for their resources.
package reservation

import "errors"

// ErrNotFound is returned when a booking, registration or request ID is
// unknown to the ledger. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrInvalidInterval is returned when a requested interval does not satisfy
// end > start.
var ErrInvalidInterval = errors.New("invalid interval")

// ErrConflictingInterval is returned when a booking overlaps an approved
// booking on the same venue. Handlers translate it into HTTP 409.
var ErrConflictingInterval = errors.New("conflicting interval")

// ErrCapacityExceeded is returned when a counted resource cannot satisfy the
// requested number of units.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrInvalidUnitCount is returned when a unit count is not a positive integer
// within the resource's total capacity.
var ErrInvalidUnitCount = errors.New("invalid unit count")

// ErrAlreadyRegistered is returned when a user already holds a registration
// for the same event.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrInvalidTransition is returned when an operation is not legal in the
// entity's current lifecycle state, e.g. approving a rejected booking.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrUnauthorized is returned when the caller lacks the role or ownership
// required for the operation. Handlers translate it into HTTP 403.
var ErrUnauthorized = errors.New("unauthorized")
