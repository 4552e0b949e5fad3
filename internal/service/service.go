// Package service orchestrates the reservation core against persistence,
// the clock and the message broker. Each use case (venue bookings, event
// registrations, ride seats) gets its own service; all of them follow the
// same pattern: validate through narrow store interfaces, commit the
// decision in the in-memory ledger, then persist and publish.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusconnect/campus-reservation/internal/queue"
)

// ErrVenueUnavailable is returned when a booking targets a venue that is
// administratively disabled.
var ErrVenueUnavailable = errors.New("venue unavailable")

// ErrRegistrationClosed is returned when an event does not accept
// registrations: not public, not approved, or already started.
var ErrRegistrationClosed = errors.New("registration closed")

// ErrRideClosed is returned when a ride no longer accepts seat requests:
// cancelled, completed, or already departed.
var ErrRideClosed = errors.New("ride closed")

// Clock supplies the current time. Production code uses SystemClock; tests
// inject a fixed clock to exercise time-dependent predicates such as
// "departure time in the future".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock reads the real time in UTC.
var SystemClock Clock = systemClock{}

// DecisionPublisher emits reservation decision events to the broker.
// Publishing is best-effort: services log failures and carry on, since a
// committed decision must not be undone by a lost audit event.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, event queue.ReservationDecidedEvent) error
}
