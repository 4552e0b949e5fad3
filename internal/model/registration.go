package model

import "time"

// EventRegistration records one user's claim on one event seat. A user may
// hold at most one registration per event; the (event_id, user_id) pair is
// unique in the database. This struct corresponds to a row in the
// `event_registrations` table.
//
// Fields:
//  ID                 – primary key identifier.
//  EventID            – event being registered for.
//  UserID             – registrant.
//  Status             – REGISTERED, WAITLISTED or CANCELED.
//  Attended           – attendance audit flag; the only field that may still
//                       change after the registration reaches a terminal
//                       state.
//  CancellationReason – reason recorded when the registration is canceled.
//  CreatedAt          – registration timestamp, also the waitlist ordering
//                       key.
//  UpdatedAt          – last update timestamp.
type EventRegistration struct {
	ID                 uint64    // event_registrations.id
	EventID            uint64    // event_registrations.event_id
	UserID             uint64    // event_registrations.user_id
	Status             string    // event_registrations.status
	Attended           bool      // event_registrations.attended
	CancellationReason *string   // event_registrations.cancellation_reason (nullable)
	CreatedAt          time.Time // event_registrations.created_at
	UpdatedAt          time.Time // event_registrations.updated_at
}
