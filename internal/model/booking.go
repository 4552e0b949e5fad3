package model

import "time"

// VenueBooking records a request to reserve a venue for a half-open time
// interval [StartsAt, EndsAt). Bookings are created PENDING and move through
// the approval workflow; only APPROVED bookings occupy their slot. This
// struct corresponds to a row in the `venue_bookings` table.
//
// Fields:
//  ID             – primary key identifier.
//  VenueID        – venue being reserved.
//  UserID         – requester (faculty member or administrator).
//  Purpose        – short description of what the booking is for.
//  StartsAt       – interval start (inclusive), UTC.
//  EndsAt         – interval end (exclusive), UTC; must be after StartsAt.
//  Status         – PENDING, APPROVED, REJECTED or CANCELLED.
//  DecisionReason – reason recorded when the booking is rejected.
//  DecidedBy      – administrator who approved or rejected, if decided.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type VenueBooking struct {
	ID             uint64    // venue_bookings.id
	VenueID        uint64    // venue_bookings.venue_id
	UserID         uint64    // venue_bookings.user_id
	Purpose        string    // venue_bookings.purpose
	StartsAt       time.Time // venue_bookings.starts_at
	EndsAt         time.Time // venue_bookings.ends_at
	Status         string    // venue_bookings.status
	DecisionReason *string   // venue_bookings.decision_reason (nullable)
	DecidedBy      *uint64   // venue_bookings.decided_by (nullable)
	CreatedAt      time.Time // venue_bookings.created_at
	UpdatedAt      time.Time // venue_bookings.updated_at
}
