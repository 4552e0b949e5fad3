package model

import "time"

// Event represents a campus event with a fixed attendee capacity. Seats are
// consumed by registrations; once full, further registrants join the
// waitlist. This struct corresponds to a row in the `events` table.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – event title.
//  Description    – optional longer description.
//  VenueID        – venue hosting the event, if one is assigned.
//  OrganizerID    – user who created the event.
//  StartsAt       – when the event begins, UTC.
//  EndsAt         – when the event ends, UTC.
//  MaxAttendees   – total seat capacity.
//  IsPublic       – whether any authenticated user may register.
//  ApprovalStatus – PENDING, APPROVED or REJECTED; only APPROVED events
//                   accept registrations.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Event struct {
	ID             uint64    // events.id
	Title          string    // events.title
	Description    *string   // events.description (nullable)
	VenueID        *uint64   // events.venue_id (nullable)
	OrganizerID    uint64    // events.organizer_id
	StartsAt       time.Time // events.starts_at
	EndsAt         time.Time // events.ends_at
	MaxAttendees   uint32    // events.max_attendees
	IsPublic       bool      // events.is_public
	ApprovalStatus string    // events.approval_status
	CreatedAt      time.Time // events.created_at
	UpdatedAt      time.Time // events.updated_at
}

// Approval status values for an event. Only APPROVED events accept
// registrations; faculty-created events wait in PENDING until an
// administrator approves them.
const (
	EventPending  = "PENDING"
	EventApproved = "APPROVED"
)
