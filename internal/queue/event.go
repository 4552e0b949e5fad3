// Package queue defines message payloads exchanged over the message broker
// and the background consumer that audits them.
package queue

// ReservationDecidedEvent is published whenever a reservation reaches a
// decision: a venue booking is approved or rejected, or an event
// registration is confirmed or promoted from the waitlist. It carries
// enough information for downstream consumers to audit or notify without
// querying the primary database.
type ReservationDecidedEvent struct {
	Kind       string `json:"kind"`     // "venue_booking" or "event_registration"
	RequestID  uint64 `json:"request_id"`
	ResourceID uint64 `json:"resource_id"` // venue or event ID
	UserID     uint64 `json:"user_id"`
	Outcome    string `json:"outcome"` // APPROVED, REJECTED, REGISTERED, WAITLISTED, PROMOTED
	Reason     string `json:"reason,omitempty"`
	DecidedBy  uint64 `json:"decided_by,omitempty"`
	DecidedAt  string `json:"decided_at"`
}
