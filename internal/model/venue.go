package model

import "time"

// Venue represents a bookable campus space such as an auditorium or a
// seminar room. A venue hosts at most one approved booking per time slot;
// overlap is enforced by the reservation core, not by this struct. This
// struct corresponds to a row in the `venues` table.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – venue name, unique per campus.
//  Location           – human-readable location description.
//  Capacity           – seated capacity, informational for bookings.
//  AvailabilityStatus – AVAILABLE, UNDER_MAINTENANCE or UNAVAILABLE.
//  Description        – optional free-text description.
//  HasProjector       – whether projection equipment is installed.
//  HasAudioSystem     – whether an audio system is installed.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Venue struct {
	ID                 uint64    // venues.id
	Name               string    // venues.name
	Location           string    // venues.location
	Capacity           uint32    // venues.capacity
	AvailabilityStatus string    // venues.availability_status
	Description        *string   // venues.description (nullable)
	HasProjector       bool      // venues.has_projector
	HasAudioSystem     bool      // venues.has_audio_system
	CreatedAt          time.Time // venues.created_at
	UpdatedAt          time.Time // venues.updated_at
}

// VenueAvailable is the availability_status value under which new bookings
// are accepted.
const VenueAvailable = "AVAILABLE"

// Bookable reports whether the venue accepts new booking submissions.
func (v *Venue) Bookable() bool {
	return v.AvailabilityStatus == VenueAvailable
}
