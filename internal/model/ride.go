package model

import "time"

// RideShare represents a driver's offer to share a ride. AvailableSeats is
// the live counter: it is decremented the moment a passenger's seat request
// is taken, and the ride flips to FULL when it reaches zero. This struct
// corresponds to a row in the `ride_shares` table.
//
// Fields:
//  ID             – primary key identifier.
//  DriverID       – user offering the ride.
//  PickupLocation – where passengers are picked up.
//  Destination    – where the ride is going.
//  DepartureTime  – planned departure, UTC; must be in the future when
//                   requests are made.
//  TotalSeats     – seats offered at creation, 1 to 8.
//  AvailableSeats – seats still open.
//  PricePerSeat   – optional price per seat.
//  Status         – ACTIVE, FULL, COMPLETED or CANCELLED.
//  ContactNumber  – optional driver contact.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type RideShare struct {
	ID             uint64    // ride_shares.id
	DriverID       uint64    // ride_shares.driver_id
	PickupLocation string    // ride_shares.pickup_location
	Destination    string    // ride_shares.destination
	DepartureTime  time.Time // ride_shares.departure_time
	TotalSeats     uint32    // ride_shares.total_seats
	AvailableSeats uint32    // ride_shares.available_seats
	PricePerSeat   *float64  // ride_shares.price_per_seat (nullable)
	Status         string    // ride_shares.status
	ContactNumber  *string   // ride_shares.contact_number (nullable)
	CreatedAt      time.Time // ride_shares.created_at
	UpdatedAt      time.Time // ride_shares.updated_at
}

// Ride status values.
const (
	RideActive    = "ACTIVE"
	RideFull      = "FULL"
	RideCompleted = "COMPLETED"
	RideCancelled = "CANCELLED"
)

// RideRequest records a passenger's request for seats on a ride. Seats are
// committed when the request is created; the driver's accept/reject decision
// only moves the request's own state and never touches the seat counter.
// This struct corresponds to a row in the `ride_requests` table.
//
// Fields:
//  ID             – primary key identifier.
//  RideID         – ride the seats are requested on.
//  PassengerID    – requesting user.
//  SeatsRequested – number of seats, 1 to 8.
//  Status         – PENDING, ACCEPTED, REJECTED or COMPLETED.
//  Message        – optional note to the driver.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type RideRequest struct {
	ID             uint64    // ride_requests.id
	RideID         uint64    // ride_requests.ride_id
	PassengerID    uint64    // ride_requests.passenger_id
	SeatsRequested uint32    // ride_requests.seats_requested
	Status         string    // ride_requests.status
	Message        *string   // ride_requests.message (nullable)
	CreatedAt      time.Time // ride_requests.created_at
	UpdatedAt      time.Time // ride_requests.updated_at
}
