package service

import (
	"context"
	"errors"
	"log"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
)

// RideStore persists ride shares and their seat requests.
type RideStore interface {
	CreateRide(ctx context.Context, rs *model.RideShare) error
	GetRideByID(ctx context.Context, id uint64) (*model.RideShare, error)
	UpdateSeats(ctx context.Context, id uint64, available uint32, status string) error
	UpdateRideStatus(ctx context.Context, id uint64, status string) error
	ListActive(ctx context.Context) ([]*model.RideShare, error)
	CreateRequest(ctx context.Context, rq *model.RideRequest) error
	GetRequestByID(ctx context.Context, id uint64) (*model.RideRequest, error)
	UpdateRequestStatus(ctx context.Context, id uint64, status string) error
	ListRequestsByRide(ctx context.Context, rideID uint64) ([]*model.RideRequest, error)
	ListRequestsByPassenger(ctx context.Context, passengerID uint64) ([]*model.RideRequest, error)
}

// RideShareService orchestrates seat requests against the per-ride seat
// ledgers. Seats are committed the moment a request is taken; the driver's
// later accept or reject moves only the request's own state and never the
// seat counter.
type RideShareService struct {
	rides   RideStore
	ledgers *reservation.RideLedgerSet
	clock   Clock
}

// NewRideShareService wires the service.
func NewRideShareService(rides RideStore, clock Clock) *RideShareService {
	return &RideShareService{
		rides:   rides,
		ledgers: reservation.NewRideLedgerSet(),
		clock:   clock,
	}
}

// Restore rebuilds the seat ledgers for rides that have not departed yet.
// Called once at startup.
func (s *RideShareService) Restore(ctx context.Context) error {
	active, err := s.rides.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, rs := range active {
		s.ledgers.Ensure(rs.ID, int(rs.AvailableSeats))
	}
	return nil
}

// CreateRide publishes a driver's ride offer. Seats must be in
// [1, MaxRideSeats]; the offer starts ACTIVE with every seat open.
func (s *RideShareService) CreateRide(ctx context.Context, rs *model.RideShare) error {
	if rs.TotalSeats < 1 || rs.TotalSeats > reservation.MaxRideSeats {
		return reservation.ErrInvalidUnitCount
	}
	if !rs.DepartureTime.After(s.clock.Now()) {
		return ErrRideClosed
	}
	rs.DepartureTime = rs.DepartureTime.UTC()
	rs.AvailableSeats = rs.TotalSeats
	rs.Status = model.RideActive
	if err := s.rides.CreateRide(ctx, rs); err != nil {
		return err
	}
	s.ledgers.Ensure(rs.ID, int(rs.TotalSeats))
	return nil
}

// RequestSeats claims seats on a ride for a passenger. The claim is atomic:
// either all requested seats are taken or none, and the ride flips to FULL
// the moment the counter hits zero. Drivers cannot request seats on their
// own ride.
func (s *RideShareService) RequestSeats(ctx context.Context, rideID, passengerID uint64, seats int, message *string) (*model.RideRequest, error) {
	rs, err := s.rides.GetRideByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrRideNotFound) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	if rs.DriverID == passengerID {
		return nil, reservation.ErrUnauthorized
	}
	if rs.Status != model.RideActive || !rs.DepartureTime.After(s.clock.Now()) {
		return nil, ErrRideClosed
	}

	ledger := s.ledgers.Ensure(rideID, int(rs.AvailableSeats))
	rq := &model.RideRequest{
		RideID:         rideID,
		PassengerID:    passengerID,
		SeatsRequested: uint32(seats),
		Status:         string(reservation.RequestPending),
		Message:        message,
	}
	// The row and the counter are written inside the ledger's critical
	// section, so concurrent claims persist their counters in claim order
	// and a failed write leaves the in-memory counter untouched.
	_, _, err = ledger.Request(seats, func(remaining int, full bool) error {
		if err := s.rides.CreateRequest(ctx, rq); err != nil {
			return err
		}
		status := model.RideActive
		if full {
			status = model.RideFull
		}
		if err := s.rides.UpdateSeats(ctx, rideID, uint32(remaining), status); err != nil {
			log.Printf("CRITICAL: ride %d request %d persisted but seat counter was not: %v", rideID, rq.ID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rq, nil
}

// DecideRequest records the driver's accept or reject on a PENDING request.
// Only the ride's driver may decide, and a rejection does not return the
// seats: they stay committed, as they were from the moment of the request.
// The transition check and write run under the ride's ledger lock so a
// concurrent accept and reject of the same request cannot both win.
func (s *RideShareService) DecideRequest(ctx context.Context, requestID, driverID uint64, accept bool) (*model.RideRequest, error) {
	rq, err := s.rides.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	rs, err := s.rides.GetRideByID(ctx, rq.RideID)
	if err != nil {
		return nil, err
	}
	if rs.DriverID != driverID {
		return nil, reservation.ErrUnauthorized
	}
	next := reservation.RequestAccepted
	if !accept {
		next = reservation.RequestRejected
	}

	ledger := s.ledgers.Ensure(rq.RideID, int(rs.AvailableSeats))
	err = ledger.Decide(func() error {
		cur, err := s.rides.GetRequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !reservation.RideRequestState(cur.Status).CanTransition(next) {
			return reservation.ErrInvalidTransition
		}
		return s.rides.UpdateRequestStatus(ctx, requestID, string(next))
	})
	if err != nil {
		return nil, err
	}
	rq.Status = string(next)
	rq.UpdatedAt = s.clock.Now()
	return rq, nil
}

// CompleteRide marks a ride COMPLETED and moves its ACCEPTED requests to
// COMPLETED. Only the driver may complete a ride.
func (s *RideShareService) CompleteRide(ctx context.Context, rideID, driverID uint64) error {
	rs, err := s.rides.GetRideByID(ctx, rideID)
	if err != nil {
		return err
	}
	if rs.DriverID != driverID {
		return reservation.ErrUnauthorized
	}
	if rs.Status != model.RideActive && rs.Status != model.RideFull {
		return reservation.ErrInvalidTransition
	}
	if err := s.rides.UpdateRideStatus(ctx, rideID, model.RideCompleted); err != nil {
		return err
	}
	requests, err := s.rides.ListRequestsByRide(ctx, rideID)
	if err != nil {
		return err
	}
	for _, rq := range requests {
		if rq.Status != string(reservation.RequestAccepted) {
			continue
		}
		if err := s.rides.UpdateRequestStatus(ctx, rq.ID, string(reservation.RequestCompleted)); err != nil {
			return err
		}
	}
	return nil
}

// CancelRide marks a ride CANCELLED. Only the driver or an administrator
// may cancel, and only before the ride completes.
func (s *RideShareService) CancelRide(ctx context.Context, rideID, callerID uint64, callerRole string) error {
	rs, err := s.rides.GetRideByID(ctx, rideID)
	if err != nil {
		return err
	}
	if callerRole != model.RoleAdmin && rs.DriverID != callerID {
		return reservation.ErrUnauthorized
	}
	if rs.Status != model.RideActive && rs.Status != model.RideFull {
		return reservation.ErrInvalidTransition
	}
	return s.rides.UpdateRideStatus(ctx, rideID, model.RideCancelled)
}

// AvailableSeats reports the live open seat count for a ride, preferring
// the in-memory ledger over the persisted counter.
func (s *RideShareService) AvailableSeats(ctx context.Context, rideID uint64) (int, error) {
	if ledger := s.ledgers.Get(rideID); ledger != nil {
		return ledger.Available(), nil
	}
	rs, err := s.rides.GetRideByID(ctx, rideID)
	if err != nil {
		return 0, err
	}
	return int(rs.AvailableSeats), nil
}
