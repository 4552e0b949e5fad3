package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusconnect/campus-reservation/internal/model"
)

// ErrRideNotFound is returned when a ride lookup fails.
var ErrRideNotFound = errors.New("ride not found")

// ErrRideRequestNotFound is returned when a seat request lookup fails.
var ErrRideRequestNotFound = errors.New("ride request not found")

// RideRepo persists ride shares and their seat requests. The live seat
// counter is owned by the in-memory ride ledger; this repository records
// the durable state it is rebuilt from.
type RideRepo struct {
	db *sql.DB
}

// NewRideRepo constructs a RideRepo with the given DB handle.
func NewRideRepo(db *sql.DB) *RideRepo { return &RideRepo{db: db} }

const rideColumns = `id, driver_id, pickup_location, destination, departure_time,
	total_seats, available_seats, price_per_seat, status, contact_number, created_at, updated_at`

func scanRide(row interface{ Scan(...interface{}) error }) (*model.RideShare, error) {
	var rs model.RideShare
	var price sql.NullFloat64
	var contact sql.NullString
	err := row.Scan(&rs.ID, &rs.DriverID, &rs.PickupLocation, &rs.Destination, &rs.DepartureTime,
		&rs.TotalSeats, &rs.AvailableSeats, &price, &rs.Status, &contact, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		rs.PricePerSeat = &price.Float64
	}
	if contact.Valid {
		rs.ContactNumber = &contact.String
	}
	return &rs, nil
}

// CreateRide inserts a ride offer and reads the row back to populate the ID
// and timestamps.
func (r *RideRepo) CreateRide(ctx context.Context, rs *model.RideShare) error {
	const q = `INSERT INTO ride_shares (driver_id, pickup_location, destination, departure_time,
	           total_seats, available_seats, price_per_seat, status, contact_number)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rs.DriverID, rs.PickupLocation, rs.Destination,
		rs.DepartureTime.UTC(), rs.TotalSeats, rs.AvailableSeats, rs.PricePerSeat, rs.Status, rs.ContactNumber)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	loaded, err := r.GetRideByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rs = *loaded
	return nil
}

// GetRideByID returns a ride by its ID, or ErrRideNotFound.
func (r *RideRepo) GetRideByID(ctx context.Context, id uint64) (*model.RideShare, error) {
	rs, err := scanRide(r.db.QueryRowContext(ctx,
		`SELECT `+rideColumns+` FROM ride_shares WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	return rs, err
}

// UpdateSeats writes the seat counter and status after the ledger commits a
// request (or the driver cancels the ride).
func (r *RideRepo) UpdateSeats(ctx context.Context, id uint64, available uint32, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ride_shares SET available_seats = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		available, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRideNotFound
	}
	return nil
}

// UpdateRideStatus sets only the ride's status.
func (r *RideRepo) UpdateRideStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ride_shares SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRideNotFound
	}
	return nil
}

// ListActive returns rides still taking requests, soonest departure first.
func (r *RideRepo) ListActive(ctx context.Context) ([]*model.RideShare, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+rideColumns+` FROM ride_shares
		 WHERE status IN ('ACTIVE','FULL') AND departure_time > UTC_TIMESTAMP()
		 ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.RideShare
	for rows.Next() {
		rs, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

const requestColumns = `id, ride_id, passenger_id, seats_requested, status, message, created_at, updated_at`

func scanRequest(row interface{ Scan(...interface{}) error }) (*model.RideRequest, error) {
	var rq model.RideRequest
	var msg sql.NullString
	err := row.Scan(&rq.ID, &rq.RideID, &rq.PassengerID, &rq.SeatsRequested, &rq.Status,
		&msg, &rq.CreatedAt, &rq.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if msg.Valid {
		rq.Message = &msg.String
	}
	return &rq, nil
}

// CreateRequest inserts a seat request and reads the row back.
func (r *RideRepo) CreateRequest(ctx context.Context, rq *model.RideRequest) error {
	const q = `INSERT INTO ride_requests (ride_id, passenger_id, seats_requested, status, message)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rq.RideID, rq.PassengerID, rq.SeatsRequested, rq.Status, rq.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	loaded, err := r.GetRequestByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rq = *loaded
	return nil
}

// GetRequestByID returns a seat request by its ID, or ErrRideRequestNotFound.
func (r *RideRepo) GetRequestByID(ctx context.Context, id uint64) (*model.RideRequest, error) {
	rq, err := scanRequest(r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM ride_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideRequestNotFound
	}
	return rq, err
}

// UpdateRequestStatus writes a request's status after the driver decides.
func (r *RideRepo) UpdateRequestStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ride_requests SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRideRequestNotFound
	}
	return nil
}

func (r *RideRepo) listRequests(ctx context.Context, q string, args ...interface{}) ([]*model.RideRequest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.RideRequest
	for rows.Next() {
		rq, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rq)
	}
	return out, rows.Err()
}

// ListRequestsByRide returns all requests on a ride in arrival order.
func (r *RideRepo) ListRequestsByRide(ctx context.Context, rideID uint64) ([]*model.RideRequest, error) {
	return r.listRequests(ctx,
		`SELECT `+requestColumns+` FROM ride_requests WHERE ride_id = ? ORDER BY created_at`, rideID)
}

// ListRequestsByPassenger returns a passenger's requests, newest first.
func (r *RideRepo) ListRequestsByPassenger(ctx context.Context, passengerID uint64) ([]*model.RideRequest, error) {
	return r.listRequests(ctx,
		`SELECT `+requestColumns+` FROM ride_requests WHERE passenger_id = ? ORDER BY created_at DESC`, passengerID)
}
