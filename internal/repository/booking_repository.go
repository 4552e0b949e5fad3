package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusconnect/campus-reservation/internal/model"
)

// ErrBookingNotFound is returned when a venue booking lookup fails.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo persists venue bookings. The reservation core is the authority
// on booking state while the process runs; rows written here are the durable
// record it is rebuilt from on startup. All timestamps are stored in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, venue_id, user_id, purpose, starts_at, ends_at, status,
	decision_reason, decided_by, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.VenueBooking, error) {
	var b model.VenueBooking
	var reason sql.NullString
	var decidedBy sql.NullInt64
	err := row.Scan(&b.ID, &b.VenueID, &b.UserID, &b.Purpose, &b.StartsAt, &b.EndsAt,
		&b.Status, &reason, &decidedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		b.DecisionReason = &reason.String
	}
	if decidedBy.Valid {
		id := uint64(decidedBy.Int64)
		b.DecidedBy = &id
	}
	return &b, nil
}

// Create inserts a new booking row and populates the generated ID and
// timestamps on the provided struct. Status must be a valid enumeration
// value ('PENDING','APPROVED','REJECTED','CANCELLED').
func (r *BookingRepo) Create(ctx context.Context, b *model.VenueBooking) error {
	const q = `INSERT INTO venue_bookings (venue_id, user_id, purpose, starts_at, ends_at, status)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.VenueID, b.UserID, b.Purpose,
		b.StartsAt.UTC(), b.EndsAt.UTC(), b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	loaded, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*b = *loaded
	return nil
}

// GetByID returns a booking by its ID, or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.VenueBooking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// UpdateDecision records an approval or rejection: the new status, the
// deciding administrator and, for rejections, the reason.
func (r *BookingRepo) UpdateDecision(ctx context.Context, id uint64, status string, decidedBy uint64, reason *string) error {
	const q = `UPDATE venue_bookings
	           SET status = ?, decided_by = ?, decision_reason = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, decidedBy, reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// UpdateStatus sets only the status column (used for cancellation).
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venue_bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.VenueBooking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.VenueBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByVenue returns all bookings for a venue, newest first.
func (r *BookingRepo) ListByVenue(ctx context.Context, venueID uint64) ([]*model.VenueBooking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings WHERE venue_id = ? ORDER BY starts_at DESC`,
		venueID)
}

// ListByUser returns all bookings created by a user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.VenueBooking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
}

// ListByStatus returns all bookings in the given status, oldest first so
// administrators review submissions in arrival order.
func (r *BookingRepo) ListByStatus(ctx context.Context, status string) ([]*model.VenueBooking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings WHERE status = ? ORDER BY created_at`,
		status)
}

// ListLive returns every PENDING and APPROVED booking. Used at startup to
// rebuild the in-memory workflow and interval index.
func (r *BookingRepo) ListLive(ctx context.Context) ([]*model.VenueBooking, error) {
	return r.list(ctx,
		`SELECT `+bookingColumns+` FROM venue_bookings
		 WHERE status IN ('PENDING','APPROVED') ORDER BY created_at`)
}
