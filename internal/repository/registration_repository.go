package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/campusconnect/campus-reservation/internal/model"
)

// ErrRegistrationNotFound is returned when a registration lookup fails.
var ErrRegistrationNotFound = errors.New("registration not found")

// RegistrationRepo persists event registrations. The (event_id, user_id)
// pair is unique among live rows; waitlist order is recovered from
// created_at at startup.
type RegistrationRepo struct {
	db *sql.DB
}

// NewRegistrationRepo constructs a RegistrationRepo with the given DB handle.
func NewRegistrationRepo(db *sql.DB) *RegistrationRepo { return &RegistrationRepo{db: db} }

const registrationColumns = `id, event_id, user_id, status, attended,
	cancellation_reason, created_at, updated_at`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*model.EventRegistration, error) {
	var g model.EventRegistration
	var reason sql.NullString
	err := row.Scan(&g.ID, &g.EventID, &g.UserID, &g.Status, &g.Attended,
		&reason, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		g.CancellationReason = &reason.String
	}
	return &g, nil
}

// Create inserts a registration row with the given status and populates the
// generated ID and timestamps. A unique key violation maps to ErrDuplicate.
func (r *RegistrationRepo) Create(ctx context.Context, g *model.EventRegistration) error {
	const q = `INSERT INTO event_registrations (event_id, user_id, status) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.EventID, g.UserID, g.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
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
	*g = *loaded
	return nil
}

// GetByID returns a registration by its ID, or ErrRegistrationNotFound.
func (r *RegistrationRepo) GetByID(ctx context.Context, id uint64) (*model.EventRegistration, error) {
	g, err := scanRegistration(r.db.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegistrationNotFound
	}
	return g, err
}

// ActiveForEventAndUser reports whether the user already holds a live
// (REGISTERED or WAITLISTED) registration for the event.
func (r *RegistrationRepo) ActiveForEventAndUser(ctx context.Context, eventID, userID uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations
		 WHERE event_id = ? AND user_id = ? AND status IN ('REGISTERED','WAITLISTED')`,
		eventID, userID).Scan(&n)
	return n > 0, err
}

// UpdateStatus sets a registration's status and, when given, its
// cancellation reason.
func (r *RegistrationRepo) UpdateStatus(ctx context.Context, id uint64, status string, reason *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE event_registrations
		 SET status = ?, cancellation_reason = COALESCE(?, cancellation_reason), updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// PromoteAll moves the given registrations from WAITLISTED to REGISTERED in
// a single transaction so a crash mid-promotion cannot leave a partial
// batch.
func (r *RegistrationRepo) PromoteAll(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE event_registrations SET status = 'REGISTERED', updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = 'WAITLISTED'`, id); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SetAttended flips the attendance audit flag. This is permitted even after
// the registration reached a terminal state.
func (r *RegistrationRepo) SetAttended(ctx context.Context, id uint64, attended bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE event_registrations SET attended = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		attended, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *RegistrationRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.EventRegistration, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.EventRegistration
	for rows.Next() {
		g, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListByUser returns a user's registrations, newest first.
func (r *RegistrationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.EventRegistration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListByEvent returns an event's registrations in registration order.
func (r *RegistrationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations
		 WHERE event_id = ? ORDER BY created_at`, eventID)
}

// ListRegistered returns an event's REGISTERED registrations. Used at
// startup to re-seat live claims in the event's ledger.
func (r *RegistrationRepo) ListRegistered(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations
		 WHERE event_id = ? AND status = 'REGISTERED' ORDER BY created_at`, eventID)
}

// ListWaitlisted returns an event's WAITLISTED registrations in enqueue
// order. Used at startup to rebuild the waitlist.
func (r *RegistrationRepo) ListWaitlisted(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	return r.list(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations
		 WHERE event_id = ? AND status = 'WAITLISTED' ORDER BY created_at`, eventID)
}

// CountRegistered returns the number of seats consumed by REGISTERED rows.
// Used at startup to seed the event's capacity pool.
func (r *RegistrationRepo) CountRegistered(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = ? AND status = 'REGISTERED'`,
		eventID).Scan(&n)
	return n, err
}
