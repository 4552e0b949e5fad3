package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusconnect/campus-reservation/internal/model"
)

// ErrEventNotFound is returned when an event lookup fails.
var ErrEventNotFound = errors.New("event not found")

// EventRepo provides access to the 'events' table.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, title, description, venue_id, organizer_id, starts_at, ends_at,
	max_attendees, is_public, approval_status, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*model.Event, error) {
	var e model.Event
	var desc sql.NullString
	var venueID sql.NullInt64
	err := row.Scan(&e.ID, &e.Title, &desc, &venueID, &e.OrganizerID, &e.StartsAt, &e.EndsAt,
		&e.MaxAttendees, &e.IsPublic, &e.ApprovalStatus, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	if venueID.Valid {
		id := uint64(venueID.Int64)
		e.VenueID = &id
	}
	return &e, nil
}

// Create inserts a new event and reads the row back to populate the ID and
// timestamps.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (title, description, venue_id, organizer_id, starts_at, ends_at,
	           max_attendees, is_public, approval_status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.VenueID, e.OrganizerID,
		e.StartsAt.UTC(), e.EndsAt.UTC(), e.MaxAttendees, e.IsPublic, e.ApprovalStatus)
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
	*e = *loaded
	return nil
}

// GetByID retrieves an event by its ID, or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return e, err
}

// UpdateApproval sets the event's approval status, or ErrEventNotFound.
func (r *EventRepo) UpdateApproval(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET approval_status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListPublicApproved returns public approved events ordered by start time.
func (r *EventRepo) ListPublicApproved(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE is_public = 1 AND approval_status = 'APPROVED'
		 ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListUpcoming returns approved events that have not started yet. Used at
// startup to rebuild seat ledgers for events that can still take
// registrations.
func (r *EventRepo) ListUpcoming(ctx context.Context) ([]*model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE approval_status = 'APPROVED' AND starts_at > UTC_TIMESTAMP()
		 ORDER BY starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
