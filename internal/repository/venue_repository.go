package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campusconnect/campus-reservation/internal/model"
)

// ErrVenueNotFound is returned when a venue lookup fails.
var ErrVenueNotFound = errors.New("venue not found")

// VenueRepo provides methods to create and retrieve venues. Venues change
// rarely; all booking pressure goes through the reservation core, so this
// repository is plain keyed-record access.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, name, location, capacity, availability_status, description,
	has_projector, has_audio_system, created_at, updated_at`

func scanVenue(row interface{ Scan(...interface{}) error }) (*model.Venue, error) {
	var v model.Venue
	var desc sql.NullString
	err := row.Scan(&v.ID, &v.Name, &v.Location, &v.Capacity, &v.AvailabilityStatus,
		&desc, &v.HasProjector, &v.HasAudioSystem, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		v.Description = &desc.String
	}
	return &v, nil
}

// Create inserts a new venue and reads the row back so timestamps and
// defaults are populated on the returned struct.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const q = `INSERT INTO venues (name, location, capacity, availability_status, description,
	           has_projector, has_audio_system) VALUES (?, ?, ?, ?, ?, ?, ?)`
	status := v.AvailabilityStatus
	if status == "" {
		status = model.VenueAvailable
	}
	res, err := r.db.ExecContext(ctx, q, v.Name, v.Location, v.Capacity, status,
		v.Description, v.HasProjector, v.HasAudioSystem)
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
	*v = *loaded
	return nil
}

// GetByID retrieves a venue by its ID. It returns ErrVenueNotFound when no
// row exists.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := scanVenue(r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	return v, err
}

// List returns all venues ordered by name.
func (r *VenueRepo) List(ctx context.Context) ([]*model.Venue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+venueColumns+` FROM venues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
