package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/queue"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
)

// VenueStore is the slice of venue persistence the booking service needs.
type VenueStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
}

// BookingStore persists venue booking rows.
type BookingStore interface {
	Create(ctx context.Context, b *model.VenueBooking) error
	GetByID(ctx context.Context, id uint64) (*model.VenueBooking, error)
	UpdateDecision(ctx context.Context, id uint64, status string, decidedBy uint64, reason *string) error
	UpdateStatus(ctx context.Context, id uint64, status string) error
	ListLive(ctx context.Context) ([]*model.VenueBooking, error)
}

// VenueBookingService orchestrates the booking approval workflow. The
// workflow and its interval index are the in-process authority on booking
// state; every decision is committed there first and persisted immediately
// after. A persistence failure after an in-memory commit means memory and
// database have diverged, which is not recoverable here: it is logged
// loudly for the external reconciliation process and surfaced to the
// caller.
type VenueBookingService struct {
	venues    VenueStore
	bookings  BookingStore
	workflow  *reservation.Workflow
	clock     Clock
	publisher DecisionPublisher
}

// NewVenueBookingService wires the service. publisher may be nil to
// disable decision events.
func NewVenueBookingService(venues VenueStore, bookings BookingStore, clock Clock, publisher DecisionPublisher) *VenueBookingService {
	return &VenueBookingService{
		venues:    venues,
		bookings:  bookings,
		workflow:  reservation.NewWorkflow(),
		clock:     clock,
		publisher: publisher,
	}
}

// Restore rebuilds the workflow from persisted PENDING and APPROVED
// bookings. Called once at startup before the HTTP server accepts traffic.
func (s *VenueBookingService) Restore(ctx context.Context) error {
	live, err := s.bookings.ListLive(ctx)
	if err != nil {
		return err
	}
	for _, b := range live {
		s.workflow.Restore(reservation.Booking{
			ID:        b.ID,
			VenueID:   b.VenueID,
			UserID:    b.UserID,
			Interval:  reservation.Interval{Start: b.StartsAt, End: b.EndsAt},
			State:     reservation.BookingState(b.Status),
			CreatedAt: b.CreatedAt,
		})
	}
	return nil
}

// Create validates the venue and interval, persists a PENDING booking and
// tracks it in the workflow. It fails with reservation.ErrConflictingInterval
// when the interval already collides with an approved booking; that check is
// advisory and the final authority stays with Approve.
func (s *VenueBookingService) Create(ctx context.Context, userID, venueID uint64, purpose string, start, end time.Time) (*model.VenueBooking, error) {
	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	if !v.Bookable() {
		return nil, ErrVenueUnavailable
	}
	iv := reservation.Interval{Start: start.UTC(), End: end.UTC()}
	if err := s.workflow.Precheck(venueID, iv); err != nil {
		return nil, err
	}
	b := &model.VenueBooking{
		VenueID:  venueID,
		UserID:   userID,
		Purpose:  purpose,
		StartsAt: iv.Start,
		EndsAt:   iv.End,
		Status:   string(reservation.BookingPending),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	if err := s.workflow.Submit(reservation.Booking{
		ID:        b.ID,
		VenueID:   b.VenueID,
		UserID:    b.UserID,
		Interval:  iv,
		CreatedAt: b.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return b, nil
}

// Approve re-validates the booking against all approved intervals on its
// venue and commits the approval. The re-check at approval time, not
// submission time, is what allows overlapping PENDING bookings while
// guaranteeing only one can ever be approved.
func (s *VenueBookingService) Approve(ctx context.Context, bookingID, approverID uint64) (*model.VenueBooking, error) {
	decided, err := s.workflow.Approve(bookingID, approverID)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateDecision(ctx, bookingID, string(decided.State), approverID, nil); err != nil {
		log.Printf("CRITICAL: booking %d approved in memory but not persisted: %v", bookingID, err)
		return nil, err
	}
	s.publish(ctx, decided, "")
	return s.bookings.GetByID(ctx, bookingID)
}

// Reject transitions a PENDING booking to REJECTED. An empty reason is
// replaced with a placeholder so the decision reason is never blank.
func (s *VenueBookingService) Reject(ctx context.Context, bookingID, approverID uint64, reason string) (*model.VenueBooking, error) {
	decided, err := s.workflow.Reject(bookingID, approverID, reason)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateDecision(ctx, bookingID, string(decided.State), approverID, &decided.Reason); err != nil {
		log.Printf("CRITICAL: booking %d rejected in memory but not persisted: %v", bookingID, err)
		return nil, err
	}
	s.publish(ctx, decided, decided.Reason)
	return s.bookings.GetByID(ctx, bookingID)
}

// Cancel withdraws an APPROVED booking, freeing its slot. Only the original
// requester or an administrator may cancel.
func (s *VenueBookingService) Cancel(ctx context.Context, bookingID, callerID uint64, callerRole string) error {
	b, err := s.workflow.Get(bookingID)
	if err != nil {
		return err
	}
	if callerRole != model.RoleAdmin && b.UserID != callerID {
		return reservation.ErrUnauthorized
	}
	decided, err := s.workflow.Cancel(bookingID)
	if err != nil {
		return err
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, string(decided.State)); err != nil {
		log.Printf("CRITICAL: booking %d cancelled in memory but not persisted: %v", bookingID, err)
		return err
	}
	return nil
}

func (s *VenueBookingService) publish(ctx context.Context, b reservation.Booking, reason string) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationDecidedEvent{
		Kind:       "venue_booking",
		RequestID:  b.ID,
		ResourceID: b.VenueID,
		UserID:     b.UserID,
		Outcome:    string(b.State),
		Reason:     reason,
		DecidedBy:  b.DecidedBy,
		DecidedAt:  s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishDecision(ctx, ev); err != nil {
		log.Printf("booking %d: decision event not published: %v", b.ID, err)
	}
}
