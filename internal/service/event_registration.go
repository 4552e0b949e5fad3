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

// EventStore is the slice of event persistence the registration service
// needs.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	UpdateApproval(ctx context.Context, id uint64, status string) error
	ListPublicApproved(ctx context.Context) ([]*model.Event, error)
	ListUpcoming(ctx context.Context) ([]*model.Event, error)
}

// RegistrationStore persists event registration rows.
type RegistrationStore interface {
	Create(ctx context.Context, g *model.EventRegistration) error
	GetByID(ctx context.Context, id uint64) (*model.EventRegistration, error)
	ActiveForEventAndUser(ctx context.Context, eventID, userID uint64) (bool, error)
	UpdateStatus(ctx context.Context, id uint64, status string, reason *string) error
	PromoteAll(ctx context.Context, ids []uint64) error
	SetAttended(ctx context.Context, id uint64, attended bool) error
	ListByUser(ctx context.Context, userID uint64) ([]*model.EventRegistration, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error)
	ListRegistered(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error)
	ListWaitlisted(ctx context.Context, eventID uint64) ([]*model.EventRegistration, error)
	CountRegistered(ctx context.Context, eventID uint64) (int, error)
}

// EventRegistrationService orchestrates seat claims against the per-event
// ledgers. The ledger decides REGISTERED versus WAITLISTED and runs the
// FIFO promotion on cancellation; the service handles the surrounding
// predicates, persistence and decision events.
type EventRegistrationService struct {
	events        EventStore
	registrations RegistrationStore
	ledgers       *reservation.EventLedgerSet
	clock         Clock
	publisher     DecisionPublisher
}

// NewEventRegistrationService wires the service. publisher may be nil to
// disable decision events.
func NewEventRegistrationService(events EventStore, registrations RegistrationStore, clock Clock, publisher DecisionPublisher) *EventRegistrationService {
	return &EventRegistrationService{
		events:        events,
		registrations: registrations,
		ledgers:       reservation.NewEventLedgerSet(),
		clock:         clock,
		publisher:     publisher,
	}
}

// Restore rebuilds the seat ledgers for upcoming approved events: every
// REGISTERED row re-claims its seat and the waitlist is re-queued in
// created_at order, so the ledgers know each live claim by ID. Called once
// at startup.
func (s *EventRegistrationService) Restore(ctx context.Context) error {
	upcoming, err := s.events.ListUpcoming(ctx)
	if err != nil {
		return err
	}
	for _, e := range upcoming {
		ledger := s.ledgers.Ensure(e.ID, int(e.MaxAttendees), 0)
		seated, err := s.registrations.ListRegistered(ctx, e.ID)
		if err != nil {
			return err
		}
		for _, g := range seated {
			ledger.RestoreRegistered(g.ID)
		}
		waiting, err := s.registrations.ListWaitlisted(ctx, e.ID)
		if err != nil {
			return err
		}
		for _, g := range waiting {
			ledger.RestoreWaitlisted(g.ID, g.CreatedAt)
		}
	}
	return nil
}

// CreateEvent persists a new event. Events created by administrators are
// approved immediately; everyone else's start PENDING.
func (s *EventRegistrationService) CreateEvent(ctx context.Context, e *model.Event, creatorRole string) error {
	if creatorRole == model.RoleAdmin {
		e.ApprovalStatus = model.EventApproved
	} else if e.ApprovalStatus == "" {
		e.ApprovalStatus = model.EventPending
	}
	if err := s.events.Create(ctx, e); err != nil {
		return err
	}
	if e.ApprovalStatus == model.EventApproved {
		s.ledgers.Ensure(e.ID, int(e.MaxAttendees), 0)
	}
	return nil
}

// ApproveEvent moves a PENDING event to APPROVED and opens its seat ledger.
// Approving an event that is not PENDING fails with
// reservation.ErrInvalidTransition.
func (s *EventRegistrationService) ApproveEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	if e.ApprovalStatus != model.EventPending {
		return nil, reservation.ErrInvalidTransition
	}
	if err := s.events.UpdateApproval(ctx, eventID, model.EventApproved); err != nil {
		return nil, err
	}
	e.ApprovalStatus = model.EventApproved
	s.ledgers.Ensure(e.ID, int(e.MaxAttendees), 0)
	return e, nil
}

// Register claims a seat for the user. When the event is full the claim is
// queued and the returned registration carries WAITLISTED status; capacity
// exhaustion is an outcome, not an error. It fails with
// ErrRegistrationClosed when the event is private, unapproved or already
// started, and with reservation.ErrAlreadyRegistered when the user already
// holds a live registration.
func (s *EventRegistrationService) Register(ctx context.Context, eventID, userID uint64) (*model.EventRegistration, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	if !e.IsPublic || e.ApprovalStatus != model.EventApproved || !e.StartsAt.After(s.clock.Now()) {
		return nil, ErrRegistrationClosed
	}
	taken, err := s.registrations.ActiveForEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, reservation.ErrAlreadyRegistered
	}

	ledger := s.ledgers.Ensure(eventID, int(e.MaxAttendees), 0)
	var g *model.EventRegistration
	state, err := ledger.Register(s.clock.Now(), func(state reservation.RegistrationState) (uint64, error) {
		g = &model.EventRegistration{EventID: eventID, UserID: userID, Status: string(state)}
		if err := s.registrations.Create(ctx, g); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return 0, reservation.ErrAlreadyRegistered
			}
			return 0, err
		}
		return g.ID, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, g, string(state), "")
	return g, nil
}

// Cancel withdraws a registration, frees its seat when it held one and
// promotes waitlisted claims in FIFO order. Only the registrant or an
// administrator may cancel; cancelling an already-canceled registration
// fails with reservation.ErrInvalidTransition. When the event has a live
// ledger the transition is decided there, under the ledger lock, so two
// concurrent cancels of the same registration release its seat exactly once.
func (s *EventRegistrationService) Cancel(ctx context.Context, registrationID, callerID uint64, callerRole string, reason *string) error {
	g, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if callerRole != model.RoleAdmin && g.UserID != callerID {
		return reservation.ErrUnauthorized
	}

	var promoted []uint64
	if ledger := s.ledgers.Get(g.EventID); ledger != nil {
		promoted, err = ledger.Cancel(g.ID)
		if err != nil {
			return err
		}
	} else {
		// No ledger means the event is past or was never approved; nothing
		// holds capacity, only the row's own state guards the transition.
		if g.Status != string(reservation.Registered) && g.Status != string(reservation.Waitlisted) {
			return reservation.ErrInvalidTransition
		}
	}
	if err := s.registrations.UpdateStatus(ctx, g.ID, string(reservation.Withdrawn), reason); err != nil {
		log.Printf("CRITICAL: registration %d canceled in memory but not persisted: %v", g.ID, err)
		return err
	}
	if err := s.registrations.PromoteAll(ctx, promoted); err != nil {
		log.Printf("CRITICAL: registrations %v promoted in memory but not persisted: %v", promoted, err)
		return err
	}
	for _, id := range promoted {
		if pg, err := s.registrations.GetByID(ctx, id); err == nil {
			s.publish(ctx, pg, "PROMOTED", "")
		}
	}
	return nil
}

// SetAttended flips the attendance audit flag. The flag stays writable
// after the registration reaches a terminal state; it is the one field the
// terminal rule does not freeze.
func (s *EventRegistrationService) SetAttended(ctx context.Context, registrationID uint64, attended bool) error {
	return s.registrations.SetAttended(ctx, registrationID, attended)
}

// Availability reports the live seat picture for an event: seats taken,
// seats open and the waitlist length.
func (s *EventRegistrationService) Availability(ctx context.Context, eventID uint64) (taken, open, waiting int, err error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, 0, 0, err
	}
	ledger := s.ledgers.Get(eventID)
	if ledger == nil {
		taken, err = s.registrations.CountRegistered(ctx, eventID)
		if err != nil {
			return 0, 0, 0, err
		}
		return taken, int(e.MaxAttendees) - taken, 0, nil
	}
	taken = ledger.Reserved()
	return taken, int(e.MaxAttendees) - taken, ledger.Waiting(), nil
}

func (s *EventRegistrationService) publish(ctx context.Context, g *model.EventRegistration, outcome, reason string) {
	if s.publisher == nil || g == nil {
		return
	}
	ev := queue.ReservationDecidedEvent{
		Kind:       "event_registration",
		RequestID:  g.ID,
		ResourceID: g.EventID,
		UserID:     g.UserID,
		Outcome:    outcome,
		Reason:     reason,
		DecidedAt:  s.clock.Now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishDecision(ctx, ev); err != nil {
		log.Printf("registration %d: decision event not published: %v", g.ID, err)
	}
}
