package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
)

type fakeVenueStore struct {
	venues map[uint64]*model.Venue
}

func (s *fakeVenueStore) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	v, ok := s.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

type fakeBookingStore struct {
	nextID   uint64
	rows     map[uint64]*model.VenueBooking
	failNext error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{rows: make(map[uint64]*model.VenueBooking)}
}

func (s *fakeBookingStore) Create(_ context.Context, b *model.VenueBooking) error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return err
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = testNow
	cp := *b
	s.rows[b.ID] = &cp
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uint64) (*model.VenueBooking, error) {
	b, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookingStore) UpdateDecision(_ context.Context, id uint64, status string, decidedBy uint64, reason *string) error {
	b, ok := s.rows[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	b.DecidedBy = &decidedBy
	b.DecisionReason = reason
	return nil
}

func (s *fakeBookingStore) UpdateStatus(_ context.Context, id uint64, status string) error {
	b, ok := s.rows[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (s *fakeBookingStore) ListLive(_ context.Context) ([]*model.VenueBooking, error) {
	var out []*model.VenueBooking
	for _, b := range s.rows {
		if b.Status == "PENDING" || b.Status == "APPROVED" {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newBookingFixture() (*VenueBookingService, *fakeBookingStore, *capturePublisher) {
	venues := &fakeVenueStore{venues: map[uint64]*model.Venue{
		1: {ID: 1, Name: "Main Hall", AvailabilityStatus: model.VenueAvailable},
		2: {ID: 2, Name: "Closed Lab", AvailabilityStatus: "UNAVAILABLE"},
	}}
	store := newFakeBookingStore()
	pub := &capturePublisher{}
	svc := NewVenueBookingService(venues, store, fixedClock{testNow}, pub)
	return svc, store, pub
}

func TestBookingCreateApproveLifecycle(t *testing.T) {
	svc, store, pub := newBookingFixture()
	ctx := context.Background()

	start := testNow.Add(24 * time.Hour)
	b, err := svc.Create(ctx, 7, 1, "study group", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != "PENDING" || b.ID == 0 {
		t.Fatalf("created booking = %+v", b)
	}

	approved, err := svc.Approve(ctx, b.ID, 99)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != "APPROVED" || approved.DecidedBy == nil || *approved.DecidedBy != 99 {
		t.Fatalf("approved booking = %+v", approved)
	}
	if store.rows[b.ID].Status != "APPROVED" {
		t.Fatal("approval not persisted")
	}
	if got := pub.outcomes(); len(got) != 1 || got[0] != "APPROVED" {
		t.Fatalf("published outcomes = %v", got)
	}
}

func TestBookingApprovalReValidates(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()

	start := testNow.Add(24 * time.Hour)
	// overlapping pending requests are both accepted
	b1, err := svc.Create(ctx, 7, 1, "lecture", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create b1: %v", err)
	}
	b2, err := svc.Create(ctx, 8, 1, "seminar", start.Add(30*time.Minute), start.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("create b2: %v", err)
	}

	if _, err := svc.Approve(ctx, b1.ID, 99); err != nil {
		t.Fatalf("approve b1: %v", err)
	}
	if _, err := svc.Approve(ctx, b2.ID, 99); !errors.Is(err, reservation.ErrConflictingInterval) {
		t.Fatalf("approve b2: got %v, want ErrConflictingInterval", err)
	}

	// after the slot collides with an approved booking, new submissions are
	// refused up front
	if _, err := svc.Create(ctx, 9, 1, "club", start, start.Add(time.Hour)); !errors.Is(err, reservation.ErrConflictingInterval) {
		t.Fatalf("create over approved: got %v", err)
	}
}

func TestBookingCreateValidation(t *testing.T) {
	svc, _, _ := newBookingFixture()
	ctx := context.Background()
	start := testNow.Add(time.Hour)

	if _, err := svc.Create(ctx, 7, 42, "x", start, start.Add(time.Hour)); !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("unknown venue: got %v", err)
	}
	if _, err := svc.Create(ctx, 7, 2, "x", start, start.Add(time.Hour)); !errors.Is(err, ErrVenueUnavailable) {
		t.Fatalf("unavailable venue: got %v", err)
	}
	if _, err := svc.Create(ctx, 7, 1, "x", start, start); !errors.Is(err, reservation.ErrInvalidInterval) {
		t.Fatalf("empty interval: got %v", err)
	}
}

func TestBookingRejectRecordsReason(t *testing.T) {
	svc, store, pub := newBookingFixture()
	ctx := context.Background()
	start := testNow.Add(time.Hour)

	b, err := svc.Create(ctx, 7, 1, "party", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rejected, err := svc.Reject(ctx, b.ID, 99, "")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != "REJECTED" {
		t.Fatalf("status = %s", rejected.Status)
	}
	row := store.rows[b.ID]
	if row.DecisionReason == nil || *row.DecisionReason != reservation.DefaultRejectReason {
		t.Fatalf("persisted reason = %v, want default", row.DecisionReason)
	}
	if got := pub.outcomes(); len(got) != 1 || got[0] != "REJECTED" {
		t.Fatalf("published outcomes = %v", got)
	}
}

func TestBookingCancelOwnership(t *testing.T) {
	svc, store, _ := newBookingFixture()
	ctx := context.Background()
	start := testNow.Add(time.Hour)

	b, err := svc.Create(ctx, 7, 1, "review", start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Approve(ctx, b.ID, 99); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := svc.Cancel(ctx, b.ID, 8, model.RoleStudent); !errors.Is(err, reservation.ErrUnauthorized) {
		t.Fatalf("cancel by stranger: got %v", err)
	}
	if err := svc.Cancel(ctx, b.ID, 7, model.RoleStudent); err != nil {
		t.Fatalf("cancel by owner: %v", err)
	}
	if store.rows[b.ID].Status != "CANCELLED" {
		t.Fatal("cancellation not persisted")
	}
	// terminal: a second cancel fails
	if err := svc.Cancel(ctx, b.ID, 7, model.RoleStudent); !errors.Is(err, reservation.ErrInvalidTransition) {
		t.Fatalf("second cancel: got %v", err)
	}
}

func TestBookingRestoreRebuildsIndex(t *testing.T) {
	venues := &fakeVenueStore{venues: map[uint64]*model.Venue{
		1: {ID: 1, AvailabilityStatus: model.VenueAvailable},
	}}
	store := newFakeBookingStore()
	start := testNow.Add(time.Hour)
	store.rows[5] = &model.VenueBooking{
		ID: 5, VenueID: 1, UserID: 7, Status: "APPROVED",
		StartsAt: start, EndsAt: start.Add(time.Hour),
	}
	store.nextID = 5

	svc := NewVenueBookingService(venues, store, fixedClock{testNow}, nil)
	if err := svc.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	// the restored approval occupies its slot
	_, err := svc.Create(context.Background(), 8, 1, "x", start.Add(30*time.Minute), start.Add(90*time.Minute))
	if !errors.Is(err, reservation.ErrConflictingInterval) {
		t.Fatalf("create over restored: got %v", err)
	}
}
