package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
)

type fakeEventStore struct {
	nextID uint64
	events map[uint64]*model.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[uint64]*model.Event)}
}

func (s *fakeEventStore) Create(_ context.Context, e *model.Event) error {
	s.nextID++
	e.ID = s.nextID
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *fakeEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeEventStore) UpdateApproval(_ context.Context, id uint64, status string) error {
	e, ok := s.events[id]
	if !ok {
		return repository.ErrEventNotFound
	}
	e.ApprovalStatus = status
	return nil
}

func (s *fakeEventStore) ListPublicApproved(_ context.Context) ([]*model.Event, error) {
	var out []*model.Event
	for _, e := range s.events {
		if e.IsPublic && e.ApprovalStatus == model.EventApproved {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeEventStore) ListUpcoming(_ context.Context) ([]*model.Event, error) {
	var out []*model.Event
	for _, e := range s.events {
		if e.ApprovalStatus == model.EventApproved && e.StartsAt.After(testNow) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeRegistrationStore guards its rows with a mutex so tests can hit it
// from concurrent goroutines the way the real MySQL store is hit.
type fakeRegistrationStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.EventRegistration
}

func newFakeRegistrationStore() *fakeRegistrationStore {
	return &fakeRegistrationStore{rows: make(map[uint64]*model.EventRegistration)}
}

func (s *fakeRegistrationStore) Create(_ context.Context, g *model.EventRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.EventID == g.EventID && r.UserID == g.UserID &&
			(r.Status == "REGISTERED" || r.Status == "WAITLISTED") {
			return repository.ErrDuplicate
		}
	}
	s.nextID++
	g.ID = s.nextID
	g.CreatedAt = testNow
	cp := *g
	s.rows[g.ID] = &cp
	return nil
}

func (s *fakeRegistrationStore) GetByID(_ context.Context, id uint64) (*model.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrRegistrationNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *fakeRegistrationStore) ActiveForEventAndUser(_ context.Context, eventID, userID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.EventID == eventID && r.UserID == userID &&
			(r.Status == "REGISTERED" || r.Status == "WAITLISTED") {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRegistrationStore) UpdateStatus(_ context.Context, id uint64, status string, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.rows[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	g.Status = status
	if reason != nil {
		g.CancellationReason = reason
	}
	return nil
}

func (s *fakeRegistrationStore) PromoteAll(_ context.Context, ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if g, ok := s.rows[id]; ok && g.Status == "WAITLISTED" {
			g.Status = "REGISTERED"
		}
	}
	return nil
}

func (s *fakeRegistrationStore) SetAttended(_ context.Context, id uint64, attended bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.rows[id]
	if !ok {
		return repository.ErrRegistrationNotFound
	}
	g.Attended = attended
	return nil
}

func (s *fakeRegistrationStore) ListByUser(_ context.Context, userID uint64) ([]*model.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.EventRegistration
	for _, g := range s.rows {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRegistrationStore) ListByEvent(_ context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.EventRegistration
	for _, g := range s.rows {
		if g.EventID == eventID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRegistrationStore) ListRegistered(_ context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.EventRegistration
	for id := uint64(1); id <= s.nextID; id++ { // created_at order
		if g, ok := s.rows[id]; ok && g.EventID == eventID && g.Status == "REGISTERED" {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRegistrationStore) ListWaitlisted(_ context.Context, eventID uint64) ([]*model.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.EventRegistration
	for id := uint64(1); id <= s.nextID; id++ { // created_at order
		if g, ok := s.rows[id]; ok && g.EventID == eventID && g.Status == "WAITLISTED" {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeRegistrationStore) CountRegistered(_ context.Context, eventID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.rows {
		if g.EventID == eventID && g.Status == "REGISTERED" {
			n++
		}
	}
	return n, nil
}

func newRegistrationFixture(capacity uint32) (*EventRegistrationService, *fakeEventStore, *fakeRegistrationStore, *capturePublisher) {
	events := newFakeEventStore()
	rows := newFakeRegistrationStore()
	pub := &capturePublisher{}
	svc := NewEventRegistrationService(events, rows, fixedClock{testNow}, pub)
	events.Create(context.Background(), &model.Event{
		Title:          "Tech Talk",
		OrganizerID:    50,
		StartsAt:       testNow.Add(48 * time.Hour),
		EndsAt:         testNow.Add(50 * time.Hour),
		MaxAttendees:   capacity,
		IsPublic:       true,
		ApprovalStatus: model.EventApproved,
	})
	return svc, events, rows, pub
}

func TestRegisterUntilFullThenWaitlist(t *testing.T) {
	svc, _, rows, pub := newRegistrationFixture(2)
	ctx := context.Background()

	for user := uint64(1); user <= 2; user++ {
		g, err := svc.Register(ctx, 1, user)
		if err != nil {
			t.Fatalf("register user %d: %v", user, err)
		}
		if g.Status != "REGISTERED" {
			t.Fatalf("user %d status = %s", user, g.Status)
		}
	}
	g, err := svc.Register(ctx, 1, 3)
	if err != nil {
		t.Fatalf("register user 3: %v", err)
	}
	if g.Status != "WAITLISTED" {
		t.Fatalf("user 3 status = %s, want WAITLISTED", g.Status)
	}
	if len(rows.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows.rows))
	}
	want := []string{"REGISTERED", "REGISTERED", "WAITLISTED"}
	got := pub.outcomes()
	if len(got) != len(want) {
		t.Fatalf("outcomes = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("outcomes = %v, want %v", got, want)
		}
	}
}

func TestRegisterPredicates(t *testing.T) {
	svc, events, _, _ := newRegistrationFixture(5)
	ctx := context.Background()

	if _, err := svc.Register(ctx, 42, 1); !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("unknown event: got %v", err)
	}

	events.Create(ctx, &model.Event{ // private
		StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
		MaxAttendees: 5, IsPublic: false, ApprovalStatus: model.EventApproved,
	})
	if _, err := svc.Register(ctx, 2, 1); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("private event: got %v", err)
	}

	events.Create(ctx, &model.Event{ // unapproved
		StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
		MaxAttendees: 5, IsPublic: true, ApprovalStatus: "PENDING",
	})
	if _, err := svc.Register(ctx, 3, 1); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("unapproved event: got %v", err)
	}

	events.Create(ctx, &model.Event{ // already started
		StartsAt: testNow.Add(-time.Hour), EndsAt: testNow.Add(time.Hour),
		MaxAttendees: 5, IsPublic: true, ApprovalStatus: model.EventApproved,
	})
	if _, err := svc.Register(ctx, 4, 1); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("started event: got %v", err)
	}

	// double registration
	if _, err := svc.Register(ctx, 1, 1); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, 1, 1); !errors.Is(err, reservation.ErrAlreadyRegistered) {
		t.Fatalf("second register: got %v", err)
	}
}

func TestCancelPromotesFIFO(t *testing.T) {
	svc, _, rows, pub := newRegistrationFixture(1)
	ctx := context.Background()

	g1, _ := svc.Register(ctx, 1, 1) // registered
	g2, _ := svc.Register(ctx, 1, 2) // waitlisted first
	g3, _ := svc.Register(ctx, 1, 3) // waitlisted second
	if g2.Status != "WAITLISTED" || g3.Status != "WAITLISTED" {
		t.Fatalf("waitlist setup: %s %s", g2.Status, g3.Status)
	}

	if err := svc.Cancel(ctx, g1.ID, 1, model.RoleStudent, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if rows.rows[g1.ID].Status != "CANCELED" {
		t.Fatalf("g1 status = %s", rows.rows[g1.ID].Status)
	}
	if rows.rows[g2.ID].Status != "REGISTERED" {
		t.Fatalf("g2 should be promoted first, status = %s", rows.rows[g2.ID].Status)
	}
	if rows.rows[g3.ID].Status != "WAITLISTED" {
		t.Fatalf("g3 must stay waitlisted, status = %s", rows.rows[g3.ID].Status)
	}
	got := pub.outcomes()
	if got[len(got)-1] != "PROMOTED" {
		t.Fatalf("outcomes = %v, want trailing PROMOTED", got)
	}

	// a re-registration after cancellation is allowed
	if _, err := svc.Register(ctx, 1, 1); err != nil {
		t.Fatalf("re-register after cancel: %v", err)
	}
}

func TestCancelRules(t *testing.T) {
	svc, _, rows, _ := newRegistrationFixture(2)
	ctx := context.Background()

	g, _ := svc.Register(ctx, 1, 1)
	if err := svc.Cancel(ctx, g.ID, 2, model.RoleStudent, nil); !errors.Is(err, reservation.ErrUnauthorized) {
		t.Fatalf("cancel by stranger: got %v", err)
	}
	// admin may cancel on the user's behalf
	reason := "event staff request"
	if err := svc.Cancel(ctx, g.ID, 2, model.RoleAdmin, &reason); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if r := rows.rows[g.ID].CancellationReason; r == nil || *r != reason {
		t.Fatalf("reason = %v", r)
	}
	// terminal
	if err := svc.Cancel(ctx, g.ID, 1, model.RoleStudent, nil); !errors.Is(err, reservation.ErrInvalidTransition) {
		t.Fatalf("cancel canceled: got %v", err)
	}
	// the attendance flag still moves in the terminal state
	if err := svc.SetAttended(ctx, g.ID, true); err != nil {
		t.Fatalf("set attended: %v", err)
	}
	if !rows.rows[g.ID].Attended {
		t.Fatal("attended flag not persisted")
	}
}

func TestConcurrentCancelsReleaseSeatOnce(t *testing.T) {
	svc, _, rows, _ := newRegistrationFixture(2)
	ctx := context.Background()

	g1, err := svc.Register(ctx, 1, 1)
	if err != nil {
		t.Fatalf("register user 1: %v", err)
	}
	if _, err := svc.Register(ctx, 1, 2); err != nil {
		t.Fatalf("register user 2: %v", err)
	}

	// both cancels target user 1's registration; only one may free the seat
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Cancel(ctx, g1.ID, 1, model.RoleStudent, nil)
			if err == nil {
				atomic.AddInt64(&wins, 1)
			} else if !errors.Is(err, reservation.ErrInvalidTransition) {
				t.Errorf("cancel: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("successful cancels = %d, want 1", wins)
	}
	taken, open, _, err := svc.Availability(ctx, 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	// user 2 still holds a counted seat; the other seat is open, not leaked
	if taken != 1 || open != 1 {
		t.Fatalf("availability = %d taken / %d open, want 1/1", taken, open)
	}
	if rows.rows[g1.ID].Status != "CANCELED" {
		t.Fatalf("g1 status = %s", rows.rows[g1.ID].Status)
	}
}

func TestApproveEventOpensRegistration(t *testing.T) {
	svc, events, _, _ := newRegistrationFixture(2)
	ctx := context.Background()

	e := &model.Event{
		Title: "Guest Lecture", OrganizerID: 9,
		StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
		MaxAttendees: 1, IsPublic: true,
	}
	if err := svc.CreateEvent(ctx, e, model.RoleFaculty); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Register(ctx, e.ID, 1); !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("register before approval: got %v", err)
	}

	approved, err := svc.ApproveEvent(ctx, e.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.ApprovalStatus != model.EventApproved {
		t.Fatalf("status = %s", approved.ApprovalStatus)
	}
	if events.events[e.ID].ApprovalStatus != model.EventApproved {
		t.Fatal("approval not persisted")
	}

	g, err := svc.Register(ctx, e.ID, 1)
	if err != nil {
		t.Fatalf("register after approval: %v", err)
	}
	if g.Status != "REGISTERED" {
		t.Fatalf("status = %s", g.Status)
	}

	// the approval is one-way and one-time
	if _, err := svc.ApproveEvent(ctx, e.ID); !errors.Is(err, reservation.ErrInvalidTransition) {
		t.Fatalf("second approve: got %v", err)
	}
	if _, err := svc.ApproveEvent(ctx, 99); !errors.Is(err, reservation.ErrNotFound) {
		t.Fatalf("approve unknown event: got %v", err)
	}
}

func TestRestoreRebuildsPoolAndWaitlist(t *testing.T) {
	svc, events, rows, _ := newRegistrationFixture(2)
	ctx := context.Background()

	svc.Register(ctx, 1, 1)
	svc.Register(ctx, 1, 2)
	svc.Register(ctx, 1, 3) // waitlisted

	// a fresh service over the same stores simulates a restart
	svc2 := NewEventRegistrationService(events, rows, fixedClock{testNow}, nil)
	if err := svc2.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	taken, open, waiting, err := svc2.Availability(ctx, 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if taken != 2 || open != 0 || waiting != 1 {
		t.Fatalf("availability = %d/%d/%d, want 2/0/1", taken, open, waiting)
	}

	// a cancellation in the new process still promotes the restored entry
	if err := svc2.Cancel(ctx, 1, 1, model.RoleStudent, nil); err != nil {
		t.Fatalf("cancel after restore: %v", err)
	}
	if rows.rows[3].Status != "REGISTERED" {
		t.Fatalf("restored waitlist entry not promoted: %s", rows.rows[3].Status)
	}
}

func TestCreateEventApproval(t *testing.T) {
	svc, events, _, _ := newRegistrationFixture(2)
	ctx := context.Background()

	e := &model.Event{
		Title: "Faculty Workshop", OrganizerID: 9,
		StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
		MaxAttendees: 10, IsPublic: true,
	}
	if err := svc.CreateEvent(ctx, e, model.RoleFaculty); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ApprovalStatus != "PENDING" {
		t.Fatalf("faculty event status = %s, want PENDING", e.ApprovalStatus)
	}

	e2 := &model.Event{
		Title: "Admin Briefing", OrganizerID: 1,
		StartsAt: testNow.Add(time.Hour), EndsAt: testNow.Add(2 * time.Hour),
		MaxAttendees: 10, IsPublic: true,
	}
	if err := svc.CreateEvent(ctx, e2, model.RoleAdmin); err != nil {
		t.Fatalf("create admin event: %v", err)
	}
	if e2.ApprovalStatus != model.EventApproved {
		t.Fatalf("admin event status = %s, want APPROVED", e2.ApprovalStatus)
	}
	if events.events[e2.ID].ApprovalStatus != model.EventApproved {
		t.Fatal("approval not persisted")
	}
}
