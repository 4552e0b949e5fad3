package reservation

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEventLedgerRegisterThenWaitlist(t *testing.T) {
	l := NewEventLedger(1, 0)
	now := time.Now().UTC()
	nextID := uint64(0)
	persist := func(state RegistrationState) (uint64, error) {
		nextID++
		return nextID, nil
	}

	state, err := l.Register(now, persist)
	if err != nil || state != Registered {
		t.Fatalf("first register: state=%v err=%v", state, err)
	}
	state, err = l.Register(now.Add(time.Second), persist)
	if err != nil || state != Waitlisted {
		t.Fatalf("second register: state=%v err=%v", state, err)
	}
	if l.Reserved() != 1 || l.Waiting() != 1 {
		t.Fatalf("reserved=%d waiting=%d, want 1/1", l.Reserved(), l.Waiting())
	}

	// cancelling the registered claim promotes the waitlisted one
	promoted, err := l.Cancel(1)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(promoted) != 1 || promoted[0] != 2 {
		t.Fatalf("promoted = %v, want [2]", promoted)
	}
	if l.Reserved() != 1 || l.Waiting() != 0 {
		t.Fatalf("after promote: reserved=%d waiting=%d, want 1/0", l.Reserved(), l.Waiting())
	}
}

func TestEventLedgerCancelWaitlisted(t *testing.T) {
	l := NewEventLedger(1, 1)
	now := time.Now().UTC()
	id := uint64(10)
	state, err := l.Register(now, func(RegistrationState) (uint64, error) { return id, nil })
	if err != nil || state != Waitlisted {
		t.Fatalf("register: state=%v err=%v", state, err)
	}
	promoted, err := l.Cancel(id)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if promoted != nil {
		t.Fatalf("cancelling a waitlisted claim must not promote: %v", promoted)
	}
	if l.Reserved() != 1 || l.Waiting() != 0 {
		t.Fatalf("reserved=%d waiting=%d, want 1/0", l.Reserved(), l.Waiting())
	}
}

func TestEventLedgerConcurrentCancelReleasesOnce(t *testing.T) {
	l := NewEventLedger(2, 0)
	now := time.Now().UTC()
	for id := uint64(1); id <= 2; id++ {
		claimed := id
		state, err := l.Register(now, func(RegistrationState) (uint64, error) { return claimed, nil })
		if err != nil || state != Registered {
			t.Fatalf("register %d: state=%v err=%v", claimed, state, err)
		}
	}

	// both cancels target claim 1; exactly one may win and free its seat
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Cancel(1); err == nil {
				atomic.AddInt64(&wins, 1)
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("cancel: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("successful cancels = %d, want 1", wins)
	}
	if l.Reserved() != 1 {
		t.Fatalf("reserved = %d, want 1 (claim 2 still holds its seat)", l.Reserved())
	}
}

func TestEventLedgerCancelUnknownClaim(t *testing.T) {
	l := NewEventLedger(2, 0)
	if _, err := l.Cancel(99); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel of untracked claim: got %v", err)
	}
}

func TestEventLedgerPersistFailureReleasesSeat(t *testing.T) {
	l := NewEventLedger(2, 0)
	boom := errors.New("insert failed")
	_, err := l.Register(time.Now().UTC(), func(RegistrationState) (uint64, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want insert failure", err)
	}
	if l.Reserved() != 0 {
		t.Fatalf("reserved = %d, want 0 after failed persist", l.Reserved())
	}
}

func TestEventLedgerConcurrentNoOversell(t *testing.T) {
	const capacity = 10
	const attempts = 100
	l := NewEventLedger(capacity, 0)
	var nextID uint64
	var registered, waitlisted int64

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := l.Register(time.Now().UTC(), func(RegistrationState) (uint64, error) {
				return atomic.AddUint64(&nextID, 1), nil
			})
			if err != nil {
				t.Error(err)
				return
			}
			if state == Registered {
				atomic.AddInt64(&registered, 1)
			} else {
				atomic.AddInt64(&waitlisted, 1)
			}
		}()
	}
	wg.Wait()

	if registered != capacity {
		t.Fatalf("registered = %d, want %d", registered, capacity)
	}
	if waitlisted != attempts-capacity {
		t.Fatalf("waitlisted = %d, want %d", waitlisted, attempts-capacity)
	}
	if l.Reserved() != capacity || l.Waiting() != attempts-capacity {
		t.Fatalf("reserved=%d waiting=%d", l.Reserved(), l.Waiting())
	}
}

func TestRideLedgerSeatCounter(t *testing.T) {
	l := NewRideLedger(4)

	remaining, full, err := l.Request(2, nil)
	if err != nil || remaining != 2 || full {
		t.Fatalf("request 2: remaining=%d full=%v err=%v", remaining, full, err)
	}
	if _, _, err := l.Request(3, nil); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("request 3 of 2: got %v", err)
	}
	if l.Available() != 2 {
		t.Fatalf("failed request moved the counter: available = %d", l.Available())
	}
	remaining, full, err = l.Request(2, nil)
	if err != nil || remaining != 0 || !full {
		t.Fatalf("request last 2: remaining=%d full=%v err=%v", remaining, full, err)
	}
	if _, _, err := l.Request(1, nil); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("request on full ride: got %v", err)
	}
}

func TestRideLedgerPersistFailureKeepsCounter(t *testing.T) {
	l := NewRideLedger(4)
	boom := errors.New("insert failed")
	_, _, err := l.Request(2, func(int, bool) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want persist failure", err)
	}
	if l.Available() != 4 {
		t.Fatalf("available = %d, want 4 after failed persist", l.Available())
	}
	// counters seen by persist reflect the claim order
	var seen []int
	for i := 0; i < 2; i++ {
		if _, _, err := l.Request(1, func(remaining int, _ bool) error {
			seen = append(seen, remaining)
			return nil
		}); err != nil {
			t.Fatalf("request: %v", err)
		}
	}
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 2 {
		t.Fatalf("persisted counters = %v, want [3 2]", seen)
	}
}

func TestRideLedgerSeatBounds(t *testing.T) {
	l := NewRideLedger(8)
	for _, seats := range []int{0, -2, MaxRideSeats + 1} {
		if _, _, err := l.Request(seats, nil); !errors.Is(err, ErrInvalidUnitCount) {
			t.Errorf("Request(%d): got %v, want ErrInvalidUnitCount", seats, err)
		}
	}
}

func TestRideLedgerConcurrentClaims(t *testing.T) {
	const seats = 8
	l := NewRideLedger(seats)
	var won int64
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := l.Request(1, nil); err == nil {
				atomic.AddInt64(&won, 1)
			}
		}()
	}
	wg.Wait()
	if won != seats {
		t.Fatalf("claims won = %d, want %d", won, seats)
	}
	if l.Available() != 0 {
		t.Fatalf("available = %d, want 0", l.Available())
	}
}

func TestRideRequestTransitions(t *testing.T) {
	cases := []struct {
		from, to RideRequestState
		want     bool
	}{
		{RequestPending, RequestAccepted, true},
		{RequestPending, RequestRejected, true},
		{RequestAccepted, RequestCompleted, true},
		{RequestPending, RequestCompleted, false},
		{RequestRejected, RequestAccepted, false},
		{RequestCompleted, RequestPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestLedgerSetsEnsureOnce(t *testing.T) {
	es := NewEventLedgerSet()
	a := es.Ensure(1, 5, 0)
	b := es.Ensure(1, 99, 99) // later counters ignored
	if a != b {
		t.Fatal("Ensure returned a different ledger for the same event")
	}
	if es.Get(2) != nil {
		t.Fatal("Get of unknown event should be nil")
	}

	rs := NewRideLedgerSet()
	x := rs.Ensure(7, 4)
	y := rs.Ensure(7, 1)
	if x != y {
		t.Fatal("Ensure returned a different ledger for the same ride")
	}
	if x.Available() != 4 {
		t.Fatalf("available = %d, want first-sight value 4", x.Available())
	}
}
