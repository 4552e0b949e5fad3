package reservation

import (
	"sync"
	"time"
)

// BookingState enumerates the lifecycle of a venue booking. Values match the
// status column of the venue_bookings table.
type BookingState string

const (
	BookingPending  BookingState = "PENDING"
	BookingApproved BookingState = "APPROVED"
	BookingRejected BookingState = "REJECTED"
	BookingCanceled BookingState = "CANCELLED"
)

// bookingTransitions is the closed transition table. Any pair not listed is
// rejected with ErrInvalidTransition, which also makes REJECTED and
// CANCELLED terminal.
var bookingTransitions = map[BookingState][]BookingState{
	BookingPending:  {BookingApproved, BookingRejected},
	BookingApproved: {BookingCanceled},
}

// CanTransition reports whether moving from s to next is in the table.
func (s BookingState) CanTransition(next BookingState) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s BookingState) Terminal() bool { return len(bookingTransitions[s]) == 0 }

// DefaultRejectReason is recorded when a rejection arrives without a reason
// so the decision reason is never empty.
const DefaultRejectReason = "No reason provided"

// Booking is the ledger's view of a venue booking request. Fields are only
// mutated by Workflow methods while the venue lock is held; callers receive
// copies.
type Booking struct {
	ID        uint64
	VenueID   uint64
	UserID    uint64
	Interval  Interval
	State     BookingState
	Reason    string
	DecidedBy uint64
	CreatedAt time.Time
}

// Workflow owns every venue booking's lifecycle and the venue interval
// index. A PENDING booking does not occupy its slot: several overlapping
// PENDING bookings may coexist, and the winner is decided at approval time by
// re-validating against the index. All check-and-mutate sequences for one
// venue run under that venue's mutex, so two approvals for the same venue
// serialize while different venues proceed in parallel.
type Workflow struct {
	mu       sync.RWMutex // guards bookings and locks maps
	bookings map[uint64]*Booking
	locks    map[uint64]*sync.Mutex // one per venue
	idx      *ConflictIndex
}

// NewWorkflow returns an empty workflow with its own conflict index.
func NewWorkflow() *Workflow {
	return &Workflow{
		bookings: make(map[uint64]*Booking),
		locks:    make(map[uint64]*sync.Mutex),
		idx:      NewConflictIndex(),
	}
}

func (w *Workflow) venueLock(venueID uint64) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[venueID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[venueID] = l
	}
	return l
}

func (w *Workflow) booking(id uint64) (*Booking, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.bookings[id]
	return b, ok
}

// Precheck validates the interval and runs the advisory conflict check
// against currently approved intervals. It spares callers an obviously
// doomed submission, but the final authority is Approve: several
// overlapping PENDING bookings may coexist after passing Precheck.
func (w *Workflow) Precheck(venueID uint64, iv Interval) error {
	if _, err := NewInterval(iv.Start, iv.End); err != nil {
		return err
	}
	if w.idx.HasConflict(venueID, iv, 0) {
		return ErrConflictingInterval
	}
	return nil
}

// Submit registers a booking as PENDING. The booking ID must already be
// assigned (the persisted row's primary key). Submission never fails on
// conflict because PENDING bookings do not occupy their slot.
func (w *Workflow) Submit(b Booking) error {
	if _, err := NewInterval(b.Interval.Start, b.Interval.End); err != nil {
		return err
	}
	b.State = BookingPending
	w.mu.Lock()
	w.bookings[b.ID] = &b
	w.mu.Unlock()
	return nil
}

// Approve re-validates the booking's interval against all approved intervals
// on its venue (excluding itself) and, on success, indexes the interval and
// transitions PENDING to APPROVED. On conflict the booking stays PENDING and
// ErrConflictingInterval is returned; the caller must reject or resubmit.
func (w *Workflow) Approve(bookingID, approverID uint64) (Booking, error) {
	b, ok := w.booking(bookingID)
	if !ok {
		return Booking{}, ErrNotFound
	}
	l := w.venueLock(b.VenueID)
	l.Lock()
	defer l.Unlock()
	if !b.State.CanTransition(BookingApproved) {
		return Booking{}, ErrInvalidTransition
	}
	if w.idx.HasConflict(b.VenueID, b.Interval, b.ID) {
		return Booking{}, ErrConflictingInterval
	}
	w.idx.Insert(b.VenueID, b.ID, b.Interval)
	b.State = BookingApproved
	b.DecidedBy = approverID
	return *b, nil
}

// Reject transitions PENDING to REJECTED with the given reason. An empty
// reason is replaced by DefaultRejectReason.
func (w *Workflow) Reject(bookingID, approverID uint64, reason string) (Booking, error) {
	b, ok := w.booking(bookingID)
	if !ok {
		return Booking{}, ErrNotFound
	}
	l := w.venueLock(b.VenueID)
	l.Lock()
	defer l.Unlock()
	if !b.State.CanTransition(BookingRejected) {
		return Booking{}, ErrInvalidTransition
	}
	if reason == "" {
		reason = DefaultRejectReason
	}
	b.State = BookingRejected
	b.Reason = reason
	b.DecidedBy = approverID
	return *b, nil
}

// Cancel transitions APPROVED to CANCELLED and removes the interval from the
// index, freeing the slot for future approvals.
func (w *Workflow) Cancel(bookingID uint64) (Booking, error) {
	b, ok := w.booking(bookingID)
	if !ok {
		return Booking{}, ErrNotFound
	}
	l := w.venueLock(b.VenueID)
	l.Lock()
	defer l.Unlock()
	if !b.State.CanTransition(BookingCanceled) {
		return Booking{}, ErrInvalidTransition
	}
	w.idx.Remove(b.VenueID, b.ID)
	b.State = BookingCanceled
	return *b, nil
}

// Get returns a copy of the booking.
func (w *Workflow) Get(bookingID uint64) (Booking, error) {
	b, ok := w.booking(bookingID)
	if !ok {
		return Booking{}, ErrNotFound
	}
	l := w.venueLock(b.VenueID)
	l.Lock()
	defer l.Unlock()
	return *b, nil
}

// Restore loads a booking as-is during startup. APPROVED bookings are
// indexed so conflict checks see them; no transition rules apply.
func (w *Workflow) Restore(b Booking) {
	w.mu.Lock()
	w.bookings[b.ID] = &b
	w.mu.Unlock()
	if b.State == BookingApproved {
		w.idx.Insert(b.VenueID, b.ID, b.Interval)
	}
}
