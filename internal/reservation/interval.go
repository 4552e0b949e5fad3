package reservation

import (
	"sort"
	"sync"
	"time"
)

// Interval is a half-open time range [Start, End). Two intervals conflict
// iff s1 < e2 and s2 < e1, so bookings that touch end-to-start do not
// collide.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval validates that end is strictly after start and returns the
// interval. Zero-length or inverted ranges fail with ErrInvalidInterval.
func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

type indexEntry struct {
	bookingID uint64
	iv        Interval
}

// ConflictIndex records the approved intervals per venue and answers overlap
// queries. Entries for each venue are kept ordered by start time so a query
// can stop scanning once entries begin at or after the query's end.
//
// The internal mutex only makes concurrent map access from different venues
// safe. Atomicity of check-then-insert for a single venue is the caller's
// responsibility: the approval workflow holds the venue lock across
// HasConflict and Insert.
type ConflictIndex struct {
	mu      sync.RWMutex
	entries map[uint64][]indexEntry
}

// NewConflictIndex returns an empty index.
func NewConflictIndex() *ConflictIndex {
	return &ConflictIndex{entries: make(map[uint64][]indexEntry)}
}

// HasConflict reports whether iv overlaps any indexed interval on the venue.
// excludeID lets a booking ignore its own prior entry when re-validating an
// update; pass 0 to exclude nothing.
func (x *ConflictIndex) HasConflict(venueID uint64, iv Interval, excludeID uint64) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, e := range x.entries[venueID] {
		if !e.iv.Start.Before(iv.End) {
			break // sorted by start; nothing later can overlap
		}
		if e.bookingID == excludeID {
			continue
		}
		if e.iv.Overlaps(iv) {
			return true
		}
	}
	return false
}

// Insert records the interval for the booking on the venue, keeping the
// venue's entries ordered by start time.
func (x *ConflictIndex) Insert(venueID, bookingID uint64, iv Interval) {
	x.mu.Lock()
	defer x.mu.Unlock()
	list := x.entries[venueID]
	i := sort.Search(len(list), func(i int) bool {
		return !list[i].iv.Start.Before(iv.Start)
	})
	list = append(list, indexEntry{})
	copy(list[i+1:], list[i:])
	list[i] = indexEntry{bookingID: bookingID, iv: iv}
	x.entries[venueID] = list
}

// Remove deletes the booking's interval from the venue, freeing the slot for
// future approvals. Removing an absent booking is a no-op.
func (x *ConflictIndex) Remove(venueID, bookingID uint64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	list := x.entries[venueID]
	for i, e := range list {
		if e.bookingID == bookingID {
			x.entries[venueID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Count returns the number of indexed intervals for a venue.
func (x *ConflictIndex) Count(venueID uint64) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries[venueID])
}
