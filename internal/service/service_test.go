package service

import (
	"context"
	"sync"
	"time"

	"github.com/campusconnect/campus-reservation/internal/queue"
)

// fixedClock pins time-dependent predicates in tests.
type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

// capturePublisher records published decision events.
type capturePublisher struct {
	mu     sync.Mutex
	events []queue.ReservationDecidedEvent
}

func (p *capturePublisher) PublishDecision(_ context.Context, ev queue.ReservationDecidedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) outcomes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Outcome
	}
	return out
}
