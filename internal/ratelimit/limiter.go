// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether a request may be sent now and absorbs the quota the
// server reports back.
type Limiter interface {
	ShouldWait() bool
	Wait(ctx context.Context) error
	ShouldUpdate() bool
	Update(t Tracker)
}

type Mode string

const (
	ModeOff     Mode = "off"
	ModeBatched Mode = "batched"
	ModePaced   Mode = "paced"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeOff:
		return ModeOff, nil
	case ModeBatched:
		return ModeBatched, nil
	case ModePaced:
		return ModePaced, nil
	default:
		return "", fmt.Errorf("unknown rate limit mode %q", s)
	}
}

func New(mode Mode) Limiter {
	switch mode {
	case ModeBatched:
		return NewBatched()
	case ModePaced:
		return NewPaced()
	default:
		return Off{}
	}
}

// Off never waits and ignores every update.
type Off struct{}

func (Off) ShouldWait() bool { return false }

func (Off) Wait(context.Context) error { return nil }

func (Off) ShouldUpdate() bool { return false }

func (Off) Update(Tracker) {}

// state is the lock guarded tracker shared by Batched and Paced.
// Updates use TryLock and drop the sample when contended; waits block.
// seen stays false until the server has reported a quota.
type state struct {
	mu      sync.Mutex
	tracker Tracker
	seen    bool
	now     func() time.Time
}

func newState() *state {
	return &state{
		tracker: NewTracker(time.Now()),
		now:     time.Now,
	}
}

func (s *state) update(t Tracker) {
	if !s.mu.TryLock() {
		return
	}
	s.tracker = t
	s.seen = true
	s.mu.Unlock()
}

func (s *state) snapshot() Tracker {
	t, _ := s.reported()
	return t
}

func (s *state) reported() (Tracker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker, s.seen
}

// Batched lets requests through until the quota is spent and then holds every
// caller until the reset deadline.
type Batched struct {
	st *state
}

func NewBatched() *Batched {
	return &Batched{st: newState()}
}

func (b *Batched) ShouldWait() bool {
	return b.st.snapshot().Remaining <= 0
}

func (b *Batched) Wait(ctx context.Context) error {
	t := b.st.snapshot()
	return sleep(ctx, t.ResetAt.Sub(b.st.now()))
}

func (b *Batched) ShouldUpdate() bool { return true }

func (b *Batched) Update(t Tracker) { b.st.update(t) }

func (b *Batched) Snapshot() Tracker { return b.st.snapshot() }

// Paced spreads the remaining quota evenly over the time left in the window.
type Paced struct {
	st *state
}

func NewPaced() *Paced {
	return &Paced{st: newState()}
}

func (p *Paced) ShouldWait() bool { return true }

// Delay is the pause owed before the next request. It is never negative, and
// zero until the first server update.
func (p *Paced) Delay() time.Duration {
	t, seen := p.st.reported()
	if !seen {
		return 0
	}
	untilReset := t.ResetAt.Sub(p.st.now())
	if untilReset <= 0 {
		return 0
	}
	if t.Remaining <= 0 {
		return untilReset
	}
	return untilReset / time.Duration(t.Remaining)
}

func (p *Paced) Wait(ctx context.Context) error {
	return sleep(ctx, p.Delay())
}

func (p *Paced) ShouldUpdate() bool { return true }

func (p *Paced) Update(t Tracker) { p.st.update(t) }

func (p *Paced) Snapshot() Tracker { return p.st.snapshot() }

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
