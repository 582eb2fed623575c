// internal/ratelimit/tracker.go
package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	RemainingHeader = "X-Ratelimit-Remaining"
	UsedHeader      = "X-Ratelimit-Used"
	ResetHeader     = "X-Ratelimit-Reset"

	DefaultRemaining   = 100
	DefaultResetWindow = 60 * time.Second
)

// Tracker is a snapshot of the server reported request quota.
type Tracker struct {
	Remaining int
	Used      int
	ResetAt   time.Time
}

// NewTracker returns the optimistic state used before the server has reported
// anything, so the first request is never held back.
func NewTracker(now time.Time) Tracker {
	return Tracker{
		Remaining: DefaultRemaining,
		Used:      0,
		ResetAt:   now.Add(DefaultResetWindow),
	}
}

func FromValues(remaining, used, resetSeconds int, now time.Time) Tracker {
	return Tracker{
		Remaining: remaining,
		Used:      used,
		ResetAt:   now.Add(time.Duration(resetSeconds) * time.Second),
	}
}

// ParseHeaders reads the three quota headers. ok is false unless all three are
// present and numeric; callers must then skip the update entirely.
func ParseHeaders(h http.Header, now time.Time) (Tracker, bool) {
	remaining, ok := headerInt(h, RemainingHeader)
	if !ok {
		return Tracker{}, false
	}
	used, ok := headerInt(h, UsedHeader)
	if !ok {
		return Tracker{}, false
	}
	reset, ok := headerInt(h, ResetHeader)
	if !ok {
		return Tracker{}, false
	}

	return FromValues(remaining, used, reset, now), true
}

// headerInt accepts "598" as well as "598.0", which is what the API sends for
// the remaining count.
func headerInt(h http.Header, key string) (int, bool) {
	raw := strings.TrimSpace(h.Get(key))
	if raw == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return int(v), true
}
