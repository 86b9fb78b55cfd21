// Package rate provides request pacing: a global token bucket limiter built
// on golang.org/x/time/rate and a per-key Spacer that grants slots in
// arrival order with a minimum interval between consecutive grants.
package rate

import (
	"context"
	"sync"
	"time"

	xrate "golang.org/x/time/rate"
)

// NewLimiter creates a token bucket limiter with the specified rate
// (requests per second) and burst. rps <= 0 means unlimited.
//
// Example:
//
//	limiter := rate.NewLimiter(10, 5) // 10 req/s, burst of 5
func NewLimiter(rps float64, burst int) *xrate.Limiter {
	if burst <= 0 {
		burst = 1
	}
	if rps <= 0 {
		return xrate.NewLimiter(xrate.Inf, burst)
	}
	return xrate.NewLimiter(xrate.Limit(rps), burst)
}

// Spacer grants slots per key in arrival order with a minimum interval
// between consecutive grants. Each Wait reserves max(now, last+interval)
// under the lock, where last is the key's latest reservation, so the gap
// holds even when callers of the same key pass different intervals.
type Spacer struct {
	mu   sync.Mutex
	keys map[string]*slot
	now  func() time.Time
}

type slot struct {
	last time.Time // última reserva concedida
	seq  uint64    // cambia con cada reserva
}

// NewSpacer creates an empty Spacer.
func NewSpacer() *Spacer {
	return &Spacer{keys: make(map[string]*slot), now: time.Now}
}

// Wait blocks until a slot for key is granted or ctx is done. A cancelled
// wait gives its reservation back if no later caller reserved after it.
func (s *Spacer) Wait(ctx context.Context, key string, interval time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	k, ok := s.keys[key]
	if !ok {
		k = &slot{}
		s.keys[key] = k
	}
	now := s.now()
	at := now
	if !k.last.IsZero() {
		if next := k.last.Add(max(interval, 0)); next.After(at) {
			at = next
		}
	}
	prev := k.last
	k.last = at
	k.seq++
	seq := k.seq
	s.mu.Unlock()

	wait := at.Sub(now)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		if k.seq == seq {
			k.last = prev
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}
