// internal/platform/resilience/breaker_set.go
package resilience

import (
	"strings"
	"sync"
	"time"
)

// BreakerSet mantiene un circuit breaker por clave (p.ej. host MX).
type BreakerSet struct {
	mu        sync.Mutex
	breakers  map[string]*CircuitBreaker
	threshold int
	timeout   time.Duration
	now       func() time.Time
}

// NewBreakerSet crea un conjunto de breakers con la misma configuración.
func NewBreakerSet(threshold int, timeout time.Duration) *BreakerSet {
	return &BreakerSet{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		timeout:   timeout,
		now:       time.Now,
	}
}

// Get devuelve (creándolo si hace falta) el breaker de key. Las claves no
// distinguen mayúsculas: MX1.example.com y mx1.example.com comparten breaker.
func (s *BreakerSet) Get(key string) *CircuitBreaker {
	key = strings.ToLower(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.breakers[key]
	if !ok {
		cb = NewCircuitBreaker(s.threshold, s.timeout)
		cb.now = s.now
		s.breakers[key] = cb
	}
	return cb
}
