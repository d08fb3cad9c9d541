package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker counts consecutive failures of one dependency. Once the
// threshold is hit it rejects calls until openUntil, then admits
// HalfOpenProbes trial calls. Every trial must succeed to close again.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state     CircuitState
	streak    int // consecutive failures while closed
	openUntil time.Time
	admitted  int // trial calls let through while half-open
	succeeded int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg.Normalize(), now: time.Now, state: CircuitStateClosed}
}

// settle moves an expired open breaker to half-open. Callers hold mu.
func (b *CircuitBreaker) settle() CircuitState {
	if b.state == CircuitStateOpen && !b.now().Before(b.openUntil) {
		b.enter(CircuitStateHalfOpen)
	}
	return b.state
}

// enter switches state and clears the counters. Callers hold mu.
func (b *CircuitBreaker) enter(state CircuitState) {
	b.state = state
	b.streak, b.admitted, b.succeeded = 0, 0, 0
	if state == CircuitStateOpen {
		b.openUntil = b.now().Add(b.cfg.OpenTimeout)
	}
}

// Allow reserves a call slot or returns ErrCircuitOpen.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.settle() {
	case CircuitStateOpen:
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.admitted >= b.cfg.HalfOpenProbes {
			return ErrCircuitOpen
		}
		b.admitted++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateHalfOpen {
		b.succeeded++
		if b.succeeded >= b.cfg.HalfOpenProbes {
			b.enter(CircuitStateClosed)
		}
		return
	}
	b.streak = 0
}

// RecordFailure reopens a half-open breaker immediately.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != CircuitStateClosed {
		b.enter(CircuitStateOpen)
		return
	}
	b.streak++
	if b.streak >= b.cfg.FailureThreshold {
		b.enter(CircuitStateOpen)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settle()
}

// Do runs fn behind the breaker. Errors for which countable returns false
// are returned without counting as failures.
func (b *CircuitBreaker) Do(fn func() error, countable func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil && (countable == nil || countable(err)) {
		b.RecordFailure()
	} else {
		b.RecordSuccess()
	}
	return err
}
