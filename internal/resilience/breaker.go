// Package resilience wraps outbound calls to the external computation
// service with a circuit breaker, a TTL response cache and retry with
// exponential backoff. One gateway instance is shared process-wide: all
// callers observe and drive the same breaker state.
package resilience

import (
	"sync"
	"time"
)

// CircuitState represents the circuit breaker state
type CircuitState string

const (
	// CircuitClosed is normal operation: requests pass through
	CircuitClosed CircuitState = "CLOSED"
	// CircuitOpen rejects all requests until the cooldown elapses
	CircuitOpen CircuitState = "OPEN"
	// CircuitHalfOpen allows exactly one trial request through
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)

// BreakerConfig configures the circuit breaker behavior
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count that opens the circuit
	FailureThreshold int
	// Cooldown is how long the circuit stays open before a half-open trial
	Cooldown time.Duration
}

// DefaultBreakerConfig returns sensible defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	}
}

// CircuitBreaker guards the external computation service. Callers must call
// CanAttempt before every request and RecordSuccess or RecordFailure after
// every attempt to drive the state machine.
//
// Thread Safety: safe for concurrent use.
type CircuitBreaker struct {
	config BreakerConfig
	now    func() time.Time

	mu              sync.Mutex
	state           CircuitState
	failureCount    int
	nextAttemptTime time.Time
	trialInFlight   bool
}

// NewCircuitBreaker creates a closed breaker
func NewCircuitBreaker(config BreakerConfig) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if config.Cooldown <= 0 {
		config.Cooldown = DefaultBreakerConfig().Cooldown
	}
	return &CircuitBreaker{
		config: config,
		now:    time.Now,
		state:  CircuitClosed,
	}
}

// CanAttempt reports whether a request may proceed. In CLOSED it is always
// true. In OPEN it is false until the cooldown elapses, at which point the
// state becomes HALF_OPEN and exactly one trial is admitted; concurrent
// callers during the trial are rejected.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Before(cb.nextAttemptTime) {
			return false
		}
		cb.state = CircuitHalfOpen
		cb.trialInFlight = true
		return true
	case CircuitHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	}
	return false
}

// RecordSuccess closes the circuit and resets the failure count
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failureCount = 0
	cb.trialInFlight = false
}

// RecordFailure increments the failure count. Reaching the threshold while
// CLOSED, or failing the HALF_OPEN trial, opens the circuit with a fresh
// cooldown.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.state == CircuitHalfOpen || cb.failureCount >= cb.config.FailureThreshold {
		cb.state = CircuitOpen
		cb.nextAttemptTime = cb.now().Add(cb.config.Cooldown)
		cb.trialInFlight = false
	}
}

// Snapshot is a point-in-time view of the breaker for introspection
type Snapshot struct {
	State           CircuitState `json:"state"`
	FailureCount    int          `json:"failure_count"`
	NextAttemptTime time.Time    `json:"next_attempt_time,omitempty"`
}

// State returns a snapshot of the current breaker state
func (cb *CircuitBreaker) State() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Snapshot{
		State:           cb.state,
		FailureCount:    cb.failureCount,
		NextAttemptTime: cb.nextAttemptTime,
	}
}

// RetryAfter reports how long until the next attempt is admitted; zero when
// requests may proceed now.
func (cb *CircuitBreaker) RetryAfter() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return 0
	}
	remaining := cb.nextAttemptTime.Sub(cb.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
