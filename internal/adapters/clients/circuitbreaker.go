package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker position.
type State int

const (
	// StateClosed lets requests through.
	StateClosed State = iota

	// StateOpen rejects requests until the cool-down elapses.
	StateOpen

	// StateHalfOpen lets a limited number of trials through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures int

	// Timeout is the open-state cool-down before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent trials and the number of
	// consecutive trial successes needed to close again.
	HalfOpenLimit int
}

// CircuitBreaker stops hammering a remote that keeps failing.
//
//	closed    --MaxFailures consecutive failures-->  open
//	open      --Timeout elapsed, next Allow-->       half-open
//	half-open --HalfOpenLimit successes-->           closed
//	half-open --any failure-->                       open
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     State
	failures  int
	successes int
	trials    int
	openedAt  time.Time
	onChange  func(from, to State)
	now       func() time.Time
}

// Snapshot is a point-in-time view of the breaker, for health reporting.
type Snapshot struct {
	State    State
	Failures int
	OpenedAt time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: cfg,
		now: time.Now,
	}
}

// OnStateChange registers fn to run after every transition. fn runs outside
// the breaker's lock, on the goroutine that caused the transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onChange = fn
}

// Allow reports whether a request may proceed. An open breaker whose
// cool-down has elapsed moves to half-open and admits the caller as a trial.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	var (
		allowed bool
		from    = cb.state
	)

	switch cb.state {
	case StateClosed:
		allowed = true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
			cb.moveTo(StateHalfOpen)
			cb.trials = 1
			allowed = true
		}
	case StateHalfOpen:
		if cb.trials < cb.cfg.HalfOpenLimit {
			cb.trials++
			allowed = true
		}
	}

	cb.unlockAndNotify(from)

	return allowed
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.trials--
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}

	cb.unlockAndNotify(from)
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.trials--
		cb.moveTo(StateOpen)
	case StateOpen:
		cb.openedAt = cb.now()
	}

	cb.unlockAndNotify(from)
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// Snapshot returns the current state with its counters.
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Snapshot{State: cb.state, Failures: cb.failures, OpenedAt: cb.openedAt}
}

// moveTo changes state and resets counters. Caller holds mu.
func (cb *CircuitBreaker) moveTo(to State) {
	if cb.state == to {
		return
	}

	cb.state = to
	cb.failures = 0
	cb.successes = 0

	if to == StateOpen {
		cb.openedAt = cb.now()
	}
}

// unlockAndNotify releases mu and fires the callback if the state moved away from from.
func (cb *CircuitBreaker) unlockAndNotify(from State) {
	to := cb.state
	fn := cb.onChange
	cb.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}
