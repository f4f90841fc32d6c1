package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen lets trial requests through to test whether the backend recovered.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "Half-Open"
	default:
		return "Unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs the given request if the circuit breaker is closed or half-open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// Settings configures a breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that trip the circuit
	SuccessThreshold uint32        // consecutive half-open successes that close it again
	Timeout          time.Duration // time spent Open before moving to HalfOpen
	// IsFailure decides whether an error counts against the breaker. Nil counts every error.
	IsFailure func(err error) bool
	// OnStateChange is called outside the lock after every transition.
	OnStateChange func(name string, from, to State)
	Now           func() time.Time
}

type breaker struct {
	settings             Settings
	consecutiveSuccesses uint32
	consecutiveFailures  uint32
	openedAt             time.Time
	state                State
	mutex                sync.Mutex
}

// New creates a circuit breaker with the given thresholds.
func New(failureThreshold, successThreshold uint32, timeout time.Duration) CircuitBreaker {
	return NewWithSettings(Settings{
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          timeout,
	})
}

// NewWithSettings creates a circuit breaker from Settings. Zero thresholds default to 1.
func NewWithSettings(s Settings) CircuitBreaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 1
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return &breaker{settings: s, state: Closed}
}

// Do runs fn through cb and keeps the result typed.
func Do[T any](cb CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// State returns the current state of the circuit breaker.
func (cb *breaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.advance()
	return cb.state
}

// Execute wraps the execution of a function with the circuit breaker logic.
func (cb *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	cb.mutex.Lock()
	from := cb.state
	cb.advance()
	to := cb.state
	cb.mutex.Unlock()
	cb.notify(from, to)

	if to == Open {
		return nil, ErrCircuitOpen
	}

	res, err := req()
	if err != nil && cb.countsAsFailure(err) {
		cb.record(false)
		return nil, err
	}
	cb.record(true)
	return res, err
}

// advance moves Open to HalfOpen once the timeout elapsed. Caller holds the lock.
func (cb *breaker) advance() {
	if cb.state == Open && cb.settings.Now().Sub(cb.openedAt) > cb.settings.Timeout {
		cb.state = HalfOpen
		cb.consecutiveSuccesses = 0
	}
}

func (cb *breaker) countsAsFailure(err error) bool {
	if cb.settings.IsFailure == nil {
		return true
	}
	return cb.settings.IsFailure(err)
}

func (cb *breaker) record(success bool) {
	cb.mutex.Lock()
	from := cb.state
	if success {
		switch cb.state {
		case HalfOpen:
			cb.consecutiveSuccesses++
			if cb.consecutiveSuccesses >= cb.settings.SuccessThreshold {
				cb.state = Closed
				cb.consecutiveFailures = 0
				cb.consecutiveSuccesses = 0
			}
		case Closed:
			cb.consecutiveFailures = 0
		}
	} else {
		switch cb.state {
		case HalfOpen:
			cb.trip()
		case Closed:
			cb.consecutiveFailures++
			if cb.consecutiveFailures >= cb.settings.FailureThreshold {
				cb.trip()
			}
		}
	}
	to := cb.state
	cb.mutex.Unlock()
	cb.notify(from, to)
}

func (cb *breaker) trip() {
	cb.state = Open
	cb.openedAt = cb.settings.Now()
	cb.consecutiveFailures = 0
	cb.consecutiveSuccesses = 0
}

func (cb *breaker) notify(from, to State) {
	if from != to && cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}
