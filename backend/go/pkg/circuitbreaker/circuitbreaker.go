package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen allows a limited number of trial requests through.
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

// ErrCircuitOpen is returned when the breaker rejects a call without running it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker is the interface for the circuit breaker pattern.
type CircuitBreaker interface {
	// Execute runs req if the breaker is closed or half-open.
	Execute(req func() (interface{}, error)) (interface{}, error)
	// State returns the current state of the circuit breaker.
	State() State
}

// Settings configures a breaker.
type Settings struct {
	Name string
	// FailureThreshold consecutive failures trip the circuit.
	FailureThreshold uint32
	// SuccessThreshold consecutive successes in half-open close it again.
	SuccessThreshold uint32
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
	// OnStateChange is called on every transition; may be nil.
	OnStateChange func(name string, from, to State)
}

type breaker struct {
	cb *gobreaker.CircuitBreaker[interface{}]
}

// New creates a CircuitBreaker backed by gobreaker.
func New(s Settings) CircuitBreaker {
	failures := s.FailureThreshold
	if failures == 0 {
		failures = 1
	}
	successes := s.SuccessThreshold
	if successes == 0 {
		successes = 1
	}
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: successes,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	}
	if s.OnStateChange != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			s.OnStateChange(name, fromGobreaker(from), fromGobreaker(to))
		}
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker[interface{}](st)}
}

// Execute implements CircuitBreaker.
func (b *breaker) Execute(req func() (interface{}, error)) (interface{}, error) {
	res, err := b.cb.Execute(req)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return res, err
}

// State implements CircuitBreaker.
func (b *breaker) State() State {
	return fromGobreaker(b.cb.State())
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}
