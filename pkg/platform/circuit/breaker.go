// Package circuit provides a small circuit breaker for outbound calls such as
// the geolocation provider.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"consentd/pkg/platform/sentinel"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow normally.
	StateClosed State = iota
	// StateOpen means the dependency is considered down.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// StateChange reports a transition caused by the last recorded outcome.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after a run of consecutive failures. While open it rejects
// calls until the open timeout has passed since the last failure, then lets
// one probe at a time through; a run of successful probes closes it again.
type Breaker struct {
	name             string
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
	ignore           func(error) bool

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time
	probing      bool
	listeners    []func(State)
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures needed to open. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive probe successes needed to close. Default 2.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithOpenTimeout sets how long an open breaker rejects calls before probing. Default 30s.
func WithOpenTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.openTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker. Context cancellation by the caller is never
// counted as a failure.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 2,
		openTimeout:      30 * time.Second,
		now:              time.Now,
		ignore: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the breaker name for logs and metrics.
func (b *Breaker) Name() string {
	return b.name
}

// OnStateChange registers fn to be called after each open/close transition.
func (b *Breaker) OnStateChange(fn func(State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn unless the breaker is open, and records its outcome. It returns
// sentinel.ErrCircuitOpen without calling fn while the dependency is down.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.acquire() {
		return sentinel.ErrCircuitOpen
	}
	err := fn(ctx)
	switch {
	case err == nil:
		b.RecordSuccess()
	case b.ignore(err):
		b.release()
	default:
		b.RecordFailure()
	}
	return err
}

// Allow reports whether a call may be attempted now.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	return !b.probing && b.now().Sub(b.lastFailure) >= b.openTimeout
}

// acquire is Allow that also claims the single probe slot while open.
func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	if b.probing || b.now().Sub(b.lastFailure) < b.openTimeout {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// RecordFailure records a failed call.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	b.failureCount++
	b.successCount = 0
	b.probing = false
	b.lastFailure = b.now()

	var change StateChange
	if b.state == StateClosed && b.failureCount >= b.failureThreshold {
		b.state = StateOpen
		change.Opened = true
	}
	b.mu.Unlock()

	b.announce(change)
	return change
}

// RecordSuccess records a successful call.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	b.probing = false

	var change StateChange
	if b.state == StateOpen {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
			change.Closed = true
		}
	} else {
		b.failureCount = 0
	}
	b.mu.Unlock()

	b.announce(change)
	return change
}

// Reset closes the breaker and clears counters without notifying listeners.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
	b.probing = false
	b.lastFailure = time.Time{}
}

func (b *Breaker) announce(change StateChange) {
	if !change.Opened && !change.Closed {
		return
	}
	state := StateClosed
	if change.Opened {
		state = StateOpen
	}
	b.mu.Lock()
	listeners := append([]func(State){}, b.listeners...)
	b.mu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}
