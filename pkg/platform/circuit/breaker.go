// Package circuit fails calls to an upstream fast once it keeps erroring.
package circuit

import (
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	// HalfOpen admits one probe at a time after the cooldown.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker opens after a run of consecutive failures. While open, calls are
// refused until the cooldown has passed since the latest failure; it then
// goes half-open and lets probes through one at a time. Enough consecutive
// successful probes close it, a failed probe reopens it.
type Breaker struct {
	name      string
	tripAfter int
	closeOn   int
	cooldown  time.Duration
	now       func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	probesOK  int
	probing   bool
	lastError time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the circuit (default 5).
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.tripAfter = n
		}
	}
}

// WithSuccessThreshold sets the successful probes needed to close it (default 2).
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.closeOn = n
		}
	}
}

// WithCooldown sets how long an open circuit refuses calls (default 10s).
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		tripAfter: 5,
		closeOn:   2,
		cooldown:  10 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may go out now. In the half-open state a true
// result reserves the single probe slot; the caller must report the outcome
// with Success or Failure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.lastError) < b.cooldown {
			return false
		}
		b.state = HalfOpen
		b.probesOK = 0
	}
	if b.probing {
		return false
	}
	b.probing = true
	return true
}

// Failure records a failed call and reports whether it opened the circuit.
// A failed probe reopens it without counting as a new opening.
func (b *Breaker) Failure() (opened bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastError = b.now()
	b.probing = false
	switch b.state {
	case HalfOpen:
		b.state = Open
		return false
	case Open:
		return false
	}
	b.failures++
	if b.failures < b.tripAfter {
		return false
	}
	b.state = Open
	return true
}

// Success records a successful call and reports whether it closed the circuit.
func (b *Breaker) Success() (closed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if b.state == Closed {
		b.failures = 0
		return false
	}
	b.probesOK++
	if b.probesOK < b.closeOn {
		return false
	}
	b.state = Closed
	b.failures = 0
	b.probesOK = 0
	return true
}
