package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrCircuitOpen is returned when a call is rejected because the circuit
// is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// CircuitState is the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets requests flow through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests immediately.
	CircuitOpen
	// CircuitHalfOpen allows a probe request to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitConfig controls breaker behavior.
type CircuitConfig struct {
	// FailureThreshold is the number of consecutive trip-worthy failures
	// before the circuit opens. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before allowing a
	// half-open probe. Default: 30s.
	ResetTimeout time.Duration

	// ShouldTrip overrides which errors count toward the threshold.
	// If nil, IsTransient is used.
	ShouldTrip func(err error) bool
}

// DefaultCircuitConfig returns the breaker defaults used for LLM calls.
func DefaultCircuitConfig() CircuitConfig {
	return CircuitConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
	}
}

// Circuit is a circuit breaker for a single upstream service.
type Circuit struct {
	cfg CircuitConfig

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time

	now func() time.Time // test injection
}

// NewCircuit creates a circuit breaker with the given config.
func NewCircuit(cfg CircuitConfig) *Circuit {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Circuit{cfg: cfg, state: CircuitClosed, now: time.Now}
}

// State returns the current circuit state, transitioning open circuits to
// half-open once the reset timeout has elapsed.
func (c *Circuit) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Circuit) stateLocked() CircuitState {
	if c.state == CircuitOpen && c.now().Sub(c.openedAt) >= c.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return c.state
}

// Execute runs fn through the breaker. Returns ErrCircuitOpen without
// calling fn when the circuit is open.
func (c *Circuit) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := CircuitVal(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// CircuitVal is Execute preserving a return value.
func CircuitVal[T any](ctx context.Context, c *Circuit, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !c.allow() {
		return zero, ErrCircuitOpen
	}

	val, err := fn(ctx)
	c.record(err)
	return val, err
}

func (c *Circuit) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.stateLocked() {
	case CircuitOpen:
		return false
	case CircuitHalfOpen:
		// Single probe: move to half-open so a success can close it.
		c.state = CircuitHalfOpen
		return true
	default:
		return true
	}
}

func (c *Circuit) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		c.state = CircuitClosed
		c.failures = 0
		return
	}

	shouldTrip := c.cfg.ShouldTrip
	if shouldTrip == nil {
		shouldTrip = IsTransient
	}
	if !shouldTrip(err) {
		return
	}

	c.failures++
	if c.state == CircuitHalfOpen || c.failures >= c.cfg.FailureThreshold {
		c.state = CircuitOpen
		c.openedAt = c.now()
	}
}

// Reset forces the circuit back to closed.
func (c *Circuit) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = CircuitClosed
	c.failures = 0
}
