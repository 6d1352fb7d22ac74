package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/davidvonthenen/a2a-simple/logging"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32 = 3
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// CircuitBreakerOptions configures CircuitBreakerModel construction.
type CircuitBreakerOptions struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
	// Logger receives state change notifications.
	Logger logging.Logger
}

// CircuitBreakerModel wraps a Model with circuit breaker protection. When the
// wrapped provider fails repeatedly, the circuit opens and subsequent calls
// fail fast without reaching the provider, preventing retry storms against a
// struggling upstream. There is no retry behavior: an open circuit surfaces
// the failure immediately.
type CircuitBreakerModel struct {
	inner   Model
	breaker *gobreaker.CircuitBreaker[*Response]
}

// NewCircuitBreakerModel wraps inner with a circuit breaker. One probe
// request is allowed while half-open.
func NewCircuitBreakerModel(inner Model, optFns ...func(o *CircuitBreakerOptions)) *CircuitBreakerModel {
	opts := CircuitBreakerOptions{
		MaxFailures: defaultBreakerMaxFailures,
		Timeout:     defaultBreakerTimeout,
		Interval:    defaultBreakerInterval,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger

	breaker := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "model:" + inner.Info().Name,
		MaxRequests: 1,
		Interval:    opts.Interval,
		Timeout:     opts.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &CircuitBreakerModel{inner: inner, breaker: breaker}
}

// Generate implements Model. Calls are routed through the circuit breaker.
func (m *CircuitBreakerModel) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := m.breaker.Execute(func() (*Response, error) {
		return m.inner.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("model %q circuit open: %w", m.inner.Info().Name, err)
		}

		return nil, err
	}

	return resp, nil
}

// Info implements Model.
func (m *CircuitBreakerModel) Info() Info { return m.inner.Info() }

// State returns the current circuit breaker state for monitoring.
func (m *CircuitBreakerModel) State() gobreaker.State { return m.breaker.State() }

// Compile-time interface check.
var _ Model = (*CircuitBreakerModel)(nil)
