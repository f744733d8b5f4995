// Package retry defines bounded backoff policies for best-effort delivery.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy defines a retry strategy.
type Policy struct {
	MaxRetries      int           `json:"max_retries"`
	InitialDelay    time.Duration `json:"initial_delay"`
	MaxDelay        time.Duration `json:"max_delay"`
	BackoffStrategy BackoffType   `json:"backoff_strategy"`
	JitterFactor    float64       `json:"jitter_factor"` // 0.0-1.0
}

// BackoffType identifies the backoff strategy.
type BackoffType string

const (
	BackoffFixed       BackoffType = "fixed"       // Same delay each time
	BackoffLinear      BackoffType = "linear"      // Delay increases linearly
	BackoffExponential BackoffType = "exponential" // Delay doubles each time
)

// DefaultPolicy returns a sensible default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffStrategy: BackoffExponential,
		JitterFactor:    0.25,
	}
}

// NoRetryPolicy returns a policy that never retries.
func NoRetryPolicy() Policy {
	return Policy{
		MaxRetries:   0,
		InitialDelay: 0,
		MaxDelay:     0,
	}
}

// CalculateDelay calculates the delay for a given attempt.
func (p *Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	var delay time.Duration

	switch p.BackoffStrategy {
	case BackoffFixed:
		delay = p.InitialDelay
	case BackoffLinear:
		delay = p.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		delay = p.InitialDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	default:
		delay = p.InitialDelay
	}

	// Apply max delay cap
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	// Apply jitter
	if p.JitterFactor > 0 {
		jitter := float64(delay) * p.JitterFactor * (rand.Float64()*2 - 1) // -jitter to +jitter
		delay = time.Duration(float64(delay) + jitter)
		if delay < 0 {
			delay = 0
		}
	}

	return delay
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context, attempt int) error

// Execute runs the function with retries according to the policy.
func (p *Policy) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt >= p.MaxRetries {
			break
		}

		delay := p.CalculateDelay(attempt + 1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}
