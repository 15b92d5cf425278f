// Package retry wraps a single fallible call in a bounded exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy mirrors the upstream contract: 3 attempts, 0.6s doubling.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 600 * time.Millisecond, Multiplier: 2}
}

// WithAttempts returns a copy of the policy using a different attempt budget.
func (p Policy) WithAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// Delays lists the waits between consecutive attempts.
func (p Policy) Delays() []time.Duration {
	p = p.normalised()
	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	delay := p.BaseDelay
	for i := 1; i < p.MaxAttempts; i++ {
		delays = append(delays, delay)
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return delays
}

func (p Policy) normalised() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	p = p.normalised()
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Duration(float64(p.BaseDelay) * pow(p.Multiplier, p.MaxAttempts))
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// Operation is one attempt. attempt is 1-based.
type Operation func(ctx context.Context, attempt int) error

// Notify observes a failed attempt before the policy sleeps for next.
type Notify func(attempt int, err error, next time.Duration)

// Do runs op until it succeeds, returns a Permanent error, the attempt budget is
// spent or ctx is done. The last attempt's error is returned.
func Do(ctx context.Context, p Policy, op Operation, notify Notify) error {
	attempt := 0
	wrapped := func() error {
		attempt++
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return backoff.Permanent(perm.err)
		}
		return err
	}
	var n backoff.Notify
	if notify != nil {
		n = func(err error, next time.Duration) {
			notify(attempt, err, next)
		}
	}
	err := backoff.RetryNotify(wrapped, p.backOff(ctx), n)
	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
