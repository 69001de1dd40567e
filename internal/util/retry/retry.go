package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy controls how often and how fast an operation is retried.
type Policy struct {
	// Retries is the number of attempts after the first one.
	Retries int

	// Base is the delay before the first retry. Each further retry doubles it
	// up to Cap.
	Base time.Duration
	Cap  time.Duration

	// OnRetry, when set, runs before each wait.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy is used when no option overrides it.
func DefaultPolicy() Policy {
	return Policy{Retries: 5, Base: time.Second, Cap: 30 * time.Second}
}

// Option adjusts a Policy.
type Option func(*Policy)

// WithMaxRetries sets the number of retries after the first attempt.
func WithMaxRetries(n int) Option {
	return func(p *Policy) { p.Retries = n }
}

// WithInitialDelay sets the delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.Base = d }
}

// WithMaxDelay caps the delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.Cap = d }
}

// WithOnRetry registers a callback invoked before each retry.
func WithOnRetry(fn func(attempt int, err error)) Option {
	return func(p *Policy) { p.OnRetry = fn }
}

// Backoff returns the wait before retry number n (1-based).
func (p Policy) Backoff(n int) time.Duration {
	d := p.Base
	for i := 1; i < n; i++ {
		d *= 2
		if p.Cap > 0 && d >= p.Cap {
			return p.Cap
		}
	}
	if p.Cap > 0 && d > p.Cap {
		return p.Cap
	}
	return d
}

// Do runs op until it succeeds, returns a fatal error, the retries are
// used up or ctx is done.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Retries + 1
	var err error
	for n := 1; ; n++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if n >= attempts {
			return fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(n, err)
		}
		wait := time.NewTimer(p.Backoff(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return fmt.Errorf("context cancelled after %d attempts: %w", n, ctx.Err())
		case <-wait.C:
		}
	}
}

// WithExponentialBackoff runs op under DefaultPolicy adjusted by opts.
func WithExponentialBackoff(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p.Do(ctx, op)
}

// fatalError stops the retry loop.
type fatalError struct{ err error }

func (e fatalError) Error() string { return e.err.Error() }

func (e fatalError) Unwrap() error { return e.err }

// Fatal marks err as non-retryable. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

// FatalIf marks err as fatal when it matches any of targets.
func FatalIf(err error, targets ...error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return Fatal(err)
		}
	}
	return err
}

// IsFatal reports whether err or anything it wraps was marked with Fatal.
func IsFatal(err error) bool {
	return errors.As(err, new(fatalError))
}
