// Package retry provides a bounded exponential backoff policy that is
// independent of how the retried work is scheduled.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"smcSignalBot/internal/ports"
)

// Policy describes a bounded exponential backoff: the first retry waits
// BaseDelay and each next one Multiplier times longer, up to MaxDelay.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	// Jitter randomizes each delay by up to this fraction. Zero keeps delays exact.
	Jitter float64
}

// DefaultPolicy waits 1s, 2s between three attempts.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 30 * time.Second}
}

// Notify is called before each retry with the failed attempt number, its error and the upcoming delay.
type Notify func(attempt int, err error, delay time.Duration)

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return fmt.Errorf("%w: retry max attempts must be at least 1, got %d", ports.ErrConfigurationError, p.MaxAttempts)
	case p.BaseDelay < 0:
		return fmt.Errorf("%w: retry base delay must not be negative", ports.ErrConfigurationError)
	case p.Multiplier < 1:
		return fmt.Errorf("%w: retry multiplier must be at least 1, got %.2f", ports.ErrConfigurationError, p.Multiplier)
	case p.Jitter < 0 || p.Jitter >= 1:
		return fmt.Errorf("%w: retry jitter must be in [0,1), got %.2f", ports.ErrConfigurationError, p.Jitter)
	}
	return nil
}

// Delay returns the wait before retry number n (1-based), ignoring jitter.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= p.Multiplier
	}
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// MaxWait is the total time spent waiting between all attempts, ignoring jitter.
func (p Policy) MaxWait() time.Duration {
	var total time.Duration
	for n := 1; n < p.MaxAttempts; n++ {
		total += p.Delay(n)
	}
	return total
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx)
}

// Do runs op until it succeeds, the attempts are exhausted, the error is
// permanent or ctx is done. The last error of op is returned; a context
// error is joined to it when the wait was interrupted.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	return p.DoNotify(ctx, op, nil)
}

// DoNotify is Do with a callback before every retry.
func (p Policy) DoNotify(ctx context.Context, op func(ctx context.Context) error, notify Notify) error {
	if err := p.Validate(); err != nil {
		return err
	}

	attempt := 0
	var lastErr error
	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			lastErr = permanent.Err
			return err
		}
		if IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, d time.Duration) { notify(attempt, err, d) }
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), onRetry)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && lastErr != nil && !errors.Is(lastErr, ctxErr) {
		return fmt.Errorf("%w: %w: %w", ports.ErrContextCanceled, ctxErr, lastErr)
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}

// IsPermanent reports whether err should never be retried.
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent) ||
		errors.Is(err, ports.ErrInvalidRequest) ||
		errors.Is(err, ports.ErrConfigurationError) ||
		errors.Is(err, ports.ErrAuthenticationFailed) ||
		errors.Is(err, ports.ErrInvalidAPIKeys) ||
		errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, context.Canceled)
}

// Permanent marks err so that no policy retries it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
