// Package fibonacci provides implementations for calculating Fibonacci numbers.
// This file contains the cooperative cancellation primitive shared by the
// doubling and matrix-exponentiation loops.
package fibonacci

import (
	"context"
	"sync/atomic"
	"time"
)

// CancellationToken is a shared, monotone cancellation flag: once raised it
// stays raised. It is read with a relaxed load and written with a relaxed
// store, so polling it on every doubling iteration costs no synchronization
// beyond a single atomic read.
//
// context.Context already plays this role on the primary call path (every
// core calculator accepts one and checks ctx.Err() at each checkpoint); this
// type exists for callers that need to propagate cancellation into code that
// does not carry a context, such as pool maintenance goroutines or tests that
// want to raise cancellation from an arbitrary goroutine without allocating a
// cancelable context.
type CancellationToken struct {
	raised atomic.Bool
}

// NewCancellationToken returns a token that is not yet raised.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel raises the token. Idempotent.
func (t *CancellationToken) Cancel() {
	t.raised.Store(true)
}

// IsCancelled reports whether the token has been raised.
func (t *CancellationToken) IsCancelled() bool {
	return t.raised.Load()
}

// TimeoutToken overlays an absolute deadline on top of a CancellationToken,
// so callers can distinguish an explicit Cancel() from a deadline that has
// simply elapsed.
type TimeoutToken struct {
	*CancellationToken
	deadline time.Time
}

// NewTimeoutToken returns a token whose TimedOut reports true once
// deadline has passed, independent of whether Cancel was called.
func NewTimeoutToken(deadline time.Time) *TimeoutToken {
	return &TimeoutToken{CancellationToken: NewCancellationToken(), deadline: deadline}
}

// TimedOut reports whether the deadline has elapsed.
func (t *TimeoutToken) TimedOut() bool {
	return !t.deadline.IsZero() && time.Now().After(t.deadline)
}

// Check distinguishes the three terminal states of a timeout token: nil (not
// done), context.Canceled (explicit Cancel), or context.DeadlineExceeded
// (deadline elapsed). Deadline is checked first because a caller that both
// cancelled and timed out usually wants to report Timeout, matching the
// orchestrator's own precedence.
func (t *TimeoutToken) Check() error {
	if t.TimedOut() {
		return context.DeadlineExceeded
	}
	if t.IsCancelled() {
		return context.Canceled
	}
	return nil
}
