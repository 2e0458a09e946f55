// Package retryx implements the bounded Fibonacci-backoff retry used around
// every oracle call by the engine and the calibrator.
//
// Grounded on original_source/src/calibrator/mod.rs, which drives
// `retry::delay::Fibonacci` starting from a ~100ms base delay and aborts
// after a fixed attempt budget; reimplemented here as a plain Go helper
// rather than pulling in a retry library, since the corpus's own retry
// usage is exactly this: a Fibonacci delay sequence plus a max-attempts
// counter, a handful of lines no ecosystem package expresses more simply.
package retryx

import (
	"context"
	"time"
)

// DefaultBaseDelay is the first non-zero delay in the Fibonacci backoff
// sequence (spec §5: "a base delay (≈100 ms)").
const DefaultBaseDelay = 100 * time.Millisecond

// DefaultMaxAttempts bounds how many times an operation is retried before
// giving up (spec §5: "a max-attempts bound (≈3)").
const DefaultMaxAttempts = 3

// Fibonacci generates the backoff delay sequence base, base, 2*base,
// 3*base, 5*base, 8*base, ... (the classic Fibonacci recurrence, scaled by
// base) used between retry attempts.
type Fibonacci struct {
	base time.Duration
	a, b time.Duration
}

// NewFibonacci returns a Fibonacci sequence scaled by base.
func NewFibonacci(base time.Duration) *Fibonacci {
	return &Fibonacci{base: base, a: 0, b: base}
}

// Next returns the next delay in the sequence.
func (f *Fibonacci) Next() time.Duration {
	f.a, f.b = f.b, f.a+f.b
	return f.a
}

// Do runs op up to maxAttempts times, sleeping for the next Fibonacci delay
// (scaled by base) between attempts. It returns the first successful
// result, or the last error if every attempt failed. op is also given the
// attempt number (starting at 1) for logging.
//
// Do respects ctx cancellation between attempts: if ctx is done, it returns
// immediately with ctx.Err().
func Do[T any](ctx context.Context, base time.Duration, maxAttempts int, op func(attempt int) (T, error)) (T, error) {
	var (
		zero T
		err  error
		seq  = NewFibonacci(base)
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var result T
		result, err = op(attempt)
		if err == nil {
			return result, nil
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(seq.Next()):
		}
	}
	return zero, err
}
