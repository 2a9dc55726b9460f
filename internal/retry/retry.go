package retry

import (
	"context"
	"errors"
	"fmt"
)

// permanentError stops Do from making further attempts.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// Func is a single attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do runs op up to maxAttempts times, stopping at the first success, at a
// Permanent error, or when ctx is done. There is no delay between attempts.
//
// The returned error is the last attempt's error, annotated with the number of
// attempts made when more than one was made.
func Do(ctx context.Context, maxAttempts int, op Func) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx, attempt)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		// A cancelled context surfaces through the operation; don't burn attempts on it.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}

	if maxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}
