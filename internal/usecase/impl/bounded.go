// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"time"

	domainerrors "usersvc/internal/domain/errors"
)

type boundedResult[T any] struct {
	value T
	err   error
}

// runBounded runs a CPU-bound fn in its own goroutine and stops waiting once timeout
// elapses or ctx is done. The goroutine finishes in the background; its result is dropped.
func runBounded[T any](ctx context.Context, timeout time.Duration, what string, fn func() (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan boundedResult[T], 1)
	go func() {
		value, err := fn()
		done <- boundedResult[T]{value: value, err: err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T

		return zero, domainerrors.ErrServiceUnavailable.WrapMessage(what + ": " + ctx.Err().Error())
	}
}
