// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
)

// errNotApplicable marks a strategy that does not apply to the input. It
// counts as a miss but is not logged.
var errNotApplicable = errors.New("not applicable")

// terminalError stops the chain; its cause becomes the failure message.
type terminalError struct{ err error }

func (e *terminalError) Error() string { return e.err.Error() }
func (e *terminalError) Unwrap() error { return e.err }

// terminal wraps err so that firstSuccess stops after it.
func terminal(err error) error {
	if err == nil {
		return nil
	}
	return &terminalError{err: err}
}

// step is one named strategy in a chain.
type step[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// firstSuccess runs steps in order and returns the first result without
// error together with the name of the step that produced it. A terminal
// error ends the chain at once. onMiss is called for every other failure.
// When every step misses, the last error is returned.
func firstSuccess[T any](ctx context.Context, steps []step[T], onMiss func(name string, err error)) (T, string, error) {
	var zero T
	var last error = errNotApplicable
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		v, err := s.run(ctx)
		if err == nil {
			return v, s.name, nil
		}
		var term *terminalError
		if errors.As(err, &term) {
			return zero, s.name, term.err
		}
		if !errors.Is(err, errNotApplicable) {
			last = err
			if onMiss != nil {
				onMiss(s.name, err)
			}
		}
	}
	return zero, "", last
}
