package seq

import (
	"context"
	"errors"
)

// State is the lifecycle state of an iterator.
type State int

const (
	// NotStarted: no element has been requested and nothing is acquired.
	NotStarted State = iota
	// Running: upstream has been acquired and elements are being pulled.
	Running
	// Exhausted: the iterator reported the end; upstream is released.
	Exhausted
	// Abandoned: the consumer closed early or an error occurred; upstream is released.
	Abandoned
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Exhausted:
		return "exhausted"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// IteratorState returns the lifecycle state of an iterator produced by this
// package. ok is false for foreign iterators.
func IteratorState[T any](it Iterator[T]) (state State, ok bool) {
	s, ok := it.(interface{ State() State })
	if !ok {
		return NotStarted, false
	}
	return s.State(), true
}

// stepper is the operator-specific half of an iterator. step is never called
// after release, and release is called exactly once.
type stepper[T any] interface {
	step(ctx context.Context) (T, bool, error)
	release() error
}

// cursor drives a stepper through the iterator state machine.
type cursor[T any] struct {
	s     stepper[T]
	state State
	err   error
}

func newCursor[T any](s stepper[T]) *cursor[T] {
	return &cursor[T]{s: s}
}

func (c *cursor[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	switch c.state {
	case Exhausted:
		return zero, false, nil
	case Abandoned:
		return zero, false, c.err
	}
	if err := ctx.Err(); err != nil {
		return zero, false, c.fail(err)
	}
	c.state = Running

	v, ok, err := c.s.step(ctx)
	if err != nil {
		return zero, false, c.fail(err)
	}
	if !ok {
		c.state = Exhausted
		return zero, false, c.s.release()
	}
	return v, true, nil
}

// fail abandons the iterator, releasing upstream before err propagates.
// err is returned unchanged unless the release itself fails.
func (c *cursor[T]) fail(err error) error {
	c.state = Abandoned
	if rerr := c.s.release(); rerr != nil {
		err = errors.Join(err, rerr)
	}
	c.err = err
	return err
}

func (c *cursor[T]) Close() error {
	switch c.state {
	case Exhausted, Abandoned:
		return nil
	}
	c.state = Abandoned
	return c.s.release()
}

func (c *cursor[T]) State() State { return c.state }

// upstream owns the single upstream cursor of an operator node. The cursor
// is created on the first pull.
type upstream[T any] struct {
	src *Sequence[T]
	it  Iterator[T]
}

func (u *upstream[T]) next(ctx context.Context) (T, bool, error) {
	if u.it == nil {
		u.it = u.src.Iter()
	}
	return u.it.Next(ctx)
}

func (u *upstream[T]) release() error {
	if u.it == nil {
		return nil
	}
	it := u.it
	u.it = nil
	return it.Close()
}

// drain pulls every remaining element of the upstream.
func (u *upstream[T]) drain(ctx context.Context) ([]T, error) {
	var items []T
	for {
		v, ok, err := u.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, v)
	}
}
