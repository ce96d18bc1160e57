package seq

import (
	"context"
	"iter"
)

// Iterator provides pull-based sequential access to a stream of values.
//
// Next returns (v, true, nil) for a value, (zero, false, nil) once the
// stream is exhausted and (zero, false, err) on failure.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Sequence is a lazy, pull-based producer of elements. The zero value is not
// usable; build sequences with the source constructors and operators.
type Sequence[T any] struct {
	open        func() Iterator[T]
	restartable bool
	size        int

	// fusion: set when this sequence is an in-process Filter node.
	filtered *filterSpec[T]

	// provider-backed sequences record operations instead of building nodes.
	provider Provider
	query    Query
}

const unknownSize = -1

func newSequence[T any](restartable bool, open func() Iterator[T]) *Sequence[T] {
	return &Sequence[T]{open: open, restartable: restartable, size: unknownSize}
}

// node builds a sequence whose iterators are cursors around fresh steppers.
func node[T any](restartable bool, fn func() stepper[T]) *Sequence[T] {
	return newSequence(restartable, func() Iterator[T] { return newCursor(fn()) })
}

// Iter returns a new iterator over the sequence. Nothing is acquired until
// the first call to Next. The caller must Close it.
func (s *Sequence[T]) Iter() Iterator[T] {
	return s.open()
}

// Values adapts the sequence for range-over-func. Breaking out of the loop
// abandons the iterator and releases the pipeline; an error is yielded once
// as the final pair.
//
//	for v, err := range s.Values(ctx) {
//	    if err != nil { return err }
//	    ...
//	}
func (s *Sequence[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		it := s.Iter()
		defer it.Close()
		for {
			v, ok, err := it.Next(ctx)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}

// Restartable reports whether each Iter call replays the sequence from the
// start. Single-pass sequences fail with SOURCE_CONSUMED when iterated again.
func (s *Sequence[T]) Restartable() bool {
	return s.restartable
}

// Len returns the number of elements when it is known without iterating.
// Only concrete sources (FromSlice, Range, Repeat, Empty, Grouping elements)
// know their size; derived pipelines do not.
func (s *Sequence[T]) Len() (int, bool) {
	if s.size < 0 {
		return 0, false
	}
	return s.size, true
}

// Provided reports whether the sequence is backed by a Provider.
func (s *Sequence[T]) Provided() bool {
	return s.provider != nil
}

// Query returns the operations recorded for a provider-backed sequence.
func (s *Sequence[T]) Query() Query {
	return s.query
}

// Must panics if err is non-nil and returns v otherwise. Use it to chain
// constructors whose arguments are known to be valid.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
