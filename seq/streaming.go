package seq

import (
	"context"

	"github.com/kbukum/seqkit/validation"
)

// Filter keeps only values that satisfy the predicate. The predicate runs at
// most once per upstream element, and only when a downstream consumer asks
// for the next value. Consecutive in-process filters are fused into a
// single node; the output is the same as chaining them.
func Filter[T any](src *Sequence[T], pred func(T) bool) (*Sequence[T], error) {
	if err := validation.For("seq.Filter").
		Require("source", src != nil).
		Require("predicate", pred != nil).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, T](src, Operation{
			Kind:      OpFilter,
			Func:      pred,
			Predicate: func(v any) bool { return pred(as[T](v)) },
		}), nil
	}
	if f := src.filtered; f != nil {
		inner := f.pred
		return newFilter(f.src, func(v T) bool { return inner(v) && pred(v) }), nil
	}
	return newFilter(src, pred), nil
}

type filterSpec[T any] struct {
	src  *Sequence[T]
	pred func(T) bool
}

func newFilter[T any](src *Sequence[T], pred func(T) bool) *Sequence[T] {
	s := node(src.restartable, func() stepper[T] {
		return &filterStepper[T]{up: upstream[T]{src: src}, pred: pred}
	})
	s.filtered = &filterSpec[T]{src: src, pred: pred}
	return s
}

type filterStepper[T any] struct {
	up   upstream[T]
	pred func(T) bool
}

func (s *filterStepper[T]) step(ctx context.Context) (T, bool, error) {
	for {
		v, ok, err := s.up.next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		if s.pred(v) {
			return v, true, nil
		}
	}
}

func (s *filterStepper[T]) release() error { return s.up.release() }

// Map transforms each value using fn. fn runs exactly once per element
// consumed downstream, in source order; an error from fn aborts the
// pipeline and is returned unchanged.
func Map[I, O any](src *Sequence[I], fn func(context.Context, I) (O, error)) (*Sequence[O], error) {
	if err := validation.For("seq.Map").
		Require("source", src != nil).
		Require("selector", fn != nil).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[I, O](src, Operation{
			Kind: OpMap,
			Func: fn,
			Selector: func(ctx context.Context, v any) (any, error) {
				return fn(ctx, as[I](v))
			},
		}), nil
	}
	return node(src.restartable, func() stepper[O] {
		return &mapStepper[I, O]{up: upstream[I]{src: src}, fn: fn}
	}), nil
}

type mapStepper[I, O any] struct {
	up upstream[I]
	fn func(context.Context, I) (O, error)
}

func (s *mapStepper[I, O]) step(ctx context.Context) (O, bool, error) {
	var zero O
	v, ok, err := s.up.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := s.fn(ctx, v)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (s *mapStepper[I, O]) release() error { return s.up.release() }

// FlatMap maps each value to a sequence and yields the elements of each
// inner sequence in turn. An inner sequence is opened on demand and released
// before the next outer element is pulled; empty (or nil) inner sequences
// are skipped.
func FlatMap[I, O any](src *Sequence[I], fn func(context.Context, I) (*Sequence[O], error)) (*Sequence[O], error) {
	if err := validation.For("seq.FlatMap").
		Require("source", src != nil).
		Require("selector", fn != nil).
		Err(); err != nil {
		return nil, err
	}
	return node(src.restartable, func() stepper[O] {
		return &flatMapStepper[I, O]{outer: upstream[I]{src: src}, fn: fn}
	}), nil
}

type flatMapStepper[I, O any] struct {
	outer upstream[I]
	fn    func(context.Context, I) (*Sequence[O], error)
	inner Iterator[O]
}

func (s *flatMapStepper[I, O]) step(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		if s.inner != nil {
			v, ok, err := s.inner.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return v, true, nil
			}
			inner := s.inner
			s.inner = nil
			if err := inner.Close(); err != nil {
				return zero, false, err
			}
		}
		in, ok, err := s.outer.next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		sub, err := s.fn(ctx, in)
		if err != nil {
			return zero, false, err
		}
		if sub != nil {
			s.inner = sub.Iter()
		}
	}
}

func (s *flatMapStepper[I, O]) release() error {
	var innerErr error
	if s.inner != nil {
		innerErr = s.inner.Close()
		s.inner = nil
	}
	if err := s.outer.release(); err != nil {
		return err
	}
	return innerErr
}

// Tap calls fn as a side effect for each value, then passes the value
// through unchanged.
func Tap[T any](src *Sequence[T], fn func(context.Context, T) error) (*Sequence[T], error) {
	if err := validation.For("seq.Tap").
		Require("source", src != nil).
		Require("action", fn != nil).
		Err(); err != nil {
		return nil, err
	}
	return node(src.restartable, func() stepper[T] {
		return &tapStepper[T]{up: upstream[T]{src: src}, fn: fn}
	}), nil
}

type tapStepper[T any] struct {
	up upstream[T]
	fn func(context.Context, T) error
}

func (s *tapStepper[T]) step(ctx context.Context) (T, bool, error) {
	v, ok, err := s.up.next(ctx)
	if err != nil || !ok {
		return v, false, err
	}
	if err := s.fn(ctx, v); err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

func (s *tapStepper[T]) release() error { return s.up.release() }

// Concat joins sequences end to end. Only one upstream is open at a time:
// the next sequence is opened once the previous one is exhausted and
// released. The result is restartable when every part is.
func Concat[T any](first *Sequence[T], rest ...*Sequence[T]) (*Sequence[T], error) {
	check := validation.For("seq.Concat").Require("first", first != nil)
	parts := append([]*Sequence[T]{first}, rest...)
	restartable := true
	for _, p := range rest {
		check.Require("rest", p != nil)
		if p != nil && !p.restartable {
			restartable = false
		}
	}
	if err := check.Err(); err != nil {
		return nil, err
	}
	restartable = restartable && first.restartable
	return node(restartable, func() stepper[T] { return &concatStepper[T]{parts: parts} }), nil
}

type concatStepper[T any] struct {
	parts []*Sequence[T]
	index int
	up    upstream[T]
}

func (s *concatStepper[T]) step(ctx context.Context) (T, bool, error) {
	for s.index < len(s.parts) {
		if s.up.src == nil {
			s.up = upstream[T]{src: s.parts[s.index]}
		}
		v, ok, err := s.up.next(ctx)
		if err != nil {
			return v, false, err
		}
		if ok {
			return v, true, nil
		}
		if err := s.up.release(); err != nil {
			return v, false, err
		}
		s.up = upstream[T]{}
		s.index++
	}
	var zero T
	return zero, false, nil
}

func (s *concatStepper[T]) release() error { return s.up.release() }

// Chunk groups consecutive values into slices of size; the final slice may
// be shorter. Each slice is newly allocated.
func Chunk[T any](src *Sequence[T], size int) (*Sequence[[]T], error) {
	if err := validation.For("seq.Chunk").
		Require("source", src != nil).
		Positive("size", size).
		Err(); err != nil {
		return nil, err
	}
	return node(src.restartable, func() stepper[[]T] {
		return &chunkStepper[T]{up: upstream[T]{src: src}, size: size}
	}), nil
}

type chunkStepper[T any] struct {
	up   upstream[T]
	size int
	done bool
}

func (s *chunkStepper[T]) step(ctx context.Context) ([]T, bool, error) {
	if s.done {
		return nil, false, nil
	}
	batch := make([]T, 0, s.size)
	for len(batch) < s.size {
		v, ok, err := s.up.next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			s.done = true
			break
		}
		batch = append(batch, v)
	}
	if len(batch) == 0 {
		return nil, false, nil
	}
	return batch, true, nil
}

func (s *chunkStepper[T]) release() error { return s.up.release() }
