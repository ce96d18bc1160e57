package seq

import (
	"context"

	"github.com/kbukum/seqkit/validation"
)

// Skip discards the first n values and streams the rest untouched.
func Skip[T any](src *Sequence[T], n int) (*Sequence[T], error) {
	if err := validation.For("seq.Skip").
		Require("source", src != nil).
		NonNegative("count", n).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, T](src, Operation{Kind: OpSkip, Count: n}), nil
	}
	if n == 0 {
		return src, nil
	}
	return node(src.restartable, func() stepper[T] {
		return &skipStepper[T]{up: upstream[T]{src: src}, remaining: n}
	}), nil
}

type skipStepper[T any] struct {
	up        upstream[T]
	remaining int
}

func (s *skipStepper[T]) step(ctx context.Context) (T, bool, error) {
	for s.remaining > 0 {
		s.remaining--
		if _, ok, err := s.up.next(ctx); err != nil || !ok {
			var zero T
			return zero, false, err
		}
	}
	return s.up.next(ctx)
}

func (s *skipStepper[T]) release() error { return s.up.release() }

// Take yields at most n values. Once the quota is met it stops pulling and
// releases upstream immediately, without waiting for Close. Take(src, 0)
// never opens upstream.
func Take[T any](src *Sequence[T], n int) (*Sequence[T], error) {
	if err := validation.For("seq.Take").
		Require("source", src != nil).
		NonNegative("count", n).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, T](src, Operation{Kind: OpTake, Count: n}), nil
	}
	return node(src.restartable, func() stepper[T] {
		return &takeStepper[T]{up: upstream[T]{src: src}, remaining: n}
	}), nil
}

type takeStepper[T any] struct {
	up        upstream[T]
	remaining int
}

func (s *takeStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	if s.remaining <= 0 {
		return zero, false, nil
	}
	v, ok, err := s.up.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	s.remaining--
	if s.remaining == 0 {
		if err := s.up.release(); err != nil {
			return zero, false, err
		}
	}
	return v, true, nil
}

func (s *takeStepper[T]) release() error { return s.up.release() }

// SkipWhile discards values while pred holds, then streams the first
// failing value and everything after it without calling pred again.
func SkipWhile[T any](src *Sequence[T], pred func(T) bool) (*Sequence[T], error) {
	if err := validation.For("seq.SkipWhile").
		Require("source", src != nil).
		Require("predicate", pred != nil).
		Err(); err != nil {
		return nil, err
	}
	return node(src.restartable, func() stepper[T] {
		return &skipWhileStepper[T]{up: upstream[T]{src: src}, pred: pred}
	}), nil
}

type skipWhileStepper[T any] struct {
	up      upstream[T]
	pred    func(T) bool
	yielded bool
}

func (s *skipWhileStepper[T]) step(ctx context.Context) (T, bool, error) {
	if s.yielded {
		return s.up.next(ctx)
	}
	for {
		v, ok, err := s.up.next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		if !s.pred(v) {
			s.yielded = true
			return v, true, nil
		}
	}
}

func (s *skipWhileStepper[T]) release() error { return s.up.release() }

// TakeWhile yields values while pred holds. The first failing value is
// consumed but not yielded, and upstream is released at that point.
func TakeWhile[T any](src *Sequence[T], pred func(T) bool) (*Sequence[T], error) {
	if err := validation.For("seq.TakeWhile").
		Require("source", src != nil).
		Require("predicate", pred != nil).
		Err(); err != nil {
		return nil, err
	}
	return node(src.restartable, func() stepper[T] {
		return &takeWhileStepper[T]{up: upstream[T]{src: src}, pred: pred}
	}), nil
}

type takeWhileStepper[T any] struct {
	up   upstream[T]
	pred func(T) bool
}

func (s *takeWhileStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	v, ok, err := s.up.next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if !s.pred(v) {
		return zero, false, nil
	}
	return v, true, nil
}

func (s *takeWhileStepper[T]) release() error { return s.up.release() }
