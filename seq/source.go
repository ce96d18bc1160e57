package seq

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// --- Restartable sources ---

// Empty returns a sequence with no elements. Restartable, size 0.
func Empty[T any]() *Sequence[T] {
	return FromSlice[T](nil)
}

// FromSlice creates a sequence over items. The slice is not copied and must
// not be modified while the sequence is in use. Restartable, known size.
func FromSlice[T any](items []T) *Sequence[T] {
	s := node(true, func() stepper[T] { return &sliceStepper[T]{items: items} })
	s.size = len(items)
	return s
}

// Of creates a sequence over the given values. Restartable, known size.
func Of[T any](items ...T) *Sequence[T] {
	return FromSlice(items)
}

// Range yields count consecutive integers starting at start. Restartable,
// known size.
func Range(start, count int) (*Sequence[int], error) {
	if err := validation.For("seq.Range").NonNegative("count", count).Err(); err != nil {
		return nil, err
	}
	s := node(true, func() stepper[int] {
		return &generateStepper[int]{next: start, limit: count, advance: func(n int) int { return n + 1 }}
	})
	s.size = count
	return s, nil
}

// Repeat yields v count times. Restartable, known size.
func Repeat[T any](v T, count int) (*Sequence[T], error) {
	if err := validation.For("seq.Repeat").NonNegative("count", count).Err(); err != nil {
		return nil, err
	}
	s := node(true, func() stepper[T] {
		return &generateStepper[T]{next: v, limit: count, advance: func(x T) T { return x }}
	})
	s.size = count
	return s, nil
}

// Iterate yields seed, next(seed), next(next(seed)), ... without end.
// Restartable, infinite: pair it with Take, TakeWhile or a short-circuiting
// terminal.
func Iterate[T any](seed T, next func(T) T) (*Sequence[T], error) {
	if err := validation.For("seq.Iterate").Require("next", next != nil).Err(); err != nil {
		return nil, err
	}
	return node(true, func() stepper[T] {
		return &generateStepper[T]{next: seed, limit: -1, advance: next}
	}), nil
}

// FromFunc creates a sequence from a factory that produces an Iterator. The
// factory is invoked on the first pull of every iteration, so the sequence
// is restartable as long as the factory returns a fresh iterator each time.
// The produced iterator is closed exactly once.
func FromFunc[T any](factory func(ctx context.Context) Iterator[T]) (*Sequence[T], error) {
	if err := validation.For("seq.FromFunc").Require("factory", factory != nil).Err(); err != nil {
		return nil, err
	}
	return node(true, func() stepper[T] { return &iteratorStepper[T]{factory: factory} }), nil
}

// FromSeq adapts a range-over-func sequence that can be ranged over more
// than once, such as slices.Values or maps.Keys. The pull cursor is stopped
// on release. Use FromSeqOnce for a one-shot iter.Seq.
func FromSeq[T any](s iter.Seq[T]) (*Sequence[T], error) {
	if err := validation.For("seq.FromSeq").Require("seq", s != nil).Err(); err != nil {
		return nil, err
	}
	return node(true, func() stepper[T] { return &pullStepper[T]{seq: s} }), nil
}

// --- Single-pass sources ---

// From wraps an existing Iterator. Single-pass: the iterator is claimed by
// the first iteration that pulls from it and closed when that iteration is
// exhausted or abandoned; any later iteration fails with SOURCE_CONSUMED.
func From[T any](it Iterator[T]) (*Sequence[T], error) {
	if err := validation.For("seq.From").Require("iterator", it != nil).Err(); err != nil {
		return nil, err
	}
	claim := &singlePass{source: "seq.From"}
	return node(false, func() stepper[T] {
		return &iteratorStepper[T]{
			claim:   claim,
			factory: func(context.Context) Iterator[T] { return it },
		}
	}), nil
}

// FromChannel yields values received from ch until it is closed or the
// context is cancelled. Single-pass; the channel is never closed by the
// sequence.
func FromChannel[T any](ch <-chan T) (*Sequence[T], error) {
	if err := validation.For("seq.FromChannel").Require("channel", ch != nil).Err(); err != nil {
		return nil, err
	}
	claim := &singlePass{source: "seq.FromChannel"}
	return node(false, func() stepper[T] { return &channelStepper[T]{ch: ch, claim: claim} }), nil
}

// FromSeqOnce adapts a one-shot range-over-func sequence, for example one
// that drains a channel or a network stream. Single-pass: any iteration after
// the one that first pulls fails with SOURCE_CONSUMED.
func FromSeqOnce[T any](s iter.Seq[T]) (*Sequence[T], error) {
	if err := validation.For("seq.FromSeqOnce").Require("seq", s != nil).Err(); err != nil {
		return nil, err
	}
	claim := &singlePass{source: "seq.FromSeqOnce"}
	return node(false, func() stepper[T] { return &pullStepper[T]{seq: s, claim: claim} }), nil
}

// singlePass records that a one-shot source has been taken by an iteration.
type singlePass struct {
	source string
	taken  atomic.Bool
}

func (p *singlePass) acquire() error {
	if !p.taken.CompareAndSwap(false, true) {
		return errors.SourceConsumed(p.source)
	}
	return nil
}

// --- Steppers ---

type sliceStepper[T any] struct {
	items []T
	index int
}

func (s *sliceStepper[T]) step(_ context.Context) (T, bool, error) {
	if s.index >= len(s.items) {
		var zero T
		return zero, false, nil
	}
	v := s.items[s.index]
	s.index++
	return v, true, nil
}

func (s *sliceStepper[T]) release() error { return nil }

// generateStepper yields next, advance(next), ... limit times; limit < 0
// means forever.
type generateStepper[T any] struct {
	next    T
	limit   int
	emitted int
	advance func(T) T
}

func (s *generateStepper[T]) step(_ context.Context) (T, bool, error) {
	if s.limit >= 0 && s.emitted >= s.limit {
		var zero T
		return zero, false, nil
	}
	if s.emitted > 0 {
		s.next = s.advance(s.next)
	}
	s.emitted++
	return s.next, true, nil
}

func (s *generateStepper[T]) release() error { return nil }

type iteratorStepper[T any] struct {
	factory func(context.Context) Iterator[T]
	claim   *singlePass
	it      Iterator[T]
	opened  bool
}

func (s *iteratorStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	if !s.opened {
		if s.claim != nil {
			if err := s.claim.acquire(); err != nil {
				return zero, false, err
			}
		}
		s.opened = true
		s.it = s.factory(ctx)
	}
	if s.it == nil {
		return zero, false, nil
	}
	return s.it.Next(ctx)
}

func (s *iteratorStepper[T]) release() error {
	if s.it == nil {
		return nil
	}
	return s.it.Close()
}

type pullStepper[T any] struct {
	seq   iter.Seq[T]
	claim *singlePass
	next  func() (T, bool)
	stop  func()
}

func (s *pullStepper[T]) step(_ context.Context) (T, bool, error) {
	if s.next == nil {
		if s.claim != nil {
			if err := s.claim.acquire(); err != nil {
				var zero T
				return zero, false, err
			}
		}
		s.next, s.stop = iter.Pull(s.seq)
	}
	v, ok := s.next()
	return v, ok, nil
}

func (s *pullStepper[T]) release() error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}

type channelStepper[T any] struct {
	ch      <-chan T
	claim   *singlePass
	claimed bool
}

func (s *channelStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	if !s.claimed {
		if err := s.claim.acquire(); err != nil {
			return zero, false, err
		}
		s.claimed = true
	}
	select {
	case v, open := <-s.ch:
		return v, open, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (s *channelStepper[T]) release() error { return nil }
