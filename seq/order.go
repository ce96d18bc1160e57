package seq

import (
	"cmp"
	"context"
	"slices"

	"github.com/kbukum/seqkit/validation"
)

// Ordered is a sorted sequence that accepts further (secondary) keys.
// Ordered values are immutable: ThenBy returns a new Ordered and leaves the
// receiver untouched, so key composition is always final by the time a
// sequence is pulled.
type Ordered[T any] struct {
	*Sequence[T]
	source *Sequence[T]
	keys   []func(a, b T) int
}

// OrderBy sorts by key in ascending order. The sort is stable and fully
// buffered: the whole source is drained on the first pull.
func OrderBy[T any, K cmp.Ordered](src *Sequence[T], key func(T) K) (*Ordered[T], error) {
	return orderByKey("seq.OrderBy", src, key, false)
}

// OrderByDescending sorts by key in descending order, keeping equal
// elements in source order.
func OrderByDescending[T any, K cmp.Ordered](src *Sequence[T], key func(T) K) (*Ordered[T], error) {
	return orderByKey("seq.OrderByDescending", src, key, true)
}

// OrderByFunc sorts with a comparator returning a negative number when a
// sorts before b.
func OrderByFunc[T any](src *Sequence[T], compare func(a, b T) int) (*Ordered[T], error) {
	if err := validation.For("seq.OrderByFunc").
		Require("source", src != nil).
		Require("compare", compare != nil).
		Err(); err != nil {
		return nil, err
	}
	return newOrdered(src, OpOrderBy, compare, false, compare), nil
}

// ThenBy adds an ascending secondary key.
func ThenBy[T any, K cmp.Ordered](o *Ordered[T], key func(T) K) (*Ordered[T], error) {
	return thenByKey("seq.ThenBy", o, key, false)
}

// ThenByDescending adds a descending secondary key.
func ThenByDescending[T any, K cmp.Ordered](o *Ordered[T], key func(T) K) (*Ordered[T], error) {
	return thenByKey("seq.ThenByDescending", o, key, true)
}

// ThenByFunc adds a secondary comparator.
func ThenByFunc[T any](o *Ordered[T], compare func(a, b T) int) (*Ordered[T], error) {
	if err := validation.For("seq.ThenByFunc").
		Require("ordered", o != nil).
		Require("compare", compare != nil).
		Err(); err != nil {
		return nil, err
	}
	return o.then(compare, false, compare), nil
}

func orderByKey[T any, K cmp.Ordered](op string, src *Sequence[T], key func(T) K, desc bool) (*Ordered[T], error) {
	if err := validation.For(op).
		Require("source", src != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	return newOrdered(src, OpOrderBy, key, desc, byKey(key)), nil
}

func thenByKey[T any, K cmp.Ordered](op string, o *Ordered[T], key func(T) K, desc bool) (*Ordered[T], error) {
	if err := validation.For(op).
		Require("ordered", o != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	return o.then(key, desc, byKey(key)), nil
}

func byKey[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

func directed[T any](compare func(a, b T) int, desc bool) func(a, b T) int {
	if !desc {
		return compare
	}
	return func(a, b T) int { return compare(b, a) }
}

// sortOp describes an ordering key to a provider. Compare is always the
// ascending comparison; Descending carries the direction.
func sortOp[T any](kind OpKind, fn any, desc bool, compare func(a, b T) int) Operation {
	return Operation{
		Kind:       kind,
		Func:       fn,
		Descending: desc,
		Compare:    func(a, b any) int { return compare(as[T](a), as[T](b)) },
	}
}

func newOrdered[T any](src *Sequence[T], kind OpKind, fn any, desc bool, compare func(a, b T) int) *Ordered[T] {
	if src.provider != nil {
		return &Ordered[T]{Sequence: extend[T, T](src, sortOp(kind, fn, desc, compare))}
	}
	keys := []func(a, b T) int{directed(compare, desc)}
	return &Ordered[T]{Sequence: sorted(src, keys), source: src, keys: keys}
}

func (o *Ordered[T]) then(fn any, desc bool, compare func(a, b T) int) *Ordered[T] {
	if o.provider != nil {
		return &Ordered[T]{Sequence: extend[T, T](o.Sequence, sortOp(OpThenBy, fn, desc, compare))}
	}
	keys := append(slices.Clip(o.keys), directed(compare, desc))
	return &Ordered[T]{Sequence: sorted(o.source, keys), source: o.source, keys: keys}
}

func sorted[T any](src *Sequence[T], keys []func(a, b T) int) *Sequence[T] {
	compare := func(a, b T) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return 0
	}
	s := node(src.restartable, func() stepper[T] {
		return &bufferStepper[T]{up: upstream[T]{src: src}, prepare: func(items []T) {
			slices.SortStableFunc(items, compare)
		}}
	})
	s.size = src.size
	return s
}

// Reverse yields the values in reverse order. Fully buffered.
func Reverse[T any](src *Sequence[T]) (*Sequence[T], error) {
	if err := validation.For("seq.Reverse").Require("source", src != nil).Err(); err != nil {
		return nil, err
	}
	s := node(src.restartable, func() stepper[T] {
		return &bufferStepper[T]{up: upstream[T]{src: src}, prepare: slices.Reverse[[]T]}
	})
	s.size = src.size
	return s, nil
}

// bufferStepper drains its upstream on the first pull, releases it, then
// yields the prepared buffer.
type bufferStepper[T any] struct {
	up      upstream[T]
	prepare func([]T)
	items   []T
	pos     int
	loaded  bool
}

func (s *bufferStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	if !s.loaded {
		items, err := s.up.drain(ctx)
		if err != nil {
			return zero, false, err
		}
		if err := s.up.release(); err != nil {
			return zero, false, err
		}
		s.prepare(items)
		s.items = items
		s.loaded = true
	}
	if s.pos >= len(s.items) {
		return zero, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func (s *bufferStepper[T]) release() error {
	s.items = nil
	return s.up.release()
}
