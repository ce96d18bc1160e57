package seq

import (
	"context"
	"slices"

	"github.com/kbukum/seqkit/validation"
)

// Grouping is a key together with the elements that produced it, in source
// order.
type Grouping[K comparable, T any] struct {
	key      K
	elements []T
}

// Key returns the group key.
func (g *Grouping[K, T]) Key() K { return g.key }

// Len returns the number of elements in the group.
func (g *Grouping[K, T]) Len() int { return len(g.elements) }

// Elements returns the group's elements as a restartable sequence of known size.
func (g *Grouping[K, T]) Elements() *Sequence[T] { return FromSlice(g.elements) }

// Slice returns a copy of the group's elements.
func (g *Grouping[K, T]) Slice() []T { return slices.Clone(g.elements) }

// GroupBy partitions values by key. It drains the source on the first pull
// and emits one Grouping per distinct key, in order of first appearance.
// Keys are compared with ==.
func GroupBy[T any, K comparable](src *Sequence[T], key func(T) K) (*Sequence[*Grouping[K, T]], error) {
	if err := validation.For("seq.GroupBy").
		Require("source", src != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, *Grouping[K, T]](src, Operation{
			Kind: OpGroupBy,
			Func: key,
			Key:  func(v any) any { return key(as[T](v)) },
			Group: func(k any, elements []any) any {
				g := &Grouping[K, T]{key: as[K](k), elements: make([]T, len(elements))}
				for i, e := range elements {
					g.elements[i] = as[T](e)
				}
				return g
			},
		}), nil
	}
	return groupBy(src, key, func(v T) T { return v }), nil
}

// GroupByElement is like GroupBy but stores elem(v) in each group instead of v.
func GroupByElement[T any, K comparable, E any](src *Sequence[T], key func(T) K, elem func(T) E) (*Sequence[*Grouping[K, E]], error) {
	if err := validation.For("seq.GroupByElement").
		Require("source", src != nil).
		Require("key", key != nil).
		Require("element", elem != nil).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, *Grouping[K, E]](src, Operation{
			Kind: OpGroupBy,
			Func: key,
			Key:  func(v any) any { return key(as[T](v)) },
			Group: func(k any, elements []any) any {
				g := &Grouping[K, E]{key: as[K](k), elements: make([]E, len(elements))}
				for i, e := range elements {
					g.elements[i] = elem(as[T](e))
				}
				return g
			},
		}), nil
	}
	return groupBy(src, key, elem), nil
}

func groupBy[T any, K comparable, E any](src *Sequence[T], key func(T) K, elem func(T) E) *Sequence[*Grouping[K, E]] {
	return node(src.restartable, func() stepper[*Grouping[K, E]] {
		return &groupStepper[T, K, E]{up: upstream[T]{src: src}, key: key, elem: elem}
	})
}

type groupStepper[T any, K comparable, E any] struct {
	up     upstream[T]
	key    func(T) K
	elem   func(T) E
	groups []*Grouping[K, E]
	pos    int
	loaded bool
}

func (s *groupStepper[T, K, E]) step(ctx context.Context) (*Grouping[K, E], bool, error) {
	if !s.loaded {
		groups, err := collectGroups(ctx, &s.up, s.key, s.elem)
		if err != nil {
			return nil, false, err
		}
		if err := s.up.release(); err != nil {
			return nil, false, err
		}
		s.groups = groups
		s.loaded = true
	}
	if s.pos >= len(s.groups) {
		return nil, false, nil
	}
	g := s.groups[s.pos]
	s.pos++
	return g, true, nil
}

func (s *groupStepper[T, K, E]) release() error {
	s.groups = nil
	return s.up.release()
}

func collectGroups[T any, K comparable, E any](ctx context.Context, up *upstream[T], key func(T) K, elem func(T) E) ([]*Grouping[K, E], error) {
	var groups []*Grouping[K, E]
	index := make(map[K]int)
	for {
		v, ok, err := up.next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return groups, nil
		}
		k := key(v)
		if err := checkKey("seq.GroupBy", k); err != nil {
			return nil, err
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, &Grouping[K, E]{key: k})
		}
		groups[i].elements = append(groups[i].elements, elem(v))
	}
}

// Lookup is an immutable one-to-many map built by ToLookup. Keys keep the
// order in which they first appeared.
type Lookup[K comparable, T any] struct {
	groups []*Grouping[K, T]
	index  map[K]int
}

// Len returns the number of keys.
func (l *Lookup[K, T]) Len() int { return len(l.groups) }

// Keys returns the keys in first-appearance order.
func (l *Lookup[K, T]) Keys() []K {
	keys := make([]K, len(l.groups))
	for i, g := range l.groups {
		keys[i] = g.key
	}
	return keys
}

// Contains reports whether key has at least one element.
func (l *Lookup[K, T]) Contains(key K) bool {
	_, ok := l.index[key]
	return ok
}

// Get returns the elements stored under key; a missing key yields an
// empty sequence.
func (l *Lookup[K, T]) Get(key K) *Sequence[T] {
	if i, ok := l.index[key]; ok {
		return l.groups[i].Elements()
	}
	return Empty[T]()
}

// Groupings returns every group in first-appearance order.
func (l *Lookup[K, T]) Groupings() *Sequence[*Grouping[K, T]] {
	return FromSlice(l.groups)
}

// ToLookup drains src into a Lookup keyed by key.
func ToLookup[T any, K comparable](ctx context.Context, src *Sequence[T], key func(T) K) (_ *Lookup[K, T], err error) {
	if err := validation.For("seq.ToLookup").
		Require("source", src != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	up := upstream[T]{src: src}
	defer closeInto(&err, up.release)
	groups, err := collectGroups(ctx, &up, key, func(v T) T { return v })
	if err != nil {
		return nil, err
	}
	index := make(map[K]int, len(groups))
	for i, g := range groups {
		index[g.key] = i
	}
	return &Lookup[K, T]{groups: groups, index: index}, nil
}
