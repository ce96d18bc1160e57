package seq

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// Distinct yields the first occurrence of each value and suppresses later
// ones. The seen-set grows with the number of distinct values, so Distinct
// is unsuitable for infinite sources of unbounded cardinality. When T is an
// interface type, a value holding a slice, map or func fails the iteration
// with INVALID_ARGUMENT.
func Distinct[T comparable](src *Sequence[T]) (*Sequence[T], error) {
	if err := validation.For("seq.Distinct").Require("source", src != nil).Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, T](src, Operation{
			Kind: OpDistinct,
			Key:  func(v any) any { return v },
		}), nil
	}
	return distinctBy(src, func(v T) T { return v }), nil
}

// DistinctBy is like Distinct but compares values by key.
func DistinctBy[T any, K comparable](src *Sequence[T], key func(T) K) (*Sequence[T], error) {
	if err := validation.For("seq.DistinctBy").
		Require("source", src != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	if src.provider != nil {
		return extend[T, T](src, Operation{
			Kind: OpDistinct,
			Func: key,
			Key:  func(v any) any { return key(as[T](v)) },
		}), nil
	}
	return distinctBy(src, key), nil
}

func distinctBy[T any, K comparable](src *Sequence[T], key func(T) K) *Sequence[T] {
	return node(src.restartable, func() stepper[T] {
		return &distinctStepper[T, K]{up: upstream[T]{src: src}, key: key}
	})
}

type distinctStepper[T any, K comparable] struct {
	up   upstream[T]
	key  func(T) K
	seen map[K]struct{}
}

func (s *distinctStepper[T, K]) step(ctx context.Context) (T, bool, error) {
	if s.seen == nil {
		s.seen = make(map[K]struct{})
	}
	for {
		v, ok, err := s.up.next(ctx)
		if err != nil || !ok {
			return v, false, err
		}
		k := s.key(v)
		if err := checkKey("seq.Distinct", k); err != nil {
			return v, false, err
		}
		if _, dup := s.seen[k]; dup {
			continue
		}
		s.seen[k] = struct{}{}
		return v, true, nil
	}
}

func (s *distinctStepper[T, K]) release() error {
	s.seen = nil
	return s.up.release()
}

// checkKey reports a key that would panic as a map key. Only interface-typed
// keys can hold such values; for any other comparable K it is a no-op.
func checkKey[K comparable](op string, k K) error {
	if reflect.TypeFor[K]().Kind() != reflect.Interface {
		return nil
	}
	v := reflect.ValueOf(any(k))
	if !v.IsValid() || v.Comparable() {
		return nil
	}
	return errors.InvalidArgument(op, "key", fmt.Sprintf("has unhashable type %T", any(k)))
}
