package seq

import (
	"context"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// closeInto runs release and keeps its error unless err is already set.
func closeInto(err *error, release func() error) {
	if cerr := release(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// each pulls from a fresh iterator of src until fn reports false, an error
// occurs or the sequence ends. The iterator is always closed.
func each[T any](ctx context.Context, src *Sequence[T], fn func(T) (bool, error)) (err error) {
	it := src.Iter()
	defer closeInto(&err, it.Close)
	for {
		v, ok, nerr := it.Next(ctx)
		if nerr != nil {
			return nerr
		}
		if !ok {
			return nil
		}
		more, ferr := fn(v)
		if ferr != nil || !more {
			return ferr
		}
	}
}

func requireSource[T any](op string, src *Sequence[T]) error {
	return validation.For(op).Require("source", src != nil).Err()
}

func requirePredicate[T any](op string, src *Sequence[T], pred func(T) bool) error {
	return validation.For(op).
		Require("source", src != nil).
		Require("predicate", pred != nil).
		Err()
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion, an error or context cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// Drain creates a Runnable that pulls all values and sends each to sink.
// Nothing is pulled until Run is called; every Run is a fresh iteration.
func Drain[T any](src *Sequence[T], sink func(context.Context, T) error) (*Runnable, error) {
	if err := validation.For("seq.Drain").
		Require("source", src != nil).
		Require("sink", sink != nil).
		Err(); err != nil {
		return nil, err
	}
	return &Runnable{run: func(ctx context.Context) error {
		return each(ctx, src, func(v T) (bool, error) {
			return true, sink(ctx, v)
		})
	}}, nil
}

// ForEach calls fn for each value in order and stops at the first error.
func ForEach[T any](ctx context.Context, src *Sequence[T], fn func(context.Context, T) error) error {
	r, err := Drain(src, fn)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

// ToSlice collects every value into a slice.
func ToSlice[T any](ctx context.Context, src *Sequence[T]) ([]T, error) {
	if err := requireSource("seq.ToSlice", src); err != nil {
		return nil, err
	}
	var items []T
	if n, ok := src.Len(); ok {
		items = make([]T, 0, n)
	}
	err := each(ctx, src, func(v T) (bool, error) {
		items = append(items, v)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ToMap collects values into a map keyed by key. A repeated key fails with
// DUPLICATE_KEY.
func ToMap[T any, K comparable](ctx context.Context, src *Sequence[T], key func(T) K) (map[K]T, error) {
	if err := validation.For("seq.ToMap").
		Require("source", src != nil).
		Require("key", key != nil).
		Err(); err != nil {
		return nil, err
	}
	m := make(map[K]T)
	err := each(ctx, src, func(v T) (bool, error) {
		k := key(v)
		if err := checkKey("seq.ToMap", k); err != nil {
			return false, err
		}
		if _, dup := m[k]; dup {
			return false, errors.DuplicateKey("seq.ToMap", k)
		}
		m[k] = v
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Count returns the number of values. Sources of known size are counted
// without iterating.
func Count[T any](ctx context.Context, src *Sequence[T]) (int, error) {
	if err := requireSource("seq.Count", src); err != nil {
		return 0, err
	}
	if n, ok := src.Len(); ok {
		return n, nil
	}
	n := 0
	err := each(ctx, src, func(T) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// CountWhere returns the number of values satisfying pred.
func CountWhere[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (int, error) {
	if err := requirePredicate("seq.CountWhere", src, pred); err != nil {
		return 0, err
	}
	n := 0
	err := each(ctx, src, func(v T) (bool, error) {
		if pred(v) {
			n++
		}
		return true, nil
	})
	return n, err
}

// Any reports whether the sequence has at least one value. It pulls at most
// one element.
func Any[T any](ctx context.Context, src *Sequence[T]) (bool, error) {
	if err := requireSource("seq.Any", src); err != nil {
		return false, err
	}
	if n, ok := src.Len(); ok {
		return n > 0, nil
	}
	found := false
	err := each(ctx, src, func(T) (bool, error) {
		found = true
		return false, nil
	})
	return found, err
}

// AnyWhere reports whether some value satisfies pred, stopping at the first
// match.
func AnyWhere[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (bool, error) {
	if err := requirePredicate("seq.AnyWhere", src, pred); err != nil {
		return false, err
	}
	found := false
	err := each(ctx, src, func(v T) (bool, error) {
		found = pred(v)
		return !found, nil
	})
	return found, err
}

// All reports whether every value satisfies pred, stopping at the first
// violation. It is true for an empty sequence.
func All[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (bool, error) {
	if err := requirePredicate("seq.All", src, pred); err != nil {
		return false, err
	}
	all := true
	err := each(ctx, src, func(v T) (bool, error) {
		all = pred(v)
		return all, nil
	})
	return all, err
}

// Contains reports whether target occurs in the sequence.
func Contains[T comparable](ctx context.Context, src *Sequence[T], target T) (bool, error) {
	if err := requireSource("seq.Contains", src); err != nil {
		return false, err
	}
	return AnyWhere(ctx, src, func(v T) bool { return v == target })
}

// first returns the first value satisfying pred (any value when pred is nil).
func first[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (v T, found bool, err error) {
	err = each(ctx, src, func(x T) (bool, error) {
		if pred == nil || pred(x) {
			v, found = x, true
			return false, nil
		}
		return true, nil
	})
	return v, found, err
}

// First returns the first value, failing with EMPTY_SEQUENCE when there is none.
func First[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	var zero T
	if err := requireSource("seq.First", src); err != nil {
		return zero, err
	}
	v, found, err := first(ctx, src, nil)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence("seq.First")
	}
	return v, nil
}

// FirstWhere returns the first value satisfying pred, failing with
// EMPTY_SEQUENCE when nothing matches.
func FirstWhere[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (T, error) {
	var zero T
	if err := requirePredicate("seq.FirstWhere", src, pred); err != nil {
		return zero, err
	}
	v, found, err := first(ctx, src, pred)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence("seq.FirstWhere")
	}
	return v, nil
}

// FirstOrDefault returns the first value, or the zero value when the
// sequence is empty.
func FirstOrDefault[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	if err := requireSource("seq.FirstOrDefault", src); err != nil {
		var zero T
		return zero, err
	}
	v, _, err := first(ctx, src, nil)
	return v, err
}

// FirstOrDefaultWhere returns the first value satisfying pred, or the zero
// value when nothing matches.
func FirstOrDefaultWhere[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (T, error) {
	if err := requirePredicate("seq.FirstOrDefaultWhere", src, pred); err != nil {
		var zero T
		return zero, err
	}
	v, _, err := first(ctx, src, pred)
	return v, err
}

// single finds the only value satisfying pred (any value when pred is nil).
// It stops as soon as a second match is pulled.
func single[T any](ctx context.Context, op string, src *Sequence[T], pred func(T) bool) (v T, found bool, err error) {
	err = each(ctx, src, func(x T) (bool, error) {
		if pred != nil && !pred(x) {
			return true, nil
		}
		if found {
			return false, errors.MultipleMatch(op)
		}
		v, found = x, true
		return true, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, found, nil
}

// Single returns the only value. It fails with EMPTY_SEQUENCE when the
// sequence is empty and MULTIPLE_MATCH when it has more than one value.
func Single[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	var zero T
	if err := requireSource("seq.Single", src); err != nil {
		return zero, err
	}
	v, found, err := single(ctx, "seq.Single", src, nil)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence("seq.Single")
	}
	return v, nil
}

// SingleWhere returns the only value satisfying pred.
func SingleWhere[T any](ctx context.Context, src *Sequence[T], pred func(T) bool) (T, error) {
	var zero T
	if err := requirePredicate("seq.SingleWhere", src, pred); err != nil {
		return zero, err
	}
	v, found, err := single(ctx, "seq.SingleWhere", src, pred)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence("seq.SingleWhere")
	}
	return v, nil
}

// SingleOrDefault returns the only value, or the zero value for an empty
// sequence. More than one value still fails with MULTIPLE_MATCH.
func SingleOrDefault[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	if err := requireSource("seq.SingleOrDefault", src); err != nil {
		var zero T
		return zero, err
	}
	v, _, err := single(ctx, "seq.SingleOrDefault", src, nil)
	return v, err
}

func last[T any](ctx context.Context, src *Sequence[T]) (v T, found bool, err error) {
	err = each(ctx, src, func(x T) (bool, error) {
		v, found = x, true
		return true, nil
	})
	return v, found, err
}

// Last returns the final value, failing with EMPTY_SEQUENCE when there is none.
func Last[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	var zero T
	if err := requireSource("seq.Last", src); err != nil {
		return zero, err
	}
	v, found, err := last(ctx, src)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence("seq.Last")
	}
	return v, nil
}

// LastOrDefault returns the final value, or the zero value when the
// sequence is empty.
func LastOrDefault[T any](ctx context.Context, src *Sequence[T]) (T, error) {
	var zero T
	if err := requireSource("seq.LastOrDefault", src); err != nil {
		return zero, err
	}
	v, found, err := last(ctx, src)
	if err != nil || !found {
		return zero, err
	}
	return v, nil
}

// ElementAt returns the value at the zero-based index. An index outside the
// sequence fails with INDEX_OUT_OF_RANGE; a negative index fails before
// anything is pulled.
func ElementAt[T any](ctx context.Context, src *Sequence[T], index int) (T, error) {
	var zero T
	if err := requireSource("seq.ElementAt", src); err != nil {
		return zero, err
	}
	if index < 0 {
		return zero, errors.IndexOutOfRange("seq.ElementAt", index)
	}
	if n, ok := src.Len(); ok && index >= n {
		return zero, errors.IndexOutOfRange("seq.ElementAt", index)
	}
	i := 0
	var v T
	found := false
	err := each(ctx, src, func(x T) (bool, error) {
		if i == index {
			v, found = x, true
			return false, nil
		}
		i++
		return true, nil
	})
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.IndexOutOfRange("seq.ElementAt", index)
	}
	return v, nil
}
