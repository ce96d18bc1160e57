package seq

import (
	"cmp"
	"context"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// Number is the constraint for Sum.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Aggregate combines the values left to right, using the first value as the
// initial accumulator. An empty sequence fails with EMPTY_SEQUENCE.
func Aggregate[T any](ctx context.Context, src *Sequence[T], fn func(acc, v T) T) (T, error) {
	var zero T
	if err := validation.For("seq.Aggregate").
		Require("source", src != nil).
		Require("func", fn != nil).
		Err(); err != nil {
		return zero, err
	}
	var acc T
	started := false
	err := each(ctx, src, func(v T) (bool, error) {
		if started {
			acc = fn(acc, v)
		} else {
			acc, started = v, true
		}
		return true, nil
	})
	if err != nil {
		return zero, err
	}
	if !started {
		return zero, errors.EmptySequence("seq.Aggregate")
	}
	return acc, nil
}

// Fold combines the values left to right starting from seed. An empty
// sequence returns seed.
func Fold[T, A any](ctx context.Context, src *Sequence[T], seed A, fn func(acc A, v T) A) (A, error) {
	if err := validation.For("seq.Fold").
		Require("source", src != nil).
		Require("func", fn != nil).
		Err(); err != nil {
		return seed, err
	}
	acc := seed
	err := each(ctx, src, func(v T) (bool, error) {
		acc = fn(acc, v)
		return true, nil
	})
	if err != nil {
		var zero A
		return zero, err
	}
	return acc, nil
}

// Sum adds the values. The sum of an empty sequence is zero.
func Sum[T Number](ctx context.Context, src *Sequence[T]) (T, error) {
	if err := requireSource("seq.Sum", src); err != nil {
		return 0, err
	}
	return Fold(ctx, src, T(0), func(acc, v T) T { return acc + v })
}

// Min returns the smallest value, failing with EMPTY_SEQUENCE when there is
// none. Ties keep the first occurrence.
func Min[T cmp.Ordered](ctx context.Context, src *Sequence[T]) (T, error) {
	return extreme(ctx, "seq.Min", src, func(a, b T) bool { return cmp.Less(b, a) })
}

// Max returns the largest value, failing with EMPTY_SEQUENCE when there is
// none. Ties keep the first occurrence.
func Max[T cmp.Ordered](ctx context.Context, src *Sequence[T]) (T, error) {
	return extreme(ctx, "seq.Max", src, func(a, b T) bool { return cmp.Less(a, b) })
}

// extreme keeps the current best unless replace(best, v) says v wins.
func extreme[T any](ctx context.Context, op string, src *Sequence[T], replace func(best, v T) bool) (T, error) {
	var zero T
	if err := requireSource(op, src); err != nil {
		return zero, err
	}
	var best T
	found := false
	err := each(ctx, src, func(v T) (bool, error) {
		if !found || replace(best, v) {
			best, found = v, true
		}
		return true, nil
	})
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, errors.EmptySequence(op)
	}
	return best, nil
}
