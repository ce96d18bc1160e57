package seq

import "github.com/kbukum/seqkit/validation"

// Wrap decorates every iterator of src with fn. fn receives an iterator that
// has not acquired anything yet and must not pull from it; it is meant for
// instrumentation that observes Next and Close. The result is restartable
// exactly when src is.
func Wrap[T any](src *Sequence[T], fn func(Iterator[T]) Iterator[T]) (*Sequence[T], error) {
	if err := validation.For("seq.Wrap").
		Require("source", src != nil).
		Require("decorator", fn != nil).
		Err(); err != nil {
		return nil, err
	}
	return newSequence(src.restartable, func() Iterator[T] {
		return fn(src.Iter())
	}), nil
}
