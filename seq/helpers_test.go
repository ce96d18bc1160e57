package seq

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
)

// counter is an instrumented source of 0, 1, 2, ... that records how often
// it is opened, pulled and closed. limit < 0 means infinite.
type counter struct {
	limit  int
	failAt int
	err    error

	opens  int
	pulls  int
	closes int
}

func newCounter(limit int) *counter {
	return &counter{limit: limit, failAt: -1}
}

func (c *counter) seq() *Sequence[int] {
	return Must(FromFunc(func(context.Context) Iterator[int] {
		c.opens++
		return &counterIter{c: c}
	}))
}

type counterIter struct {
	c    *counter
	next int
}

func (it *counterIter) Next(context.Context) (int, bool, error) {
	it.c.pulls++
	if it.c.failAt >= 0 && it.next == it.c.failAt {
		return 0, false, it.c.err
	}
	if it.c.limit >= 0 && it.next >= it.c.limit {
		return 0, false, nil
	}
	v := it.next
	it.next++
	return v, true, nil
}

func (it *counterIter) Close() error {
	it.c.closes++
	return nil
}

// closeCounter is an io.ReadCloser that counts Close calls.
type closeCounter struct {
	data   []byte
	closes *int
}

func (r *closeCounter) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (r *closeCounter) Close() error {
	*r.closes++
	return nil
}

func collect[T any](t *testing.T, s *Sequence[T]) []T {
	t.Helper()
	got, err := ToSlice(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func assertEqual[T comparable](t *testing.T, got, want []T) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func isEven(n int) bool { return n%2 == 0 }
