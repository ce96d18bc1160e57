package seq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
)

// logged returns a restartable source over items that appends its lifecycle
// events to log.
func logged(name string, items []int, log *[]string) *Sequence[int] {
	return Must(FromFunc(func(context.Context) Iterator[int] {
		*log = append(*log, name+":open")
		return &loggedIter{name: name, items: items, log: log}
	}))
}

type loggedIter struct {
	name  string
	items []int
	pos   int
	log   *[]string
}

func (it *loggedIter) Next(context.Context) (int, bool, error) {
	if it.pos >= len(it.items) {
		return 0, false, nil
	}
	v := it.items[it.pos]
	it.pos++
	*it.log = append(*it.log, fmt.Sprintf("%s:%d", it.name, v))
	return v, true, nil
}

func (it *loggedIter) Close() error {
	*it.log = append(*it.log, it.name+":close")
	return nil
}

func TestFilter(t *testing.T) {
	s := Must(Filter(Must(Range(0, 10)), isEven))
	assertEqual(t, collect(t, s), []int{0, 2, 4, 6, 8})
	if _, ok := s.Len(); ok {
		t.Error("filtered sequence should not know its size")
	}
}

func TestFilter_EagerValidation(t *testing.T) {
	_, err := Filter[int](nil, isEven)
	assertInvalid(t, err)
	_, err = Filter(Of(1), nil)
	assertInvalid(t, err)
}

func TestFilter_Laziness(t *testing.T) {
	calls := 0
	s := Must(Filter(Of(1, 2, 3), func(int) bool {
		calls++
		return true
	}))
	it := s.Iter()
	defer it.Close()
	if calls != 0 {
		t.Fatalf("predicate called %d times before first pull", calls)
	}
	if _, _, err := it.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("predicate called %d times after one pull, want 1", calls)
	}
}

func TestFilter_FusionEquivalence(t *testing.T) {
	src := Must(Range(0, 30))
	var outerCalls, innerCalls int
	divisibleBy3 := func(n int) bool { outerCalls++; return n%3 == 0 }
	even := func(n int) bool { innerCalls++; return isEven(n) }

	fused := Must(Filter(Must(Filter(src, divisibleBy3)), even))
	if fused.filtered == nil || fused.filtered.src != src {
		t.Fatal("consecutive filters were not fused onto the original source")
	}
	got := collect(t, fused)

	var want []int
	for n := range 30 {
		if n%3 == 0 && isEven(n) {
			want = append(want, n)
		}
	}
	assertEqual(t, got, want)
	if outerCalls != 30 {
		t.Errorf("first predicate calls = %d, want 30", outerCalls)
	}
	if innerCalls != 10 {
		t.Errorf("second predicate calls = %d, want 10", innerCalls)
	}
}

func TestFilter_RestartableFollowsSource(t *testing.T) {
	single := Must(Filter(Must(From[int](&counterIter{c: newCounter(3)})), isEven))
	if single.Restartable() {
		t.Error("filter over single-pass source should be single-pass")
	}
	if !Must(Filter(Of(1), isEven)).Restartable() {
		t.Error("filter over restartable source should be restartable")
	}
}

func TestMap(t *testing.T) {
	s := Must(Map(Of(1, 2, 3), func(_ context.Context, n int) (string, error) {
		return fmt.Sprint(n * 2), nil
	}))
	assertEqual(t, collect(t, s), []string{"2", "4", "6"})
}

func TestMap_ExactlyOncePerConsumedElement(t *testing.T) {
	var seen []int
	s := Must(Map(Must(Range(0, 100)), func(_ context.Context, n int) (int, error) {
		seen = append(seen, n)
		return n, nil
	}))
	collect(t, Must(Take(s, 3)))
	assertEqual(t, seen, []int{0, 1, 2})
}

func TestMap_ErrorPropagatesUnchanged(t *testing.T) {
	boom := errors.New("bad value")
	c := newCounter(10)
	s := Must(Map(c.seq(), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	}))
	_, err := ToSlice(context.Background(), s)
	if err != boom {
		t.Fatalf("got %v, want boom unchanged", err)
	}
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}

func TestFlatMap(t *testing.T) {
	s := Must(FlatMap(Of(0, 1, 2, 0, 3), func(_ context.Context, n int) (*Sequence[int], error) {
		return Range(0, n)
	}))
	assertEqual(t, collect(t, s), []int{0, 0, 1, 0, 1, 2})
}

func TestFlatMap_NilInnerIsEmpty(t *testing.T) {
	s := Must(FlatMap(Of(1, 2, 3), func(_ context.Context, n int) (*Sequence[int], error) {
		if n == 2 {
			return nil, nil
		}
		return Of(n), nil
	}))
	assertEqual(t, collect(t, s), []int{1, 3})
}

func TestFlatMap_ReleasesInnerBeforeNextOuter(t *testing.T) {
	var log []string
	outer := logged("outer", []int{1, 2}, &log)
	s := Must(FlatMap(outer, func(_ context.Context, n int) (*Sequence[int], error) {
		return logged(fmt.Sprintf("in%d", n), []int{n * 10}, &log), nil
	}))
	collect(t, s)

	want := []string{
		"outer:open", "outer:1",
		"in1:open", "in1:10", "in1:close",
		"outer:2",
		"in2:open", "in2:20", "in2:close",
		"outer:close",
	}
	assertEqual(t, log, want)
}

func TestFlatMap_AbandonReleasesBoth(t *testing.T) {
	var log []string
	s := Must(FlatMap(logged("outer", []int{1, 2}, &log), func(_ context.Context, n int) (*Sequence[int], error) {
		return logged("inner", []int{n, n}, &log), nil
	}))
	assertEqual(t, collect(t, Must(Take(s, 1))), []int{1})

	closes := 0
	for _, e := range log {
		if e == "outer:close" || e == "inner:close" {
			closes++
		}
	}
	if closes != 2 {
		t.Errorf("log %v: expected outer and inner closed once each", log)
	}
}

func TestFlatMap_SelectorError(t *testing.T) {
	boom := errors.New("boom")
	c := newCounter(5)
	s := Must(FlatMap(c.seq(), func(context.Context, int) (*Sequence[int], error) {
		return nil, boom
	}))
	if _, err := ToSlice(context.Background(), s); err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}

func TestTap(t *testing.T) {
	var seen []string
	s := Must(Tap(Of("a", "b"), func(_ context.Context, v string) error {
		seen = append(seen, v)
		return nil
	}))
	assertEqual(t, collect(t, s), []string{"a", "b"})
	assertEqual(t, seen, []string{"a", "b"})
}

func TestConcat_OneUpstreamAtATime(t *testing.T) {
	var log []string
	s := Must(Concat(logged("a", []int{1}, &log), logged("b", []int{2}, &log), Empty[int]()))
	assertEqual(t, collect(t, s), []int{1, 2})
	assertEqual(t, log, []string{"a:open", "a:1", "a:close", "b:open", "b:2", "b:close"})
}

func TestConcat_Restartability(t *testing.T) {
	if !Must(Concat(Of(1), Of(2))).Restartable() {
		t.Error("concat of restartable parts should be restartable")
	}
	single := Must(From[int](&counterIter{c: newCounter(1)}))
	if Must(Concat(Of(1), single)).Restartable() {
		t.Error("concat with a single-pass part should be single-pass")
	}
	_, err := Concat(Of(1), nil)
	assertInvalid(t, err)
}

func TestChunk(t *testing.T) {
	got := collect(t, Must(Chunk(Must(Range(0, 7)), 3)))
	want := [][]int{{0, 1, 2}, {3, 4, 5}, {6}}
	if !slices.EqualFunc(got, want, slices.Equal[[]int]) {
		t.Errorf("got %v, want %v", got, want)
	}

	exact := collect(t, Must(Chunk(Must(Range(0, 4)), 2)))
	if len(exact) != 2 {
		t.Errorf("got %d chunks, want 2", len(exact))
	}

	_, err := Chunk(Of(1), 0)
	assertInvalid(t, err)
}
