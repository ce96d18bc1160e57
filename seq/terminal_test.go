package seq

import (
	"context"
	"errors"
	"testing"
)

func TestFirst(t *testing.T) {
	ctx := context.Background()
	c := newCounter(-1)
	v, err := First(ctx, c.seq())
	if err != nil || v != 0 {
		t.Fatalf("First() = %d, %v", v, err)
	}
	if c.pulls != 1 || c.closes != 1 {
		t.Errorf("pulls=%d closes=%d, want 1/1", c.pulls, c.closes)
	}

	v, err = FirstWhere(ctx, Of(1, 3, 4, 6), isEven)
	if err != nil || v != 4 {
		t.Errorf("FirstWhere() = %d, %v", v, err)
	}
}

func TestFirst_Empty(t *testing.T) {
	ctx := context.Background()
	if _, err := First(ctx, Empty[int]()); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("First(empty) error = %v, want EMPTY_SEQUENCE", err)
	}
	if _, err := FirstWhere(ctx, Of(1, 3), isEven); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("FirstWhere(no match) error = %v, want EMPTY_SEQUENCE", err)
	}
	v, err := FirstOrDefault(ctx, Empty[int]())
	if err != nil || v != 0 {
		t.Errorf("FirstOrDefault(empty) = %d, %v", v, err)
	}
	s, err := FirstOrDefaultWhere(ctx, Of("a", "b"), func(s string) bool { return s == "z" })
	if err != nil || s != "" {
		t.Errorf("FirstOrDefaultWhere(no match) = %q, %v", s, err)
	}
}

func TestSingle(t *testing.T) {
	ctx := context.Background()
	if v, err := Single(ctx, Of(7)); err != nil || v != 7 {
		t.Errorf("Single() = %d, %v", v, err)
	}
	if _, err := Single(ctx, Empty[int]()); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Single(empty) error = %v", err)
	}

	c := newCounter(-1)
	if _, err := Single(ctx, c.seq()); !errors.Is(err, ErrMultipleMatch) {
		t.Errorf("Single(many) error = %v", err)
	}
	if c.pulls != 2 || c.closes != 1 {
		t.Errorf("pulls=%d closes=%d: should stop after the second match", c.pulls, c.closes)
	}

	if v, err := SingleWhere(ctx, Of(1, 2, 3), isEven); err != nil || v != 2 {
		t.Errorf("SingleWhere() = %d, %v", v, err)
	}
	if _, err := SingleWhere(ctx, Of(2, 4), isEven); !errors.Is(err, ErrMultipleMatch) {
		t.Errorf("SingleWhere(many) error = %v", err)
	}
	if v, err := SingleOrDefault(ctx, Empty[int]()); err != nil || v != 0 {
		t.Errorf("SingleOrDefault(empty) = %d, %v", v, err)
	}
	if _, err := SingleOrDefault(ctx, Of(1, 2)); !errors.Is(err, ErrMultipleMatch) {
		t.Errorf("SingleOrDefault(many) error = %v", err)
	}
}

func TestLastAndElementAt(t *testing.T) {
	ctx := context.Background()
	if v, err := Last(ctx, Must(Range(0, 4))); err != nil || v != 3 {
		t.Errorf("Last() = %d, %v", v, err)
	}
	if _, err := Last(ctx, Empty[int]()); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Last(empty) error = %v", err)
	}
	if v, err := LastOrDefault(ctx, Empty[string]()); err != nil || v != "" {
		t.Errorf("LastOrDefault(empty) = %q, %v", v, err)
	}

	c := newCounter(-1)
	if v, err := ElementAt(ctx, c.seq(), 3); err != nil || v != 3 {
		t.Errorf("ElementAt(3) = %d, %v", v, err)
	}
	if c.pulls != 4 {
		t.Errorf("pulls = %d, want 4", c.pulls)
	}
	for _, idx := range []int{-1, 5} {
		if _, err := ElementAt(ctx, Of(1, 2), idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("ElementAt(%d) error = %v", idx, err)
		}
	}
	if _, err := ElementAt(ctx, Must(Filter(Of(1, 2, 3), isEven)), 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ElementAt past end error = %v", err)
	}
}

func TestCountAnyAll(t *testing.T) {
	ctx := context.Background()

	c := newCounter(5)
	if n, err := Count(ctx, c.seq()); err != nil || n != 5 {
		t.Errorf("Count() = %d, %v", n, err)
	}
	if n, err := Count(ctx, Must(Range(0, 1000))); err != nil || n != 1000 {
		t.Errorf("Count(range) = %d, %v", n, err)
	}
	if n, err := CountWhere(ctx, Must(Range(0, 10)), isEven); err != nil || n != 5 {
		t.Errorf("CountWhere() = %d, %v", n, err)
	}

	inf := newCounter(-1)
	if ok, err := Any(ctx, inf.seq()); err != nil || !ok {
		t.Errorf("Any() = %v, %v", ok, err)
	}
	if ok, _ := Any(ctx, Empty[int]()); ok {
		t.Error("Any(empty) = true")
	}
	inf = newCounter(-1)
	if ok, err := AnyWhere(ctx, inf.seq(), func(n int) bool { return n > 3 }); err != nil || !ok {
		t.Errorf("AnyWhere() = %v, %v", ok, err)
	}
	if inf.pulls != 5 {
		t.Errorf("AnyWhere pulls = %d, want 5", inf.pulls)
	}

	inf = newCounter(-1)
	if ok, err := All(ctx, inf.seq(), func(n int) bool { return n < 2 }); err != nil || ok {
		t.Errorf("All() = %v, %v", ok, err)
	}
	if inf.pulls != 3 || inf.closes != 1 {
		t.Errorf("All pulls=%d closes=%d", inf.pulls, inf.closes)
	}
	if ok, _ := All(ctx, Empty[int](), isEven); !ok {
		t.Error("All(empty) = false")
	}
	if ok, _ := Contains(ctx, Of("a", "b"), "b"); !ok {
		t.Error("Contains() = false")
	}
}

func TestToMap(t *testing.T) {
	ctx := context.Background()
	m, err := ToMap(ctx, Of("a", "bb", "ccc"), func(s string) int { return len(s) })
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 3 || m[2] != "bb" {
		t.Errorf("ToMap() = %v", m)
	}

	c := newCounter(10)
	_, err = ToMap(ctx, c.seq(), func(n int) int { return n % 3 })
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("error = %v, want DUPLICATE_KEY", err)
	}
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}

func TestAggregates(t *testing.T) {
	ctx := context.Background()
	if v, err := Aggregate(ctx, Of("a", "b", "c"), func(acc, s string) string { return acc + "," + s }); err != nil || v != "a,b,c" {
		t.Errorf("Aggregate() = %q, %v", v, err)
	}
	if _, err := Aggregate(ctx, Empty[int](), func(a, b int) int { return a + b }); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Aggregate(empty) error = %v", err)
	}
	if v, err := Fold(ctx, Of(1, 2, 3), "", func(acc string, n int) string { return acc + string(rune('0'+n)) }); err != nil || v != "123" {
		t.Errorf("Fold() = %q, %v", v, err)
	}
	if v, err := Fold(ctx, Empty[int](), 42, func(acc, n int) int { return acc + n }); err != nil || v != 42 {
		t.Errorf("Fold(empty) = %d, %v", v, err)
	}
	if v, err := Sum(ctx, Of(1.5, 2.5)); err != nil || v != 4 {
		t.Errorf("Sum() = %v, %v", v, err)
	}
	if v, err := Min(ctx, Of(3, 1, 2)); err != nil || v != 1 {
		t.Errorf("Min() = %d, %v", v, err)
	}
	if v, err := Max(ctx, Of("b", "c", "a")); err != nil || v != "c" {
		t.Errorf("Max() = %q, %v", v, err)
	}
	if _, err := Min(ctx, Empty[int]()); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Min(empty) error = %v", err)
	}
}

func TestForEachAndDrain(t *testing.T) {
	ctx := context.Background()
	var got []int
	err := ForEach(ctx, Of(1, 2, 3), func(_ context.Context, n int) error {
		got = append(got, n)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, got, []int{1, 2, 3})

	boom := errors.New("sink full")
	c := newCounter(10)
	r, err := Drain(c.seq(), func(_ context.Context, n int) error {
		if n == 1 {
			return boom
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.opens != 0 {
		t.Fatal("Drain pulled before Run")
	}
	if err := r.Run(ctx); err != boom {
		t.Fatalf("Run() = %v, want boom", err)
	}
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}

func TestTerminals_ValidateBeforePulling(t *testing.T) {
	ctx := context.Background()
	c := newCounter(3)
	_, err := FirstWhere(ctx, c.seq(), nil)
	assertInvalid(t, err)
	_, err = CountWhere(ctx, c.seq(), nil)
	assertInvalid(t, err)
	_, err = ToMap[int, int](ctx, c.seq(), nil)
	assertInvalid(t, err)
	_, err = Aggregate(ctx, c.seq(), nil)
	assertInvalid(t, err)
	_, err = ToSlice[int](ctx, nil)
	assertInvalid(t, err)
	if c.opens != 0 {
		t.Errorf("opens = %d, want 0", c.opens)
	}
}

func TestTerminal_PanicStillReleases(t *testing.T) {
	c := newCounter(5)
	func() {
		defer func() { _ = recover() }()
		_ = ForEach(context.Background(), c.seq(), func(context.Context, int) error {
			panic("boom")
		})
	}()
	if c.closes != 1 {
		t.Errorf("closes = %d, want 1", c.closes)
	}
}
