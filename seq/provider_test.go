package seq

import (
	"context"
	"errors"
	"testing"
)

// recordingProvider returns rows for every query and records what it was
// asked to execute.
type recordingProvider struct {
	rows    []any
	err     error
	queries []Query
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) Execute(_ context.Context, q Query) (Iterator[any], error) {
	p.queries = append(p.queries, q)
	if p.err != nil {
		return nil, p.err
	}
	return FromSlice(p.rows).Iter(), nil
}

func TestProvided_RecordsWithoutInvoking(t *testing.T) {
	p := &recordingProvider{rows: []any{"x"}}
	calls := 0
	src := Must(Provided[int](p, "numbers"))
	filtered := Must(Filter(src, func(int) bool { calls++; return true }))
	mapped := Must(Map(filtered, func(_ context.Context, n int) (string, error) {
		calls++
		return "", nil
	}))
	ordered := Must(OrderByDescending(mapped, func(s string) int { calls++; return len(s) }))
	paged := Must(Take(Must(Skip(ordered.Sequence, 2)), 5))

	if calls != 0 {
		t.Fatalf("building a provider query invoked user functions %d times", calls)
	}
	if len(p.queries) != 0 {
		t.Fatal("query executed before the first pull")
	}
	if !paged.Provided() {
		t.Fatal("operators with a description kind should stay provider-backed")
	}
	want := "numbers | filter | map | order_by desc | skip(2) | take(5)"
	if got := paged.Query().String(); got != want {
		t.Errorf("Query() = %q, want %q", got, want)
	}
	// Extending a query never changes the one it came from.
	if got := filtered.Query().String(); got != "numbers | filter" {
		t.Errorf("parent query mutated: %q", got)
	}

	byParity := Must(DistinctBy(src, func(n int) int { calls++; return n % 2 }))
	grouped := Must(GroupByElement(src,
		func(n int) bool { calls++; return n > 0 },
		func(n int) string { calls++; return "" }))
	if calls != 0 {
		t.Fatalf("DistinctBy/GroupByElement invoked user functions %d times", calls)
	}
	if !byParity.Provided() || byParity.Query().String() != "numbers | distinct" {
		t.Errorf("DistinctBy query = %q, provided %v", byParity.Query(), byParity.Provided())
	}
	if !grouped.Provided() || grouped.Query().String() != "numbers | group_by" {
		t.Errorf("GroupByElement query = %q, provided %v", grouped.Query(), grouped.Provided())
	}
}

func TestProvided_ExecutesOnEachIteration(t *testing.T) {
	p := &recordingProvider{rows: []any{"a", "b"}}
	s := Must(Distinct(Must(Provided[string](p, "letters"))))

	assertEqual(t, collect(t, s), []string{"a", "b"})
	assertEqual(t, collect(t, s), []string{"a", "b"})
	if len(p.queries) != 2 {
		t.Errorf("executions = %d, want 2", len(p.queries))
	}
	if p.queries[0].Ops[0].Kind != OpDistinct {
		t.Errorf("op = %v, want distinct", p.queries[0].Ops[0])
	}
}

func TestProvided_EagerValidation(t *testing.T) {
	src := Must(Provided[int](&recordingProvider{}, "numbers"))
	_, err := Filter(src, nil)
	assertInvalid(t, err)
	_, err = Take(src, -1)
	assertInvalid(t, err)
	_, err = Provided[int](nil, "numbers")
	assertInvalid(t, err)
	_, err = Provided[int](&recordingProvider{}, "")
	assertInvalid(t, err)
}

func TestProvided_TypeMismatch(t *testing.T) {
	p := &recordingProvider{rows: []any{1, "two"}}
	_, err := ToSlice(context.Background(), Must(Provided[int](p, "numbers")))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("error = %v, want TYPE_MISMATCH", err)
	}
}

func TestProvided_NilElementIsZero(t *testing.T) {
	p := &recordingProvider{rows: []any{nil, 3}}
	assertEqual(t, collect(t, Must(Provided[int](p, "numbers"))), []int{0, 3})
}

func TestProvided_ExecuteFailure(t *testing.T) {
	boom := errors.New("connection refused")
	p := &recordingProvider{err: boom}
	_, err := ToSlice(context.Background(), Must(Provided[int](p, "numbers")))
	if !errors.Is(err, ErrProviderFailed) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want PROVIDER_FAILED caused by boom", err)
	}

	p.err = ErrUnsupported
	_, err = ToSlice(context.Background(), Must(Provided[int](p, "numbers")))
	if errors.Is(err, ErrProviderFailed) || !errors.Is(err, ErrUnsupported) {
		t.Fatalf("coded provider errors should pass through, got %v", err)
	}
}

func TestProvided_FallbackToInProcess(t *testing.T) {
	p := &recordingProvider{rows: []any{1, 2}}
	src := Must(Provided[int](p, "numbers"))
	flat := Must(FlatMap(src, func(_ context.Context, n int) (*Sequence[int], error) {
		return Repeat(n, n)
	}))
	if flat.Provided() {
		t.Fatal("FlatMap has no description kind and should run in process")
	}
	assertEqual(t, collect(t, flat), []int{1, 2, 2})
	if len(p.queries) != 1 || len(p.queries[0].Ops) != 0 {
		t.Errorf("provider should execute the bare source, got %v", p.queries)
	}
}

func TestProvided_ErasedAdapters(t *testing.T) {
	p := &recordingProvider{}
	src := Must(Provided[person](p, "people"))
	ordered := Must(ThenBy(Must(OrderBy(src, func(p person) int { return p.age })),
		func(p person) string { return p.name }))
	grouped := Must(GroupBy(ordered.Sequence, func(p person) int { return p.age }))

	ops := grouped.Query().Ops
	if len(ops) != 3 || ops[1].Kind != OpThenBy || ops[2].Kind != OpGroupBy {
		t.Fatalf("ops = %v", ops)
	}
	ann, bob := person{"ann", 30}, person{"bob", 25}
	if ops[0].Compare(ann, bob) <= 0 {
		t.Error("order_by compare should sort by age ascending")
	}
	if ops[2].Key(ann) != 30 {
		t.Errorf("group key = %v", ops[2].Key(ann))
	}
	g, ok := ops[2].Group(30, []any{ann}).(*Grouping[int, person])
	if !ok || g.Key() != 30 || g.Len() != 1 {
		t.Errorf("group adapter built %#v", g)
	}

	byName := Must(GroupByElement(src,
		func(p person) int { return p.age },
		func(p person) string { return p.name }))
	op := byName.Query().Ops[0]
	ng, ok := op.Group(op.Key(bob), []any{bob}).(*Grouping[int, string])
	if !ok || ng.Key() != 25 {
		t.Fatalf("element group adapter built %#v", ng)
	}
	assertEqual(t, ng.Slice(), []string{"bob"})

	byAge := Must(DistinctBy(src, func(p person) int { return p.age }))
	if k := byAge.Query().Ops[0].Key(ann); k != 30 {
		t.Errorf("distinct key = %v, want 30", k)
	}
}
