package seq

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/validation"
)

// Provider executes queries outside the process, for example by translating
// them into a foreign query language. The core never invokes the functions
// recorded in a Query; it only describes them.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// Execute runs q and returns an iterator over the results. It is called
	// on the first pull of each iteration of a provider-backed sequence.
	Execute(ctx context.Context, q Query) (Iterator[any], error)
}

// OpKind identifies the operation described by an Operation.
type OpKind string

const (
	OpFilter   OpKind = "filter"
	OpMap      OpKind = "map"
	OpOrderBy  OpKind = "order_by"
	OpThenBy   OpKind = "then_by"
	OpGroupBy  OpKind = "group_by"
	OpSkip     OpKind = "skip"
	OpTake     OpKind = "take"
	OpDistinct OpKind = "distinct"
)

// Operation describes one requested operator. Func holds the caller's
// function exactly as supplied; the type-erased adapters let an interpreting
// provider apply it without knowing the static types.
type Operation struct {
	Kind OpKind
	// Func is the caller's predicate, selector, key selector or comparator.
	Func any
	// Descending is set for descending OrderBy/ThenBy keys.
	Descending bool
	// Count is the bound of Skip and Take.
	Count int

	Predicate func(v any) bool
	Selector  func(ctx context.Context, v any) (any, error)
	Key       func(v any) any
	Compare   func(a, b any) int
	// Group builds the Grouping value for a key and its elements.
	Group func(key any, elements []any) any
}

func (op Operation) String() string {
	switch op.Kind {
	case OpSkip, OpTake:
		return fmt.Sprintf("%s(%d)", op.Kind, op.Count)
	case OpOrderBy, OpThenBy:
		if op.Descending {
			return string(op.Kind) + " desc"
		}
		return string(op.Kind) + " asc"
	default:
		return string(op.Kind)
	}
}

// Query is the immutable list of operations recorded against a named source.
type Query struct {
	Source string
	Ops    []Operation
}

func (q Query) with(op Operation) Query {
	ops := slices.Clone(q.Ops)
	return Query{Source: q.Source, Ops: append(ops, op)}
}

// String renders the query as "source | op | op".
func (q Query) String() string {
	parts := make([]string, 0, len(q.Ops)+1)
	parts = append(parts, q.Source)
	for _, op := range q.Ops {
		parts = append(parts, op.String())
	}
	return strings.Join(parts, " | ")
}

// Provided returns a sequence backed by p and reading from the named source.
// The sequence is restartable: every iteration executes the query again.
func Provided[T any](p Provider, source string) (*Sequence[T], error) {
	if err := validation.For("seq.Provided").
		Require("provider", p != nil).
		Custom(source != "", "source", "must not be empty").
		Err(); err != nil {
		return nil, err
	}
	return provided[T](p, Query{Source: source}), nil
}

func provided[T any](p Provider, q Query) *Sequence[T] {
	s := node(true, func() stepper[T] { return &providerStepper[T]{provider: p, query: q} })
	s.provider = p
	s.query = q
	return s
}

// extend records op on a provider-backed sequence, producing elements of type O.
func extend[T, O any](s *Sequence[T], op Operation) *Sequence[O] {
	return provided[O](s.provider, s.query.with(op))
}

type providerStepper[T any] struct {
	provider Provider
	query    Query
	it       Iterator[any]
	executed bool
}

func (s *providerStepper[T]) step(ctx context.Context) (T, bool, error) {
	var zero T
	if !s.executed {
		s.executed = true
		it, err := s.provider.Execute(ctx, s.query)
		if err != nil {
			if _, ok := errors.AsError(err); ok {
				return zero, false, err
			}
			return zero, false, errors.ProviderFailed(s.provider.Name(), err)
		}
		s.it = it
	}
	if s.it == nil {
		return zero, false, nil
	}
	v, ok, err := s.it.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if v == nil {
		return zero, true, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, false, errors.TypeMismatch(s.provider.Name(), reflect.TypeFor[T]().String(), v)
	}
	return t, true, nil
}

func (s *providerStepper[T]) release() error {
	if s.it == nil {
		return nil
	}
	return s.it.Close()
}

// as converts an erased element back to T, yielding the zero value for nil.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}
