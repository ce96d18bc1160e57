// Package seq provides a lazy, composable, pull-based sequence-query engine.
//
// A *Sequence[T] is a description of how to produce elements. Nothing runs
// while a pipeline is being built: operator constructors only validate their
// arguments (returning an INVALID_ARGUMENT error immediately when a source or
// function is nil, or a count is negative) and wrap their upstream. Work
// happens only while a consumer pulls through Iter, Values or a terminal
// operator, and each pull recursively pulls from upstream on the calling
// goroutine.
//
// # Iterator lifecycle
//
// Every iterator produced by this package moves through the same states:
//
//	NotStarted -> Running -> Exhausted
//	     \           \
//	      `-----------`----> Abandoned   (Close before exhaustion, or an error)
//
// Upstream cursors are acquired on the first pull and released exactly once,
// as soon as the iterator is exhausted, abandoned or fails. Exhaustion is
// sticky; after a failure the iterator keeps returning the same error.
//
// # Sources
//
// FromSlice, Of, Empty, Range, Repeat, Iterate, FromFunc, FromSeq and Lines
// are restartable: each iteration replays from the start. From,
// FromChannel, FromSeqOnce and LinesOnce are single-pass; iterating them a
// second time fails with SOURCE_CONSUMED.
//
// # Operators
//
// Streaming (O(1) extra state unless noted):
//
//   - Filter, Map, FlatMap, Tap
//   - Skip, Take, SkipWhile, TakeWhile (Take stops pulling once its quota is met)
//   - Distinct, DistinctBy (remembers every distinct element seen; not suitable
//     for infinite sources with unbounded cardinality)
//   - Concat, Chunk
//
// Buffered (drain the whole source before the first element is yielded):
//
//   - OrderBy, OrderByDescending, OrderByFunc, then ThenBy, ThenByDescending,
//     ThenByFunc on the returned *Ordered (stable)
//   - GroupBy, GroupByElement (groups in first-appearance order of keys)
//   - Reverse
//
// Terminal (drive the pipeline immediately, short-circuiting where possible):
//
//   - ToSlice, ToMap, ToLookup, ForEach, Drain
//   - Count, CountWhere, Any, AnyWhere, All, Contains
//   - First, FirstWhere, FirstOrDefault, FirstOrDefaultWhere, Last, LastOrDefault
//   - Single, SingleWhere, SingleOrDefault, ElementAt
//   - Aggregate, Fold, Sum, Min, Max
//
// # Usage
//
//	src := seq.Must(seq.Range(0, 100))
//	evens := seq.Must(seq.Filter(src, func(n int) bool { return n%2 == 0 }))
//	squares := seq.Must(seq.Map(evens, func(_ context.Context, n int) (int, error) {
//	    return n * n, nil
//	}))
//	firstFive, err := seq.ToSlice(ctx, seq.Must(seq.Take(squares, 5)))
//
// # Providers
//
// A sequence created with Provided is backed by a Provider. Filter, Map,
// ordering, GroupBy, Skip, Take and Distinct then record an Operation in the
// sequence's Query instead of building an in-process node; the supplied
// functions are handed over uninvoked and the provider executes the query
// when the sequence is first pulled.
package seq
