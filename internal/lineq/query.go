package lineq

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kbukum/seqkit/seq"
	"github.com/kbukum/seqkit/validation"
)

// Query is a compiled Plan bound to its input. Nothing is read until Run.
type Query struct {
	plan   Plan
	out    *seq.Sequence[string]
	stages []string
}

type lines = seq.Sequence[string]

// builder threads a sequence through fallible stages, keeping the first error.
type builder struct {
	cur    *lines
	stages []string
	err    error
}

func (b *builder) then(name string, stage func(*lines) (*lines, error)) {
	if b.err != nil {
		return
	}
	b.cur, b.err = stage(b.cur)
	b.stages = append(b.stages, name)
}

// Build validates p and compiles it into a pipeline over input.
func Build(p Plan, input *seq.Sequence[string]) (*Query, error) {
	if err := validation.For("lineq.Build").Require("input", input != nil).Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	match, exclude, _ := p.patterns()

	b := &builder{cur: input}
	if p.Trim {
		b.then("trim", func(s *lines) (*lines, error) {
			return seq.Map(s, func(_ context.Context, l string) (string, error) {
				return strings.TrimSpace(l), nil
			})
		})
	}
	if p.SkipBlank {
		b.then("skip_blank", func(s *lines) (*lines, error) {
			return seq.Filter(s, func(l string) bool { return strings.TrimSpace(l) != "" })
		})
	}
	if match != nil {
		b.then("match", func(s *lines) (*lines, error) { return seq.Filter(s, match.MatchString) })
	}
	if exclude != nil {
		b.then("exclude", func(s *lines) (*lines, error) { return seq.Filter(s, not(exclude)) })
	}
	if p.Distinct {
		b.then("distinct", seq.Distinct[string])
	}

	if p.GroupBy != "" {
		b.then("group_by "+p.GroupBy, func(s *lines) (*lines, error) { return groupLines(s, p) })
	} else if p.Sort != "" {
		b.then("sort "+p.Sort, func(s *lines) (*lines, error) { return sortLines(s, p) })
	}

	if p.Skip > 0 {
		b.then(fmt.Sprintf("skip(%d)", p.Skip), func(s *lines) (*lines, error) { return seq.Skip(s, p.Skip) })
	}
	if p.Take > 0 {
		b.then(fmt.Sprintf("take(%d)", p.Take), func(s *lines) (*lines, error) { return seq.Take(s, p.Take) })
	}
	if b.err != nil {
		return nil, b.err
	}
	return &Query{plan: p, out: b.cur, stages: b.stages}, nil
}

// Stages names the compiled pipeline stages in order.
func (q *Query) Stages() []string { return q.stages }

// Run evaluates the query and writes its output to w, one row per line.
// It returns the number of rows written.
func (q *Query) Run(ctx context.Context, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	rows, err := q.run(ctx, bw)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return rows, err
}

func (q *Query) run(ctx context.Context, w io.Writer) (int, error) {
	switch {
	case q.plan.Count:
		n, err := seq.Count(ctx, q.out)
		if err != nil {
			return 0, err
		}
		_, err = fmt.Fprintln(w, n)
		return 1, err
	case q.plan.First:
		first, err := seq.First(ctx, q.out)
		if err != nil {
			return 0, err
		}
		_, err = fmt.Fprintln(w, first)
		return 1, err
	default:
		rows := 0
		err := seq.ForEach(ctx, q.out, func(_ context.Context, l string) error {
			rows++
			_, err := fmt.Fprintln(w, l)
			return err
		})
		return rows, err
	}
}

type group struct {
	key   string
	count int
}

// groupLines emits key<TAB>count per group, in first-appearance order unless
// the plan sorts: by key for sort_by=line, by count then key for
// sort_by=length.
func groupLines(s *lines, p Plan) (*lines, error) {
	groups, err := seq.GroupBy(s, groupKey(p.GroupBy))
	if err != nil {
		return nil, err
	}
	rows, err := seq.Map(groups, func(_ context.Context, g *seq.Grouping[string, string]) (group, error) {
		return group{key: g.Key(), count: g.Len()}, nil
	})
	if err != nil {
		return nil, err
	}
	if p.Sort != "" {
		desc := p.Sort == "desc"
		byKey := func(g group) string { return g.key }
		var o *seq.Ordered[group]
		if p.SortBy == "length" {
			o, err = orderBy(rows, desc, func(g group) int { return g.count })
			if err == nil {
				o, err = thenBy(o, desc, byKey)
			}
		} else {
			o, err = orderBy(rows, desc, byKey)
		}
		if err != nil {
			return nil, err
		}
		rows = o.Sequence
	}
	return seq.Map(rows, func(_ context.Context, g group) (string, error) {
		return g.key + "\t" + strconv.Itoa(g.count), nil
	})
}

func sortLines(s *lines, p Plan) (*lines, error) {
	desc := p.Sort == "desc"
	var (
		o   *seq.Ordered[string]
		err error
	)
	if p.SortBy == "length" {
		o, err = orderBy(s, desc, utf8.RuneCountInString)
		if err == nil {
			o, err = thenBy(o, desc, identity)
		}
	} else {
		o, err = orderBy(s, desc, identity)
	}
	if err != nil {
		return nil, err
	}
	return o.Sequence, nil
}

func orderBy[T any, K cmp.Ordered](s *seq.Sequence[T], desc bool, key func(T) K) (*seq.Ordered[T], error) {
	if desc {
		return seq.OrderByDescending(s, key)
	}
	return seq.OrderBy(s, key)
}

func thenBy[T any, K cmp.Ordered](o *seq.Ordered[T], desc bool, key func(T) K) (*seq.Ordered[T], error) {
	if desc {
		return seq.ThenByDescending(o, key)
	}
	return seq.ThenBy(o, key)
}

func groupKey(by string) func(string) string {
	switch by {
	case "first-field":
		return func(l string) string {
			if f := strings.Fields(l); len(f) > 0 {
				return f[0]
			}
			return ""
		}
	case "length":
		return func(l string) string { return strconv.Itoa(utf8.RuneCountInString(l)) }
	default:
		return identity
	}
}

func identity(l string) string { return l }

func not(re *regexp.Regexp) func(string) bool {
	return func(l string) bool { return !re.MatchString(l) }
}
