package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/seq"
)

// Memory is a reference provider that keeps named sources as slices and
// interprets a Query by replaying its operations as in-process operators.
// Recorded functions therefore run only while results are being pulled.
type Memory struct {
	name string

	mu      sync.RWMutex
	sources map[string][]any
}

// NewMemory creates an empty in-memory provider.
func NewMemory(name string) *Memory {
	return &Memory{name: name, sources: make(map[string][]any)}
}

// MemoryFactory builds a Memory provider from configuration:
//
//	name:    provider name (default "memory")
//	sources: map of source name to []any rows
func MemoryFactory(cfg map[string]any) (seq.Provider, error) {
	name, _ := cfg["name"].(string)
	if name == "" {
		name = "memory"
	}
	m := NewMemory(name)
	if raw, ok := cfg["sources"]; ok {
		sources, ok := raw.(map[string][]any)
		if !ok {
			return nil, errors.InvalidConfig(fmt.Sprintf("memory provider: sources must be map[string][]any, got %T", raw))
		}
		for src, rows := range sources {
			m.Put(src, rows)
		}
	}
	return m, nil
}

// Name returns the provider name.
func (m *Memory) Name() string { return m.name }

// Put replaces the rows stored under source.
func (m *Memory) Put(source string, rows []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source] = slices.Clone(rows)
}

// Append adds rows to source.
func (m *Memory) Append(source string, rows ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[source] = append(m.sources[source], rows...)
}

// Sources returns the names of the stored sources, sorted.
func (m *Memory) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute runs q against a snapshot of its source. An unknown source fails
// with PROVIDER_FAILED and an operation it cannot interpret with
// UNSUPPORTED_OPERATION.
func (m *Memory) Execute(_ context.Context, q seq.Query) (seq.Iterator[any], error) {
	m.mu.RLock()
	rows, ok := m.sources[q.Source]
	rows = slices.Clone(rows)
	m.mu.RUnlock()
	if !ok {
		return nil, errors.ProviderFailed(m.name, fmt.Errorf("unknown source %q, have %v", q.Source, m.Sources()))
	}

	s, err := m.plan(seq.FromSlice(rows), q.Ops)
	if err != nil {
		return nil, err
	}
	return s.Iter(), nil
}

func (m *Memory) plan(s *seq.Sequence[any], ops []seq.Operation) (*seq.Sequence[any], error) {
	var ordered *seq.Ordered[any]
	var err error
	for _, op := range ops {
		if op.Kind != seq.OpThenBy {
			ordered = nil
		}
		switch op.Kind {
		case seq.OpFilter:
			s, err = seq.Filter(s, op.Predicate)
		case seq.OpMap:
			s, err = seq.Map(s, op.Selector)
		case seq.OpSkip:
			s, err = seq.Skip(s, op.Count)
		case seq.OpTake:
			s, err = seq.Take(s, op.Count)
		case seq.OpDistinct:
			s, err = seq.DistinctBy(s, op.Key)
		case seq.OpOrderBy:
			ordered, err = seq.OrderByFunc(s, directed(op))
		case seq.OpThenBy:
			if ordered == nil {
				return nil, errors.Unsupported(m.name, "then_by without order_by")
			}
			ordered, err = seq.ThenByFunc(ordered, directed(op))
		case seq.OpGroupBy:
			s, err = m.group(s, op)
		default:
			return nil, errors.Unsupported(m.name, string(op.Kind))
		}
		if err != nil {
			return nil, errors.Unsupported(m.name, op.String()).WithCause(err)
		}
		if ordered != nil {
			s = ordered.Sequence
		}
	}
	return s, nil
}

func (m *Memory) group(s *seq.Sequence[any], op seq.Operation) (*seq.Sequence[any], error) {
	if op.Group == nil {
		return nil, errors.Unsupported(m.name, "group_by without group builder")
	}
	groups, err := seq.GroupBy(s, op.Key)
	if err != nil {
		return nil, err
	}
	return seq.Map(groups, func(_ context.Context, g *seq.Grouping[any, any]) (any, error) {
		return op.Group(g.Key(), g.Slice()), nil
	})
}

func directed(op seq.Operation) func(a, b any) int {
	if op.Compare == nil {
		return nil
	}
	if op.Descending {
		return func(a, b any) int { return op.Compare(b, a) }
	}
	return op.Compare
}
