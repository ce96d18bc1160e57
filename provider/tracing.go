package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/seq"
)

// WithTracing returns a Middleware that creates a "provider.execute" span
// around each Execute call, tagged with serviceName and the provider name.
// The span stays open until the result iterator is released, so it covers
// the time spent reading results.
func WithTracing(serviceName string) Middleware {
	return func(inner seq.Provider) seq.Provider {
		return &tracingProvider{inner: inner, serviceName: serviceName}
	}
}

type tracingProvider struct {
	inner       seq.Provider
	serviceName string
}

func (t *tracingProvider) Name() string { return t.inner.Name() }

func (t *tracingProvider) Execute(ctx context.Context, q seq.Query) (seq.Iterator[any], error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanExecute, trace.WithAttributes(
		attribute.String(observability.AttrService, t.serviceName),
		attribute.String(observability.AttrProvider, t.inner.Name()),
		attribute.String(observability.AttrQuerySource, q.Source),
		attribute.String(observability.AttrQuery, q.String()),
	))

	it, err := t.inner.Execute(ctx, q)
	if err != nil {
		observability.SetSpanError(span, err)
		span.End()
		return nil, err
	}
	if it == nil {
		span.End()
		return nil, nil
	}
	return &countingIterator{inner: it, done: func(pulled int, err error) {
		span.SetAttributes(attribute.Int(observability.AttrPulled, pulled))
		observability.SetSpanError(span, err)
		span.End()
	}}, nil
}
