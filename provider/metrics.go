package provider

import (
	"context"
	"time"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/seq"
)

// WithMetrics returns a Middleware that records execution count, duration
// and errors using the observability.Metrics instruments.
func WithMetrics(metrics *observability.Metrics) Middleware {
	return func(inner seq.Provider) seq.Provider {
		return &metricsProvider{inner: inner, metrics: metrics}
	}
}

type metricsProvider struct {
	inner   seq.Provider
	metrics *observability.Metrics
}

func (m *metricsProvider) Name() string { return m.inner.Name() }

func (m *metricsProvider) Execute(ctx context.Context, q seq.Query) (seq.Iterator[any], error) {
	start := time.Now()
	it, err := m.inner.Execute(ctx, q)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrCodeProviderFailed
		}
		m.metrics.RecordError(ctx, string(code), m.inner.Name())
	}
	m.metrics.RecordExecution(ctx, m.inner.Name(), status, duration)

	return it, err
}
