package provider

import (
	"context"
	"time"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
)

// WithLogging returns a Middleware that logs each Execute call and, when the
// result iterator is released, how many elements were read from it.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner seq.Provider) seq.Provider {
		return &loggingProvider{inner: inner, log: log}
	}
}

type loggingProvider struct {
	inner seq.Provider
	log   *logger.Logger
}

func (l *loggingProvider) Name() string { return l.inner.Name() }

func (l *loggingProvider) Execute(ctx context.Context, q seq.Query) (seq.Iterator[any], error) {
	start := time.Now()
	it, err := l.inner.Execute(ctx, q)
	duration := time.Since(start)

	fields := logger.Fields(
		logger.FieldProvider, l.inner.Name(),
		logger.FieldSource, q.Source,
		logger.FieldOperation, q.String(),
		logger.FieldDuration, duration.Milliseconds(),
	)
	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.Error("provider execute failed", fields)
		return nil, err
	}
	l.log.Debug("provider execute ok", fields)
	if it == nil {
		return nil, nil
	}
	return &countingIterator{inner: it, done: func(pulled int, err error) {
		f := logger.Fields(
			logger.FieldProvider, l.inner.Name(),
			logger.FieldSource, q.Source,
			logger.FieldPulled, pulled,
		)
		if err != nil {
			f[logger.FieldError] = err.Error()
			l.log.Warn("provider results failed", f)
			return
		}
		l.log.Debug("provider results released", f)
	}}, nil
}
