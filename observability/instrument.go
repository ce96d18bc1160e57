package observability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
	"github.com/kbukum/seqkit/validation"
)

// Option configures Instrument.
type Option func(*instrumentOptions)

type instrumentOptions struct {
	log     *logger.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// WithLogger sets the logger for lifecycle events. Defaults to the "seq"
// component logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *instrumentOptions) { o.log = l }
}

// WithMetrics records iteration metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(o *instrumentOptions) { o.metrics = m }
}

// WithTracer sets the tracer used for iteration spans. Defaults to the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *instrumentOptions) { o.tracer = t }
}

// Instrument observes every iteration of src. Each iteration gets a run ID,
// a span from its first pull until release, debug logs for its state
// transitions and, with WithMetrics, pulled-element and outcome metrics.
// Elements and lifecycle are otherwise untouched: the result is lazy and
// restartable exactly when src is.
func Instrument[T any](src *seq.Sequence[T], name string, opts ...Option) (*seq.Sequence[T], error) {
	if err := validation.For("observability.Instrument").
		Require("source", src != nil).
		Custom(name != "", "name", "must not be empty").
		Err(); err != nil {
		return nil, err
	}
	o := &instrumentOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get("seq")
	}
	if o.tracer == nil {
		o.tracer = Tracer(defaultTracerName)
	}
	return seq.Wrap(src, func(inner seq.Iterator[T]) seq.Iterator[T] {
		return &instrumented[T]{inner: inner, name: name, opts: o}
	})
}

type instrumented[T any] struct {
	inner seq.Iterator[T]
	name  string
	opts  *instrumentOptions

	state   seq.State
	ctx     context.Context
	span    trace.Span
	log     *logger.Logger
	started time.Time
	pulled  int64
}

func (i *instrumented[T]) Next(ctx context.Context) (T, bool, error) {
	if i.state == seq.NotStarted {
		i.start(ctx)
	}
	v, ok, err := i.inner.Next(ctx)
	switch {
	case err != nil:
		i.finish(seq.Abandoned, err)
	case !ok:
		i.finish(seq.Exhausted, nil)
	default:
		i.pulled++
	}
	return v, ok, err
}

func (i *instrumented[T]) Close() error {
	err := i.inner.Close()
	switch i.state {
	case seq.NotStarted:
		i.state = seq.Abandoned
	case seq.Running:
		i.finish(seq.Abandoned, err)
	}
	return err
}

// State mirrors the lifecycle of the wrapped iterator so seq.IteratorState
// keeps working through the decorator.
func (i *instrumented[T]) State() seq.State { return i.state }

func (i *instrumented[T]) start(ctx context.Context) {
	runID := uuid.NewString()
	i.state = seq.Running
	i.started = time.Now()
	i.ctx, i.span = i.opts.tracer.Start(ctx, SpanIteration, trace.WithAttributes(
		attribute.String(AttrSequence, i.name),
		attribute.String(AttrRunID, runID),
	))
	i.log = i.opts.log.WithFields(logger.Fields(
		logger.FieldOperator, i.name,
		logger.FieldRunID, runID,
	))
	i.log.Debug("iteration started", logger.Fields(logger.FieldState, seq.Running.String()))
	if i.opts.metrics != nil {
		i.opts.metrics.RecordIterationStart(i.ctx, i.name)
	}
}

func (i *instrumented[T]) finish(state seq.State, err error) {
	if i.state != seq.Running {
		return
	}
	i.state = state
	duration := time.Since(i.started)
	outcome := state.String()
	if err != nil {
		outcome = "error"
	}

	i.span.SetAttributes(
		attribute.Int64(AttrPulled, i.pulled),
		attribute.String(AttrOutcome, outcome),
	)
	fields := logger.Fields(
		logger.FieldState, state.String(),
		logger.FieldPulled, i.pulled,
		logger.FieldDuration, duration.Milliseconds(),
	)
	if err != nil {
		SetSpanError(i.span, err)
		i.log.WithError(err).Warn("iteration failed", fields)
		if i.opts.metrics != nil {
			code := string(errors.CodeOf(err))
			if code == "" {
				code = "UNKNOWN"
			}
			i.opts.metrics.RecordError(i.ctx, code, i.name)
		}
	} else {
		i.log.Debug("iteration released", fields)
	}
	i.span.End()

	if i.opts.metrics != nil {
		i.opts.metrics.RecordIterationEnd(i.ctx, i.name, outcome, i.pulled, duration)
	}
}
