// Package observability provides OpenTelemetry tracing and metrics for
// sequences and providers.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("seqq"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("seqq"))
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewMetrics(observability.Meter("seqq"))
//
// Instrumenting a pipeline:
//
//	lines, err := observability.Instrument(lines, "input",
//	    observability.WithMetrics(metrics),
//	    observability.WithLogger(logger.Get("seqq")),
//	)
//
// Each iteration of an instrumented sequence gets its own run ID, span and
// lifecycle log entries; see Instrument.
package observability
