// Package provider holds the tooling around seq.Provider: a registry of named
// provider factories, middleware for logging, metrics and tracing, and
// Memory, an in-memory reference provider.
//
// # Middleware
//
// Middleware wraps a provider. Use Chain to compose several:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging(log),
//	    provider.WithMetrics(metrics),
//	    provider.WithTracing("seqq"),
//	    provider.WithRetry(provider.DefaultRetryConfig()),
//	)(rawProvider)
//
// WithRetry only retries Execute. Once rows are flowing an error reaches the
// consumer as is.
//
// # Registry
//
//	reg := provider.NewRegistry()
//	reg.RegisterFactory("memory", provider.MemoryFactory)
//	p, err := reg.Open("memory", cfg)
//	defer reg.Close(ctx)
//
// # Memory
//
// Memory interprets a seq.Query by replaying its operations with the
// in-process operators, so recorded functions run only while results are
// pulled. It is the reference for what a translating provider must honor:
// operation order, stable ordering, first-appearance grouping.
package provider
