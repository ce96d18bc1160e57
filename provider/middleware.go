package provider

import (
	"context"

	"github.com/kbukum/seqkit/seq"
)

// Middleware transforms a provider by wrapping it. The returned provider
// typically delegates to the original while adding cross-cutting behavior
// (logging, metrics, tracing).
type Middleware func(seq.Provider) seq.Provider

// Chain composes multiple middlewares into one. Middlewares are applied
// in order: the first middleware is outermost (executes first on the
// way in, last on the way out).
//
// Chain(a, b, c)(provider) is equivalent to a(b(c(provider))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner seq.Provider) seq.Provider {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// countingIterator reports how many elements were pulled once it is closed.
type countingIterator struct {
	inner  seq.Iterator[any]
	pulled int
	done   func(pulled int, err error)
	closed bool
}

func (c *countingIterator) Next(ctx context.Context) (any, bool, error) {
	v, ok, err := c.inner.Next(ctx)
	if ok {
		c.pulled++
	}
	if err != nil {
		c.report(err)
	}
	return v, ok, err
}

func (c *countingIterator) Close() error {
	err := c.inner.Close()
	c.report(err)
	return err
}

func (c *countingIterator) report(err error) {
	if c.closed {
		return
	}
	c.closed = true
	c.done(c.pulled, err)
}
