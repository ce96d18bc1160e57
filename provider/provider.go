package provider

import (
	"context"

	"github.com/kbukum/seqkit/seq"
)

// Factory creates a provider instance from configuration.
type Factory func(cfg map[string]any) (seq.Provider, error)

// Closeable is optionally implemented by providers that hold resources
// requiring explicit cleanup (connections, caches). Registry.Close calls it.
type Closeable interface {
	Close(ctx context.Context) error
}
