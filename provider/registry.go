package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/seq"
)

// Registry manages named provider factories and the instances opened from
// them. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances map[string]seq.Provider
	log       *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]seq.Provider),
		log:       logger.Get("provider"),
	}
}

// RegisterFactory registers a named factory for creating providers.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	r.log.Debug("factory registered", logger.Fields(logger.FieldProvider, name))
}

// Create instantiates a provider using the named factory and config. The
// instance is not cached; see Open.
func (r *Registry) Create(name string, cfg map[string]any) (seq.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.InvalidConfig(fmt.Sprintf("provider factory %q not registered", name))
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create provider %q: %w", name, err)
	}
	return p, nil
}

// Open returns the cached instance for name, creating it from its factory
// on first use.
func (r *Registry) Open(name string, cfg map[string]any) (seq.Provider, error) {
	if p, ok := r.Get(name); ok {
		return p, nil
	}
	p, err := r.Create(name, cfg)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instances[name]; ok {
		return existing, nil
	}
	r.instances[name] = p
	r.log.Info("provider opened", logger.Fields(logger.FieldProvider, name))
	return p, nil
}

// Get returns a cached provider instance by name.
func (r *Registry) Get(name string) (seq.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches a provider instance by name.
func (r *Registry) Set(name string, instance seq.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[name] = instance
}

// List returns sorted names of all registered factories.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every cached instance that implements Closeable and forgets
// all instances. Factories stay registered.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[string]seq.Provider)
	r.mu.Unlock()

	var errs []error
	for name, inst := range instances {
		c, ok := inst.(Closeable)
		if !ok {
			continue
		}
		if err := c.Close(ctx); err != nil {
			r.log.Error("provider close failed", logger.ErrorFields(name, err))
			errs = append(errs, fmt.Errorf("close provider %q: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}
