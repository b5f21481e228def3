package speckit

import (
	"context"
	"sync"
)

// ConfigurationResolver produces a Configuration snapshot.
type ConfigurationResolver interface {
	Resolve(executionContext context.Context) (Configuration, error)
}

// CachedResolver resolves once and serves the same snapshot, or the same
// error, until Reset is called.
type CachedResolver struct {
	resolver      ConfigurationResolver
	mutex         sync.Mutex
	resolved      bool
	configuration Configuration
	resolveError  error
}

// NewCachedResolver wraps resolver with a process-lifetime cache.
func NewCachedResolver(resolver ConfigurationResolver) *CachedResolver {
	return &CachedResolver{resolver: resolver}
}

// Resolve returns the cached snapshot, resolving on first use.
func (cachedResolver *CachedResolver) Resolve(executionContext context.Context) (Configuration, error) {
	cachedResolver.mutex.Lock()
	defer cachedResolver.mutex.Unlock()

	if !cachedResolver.resolved {
		cachedResolver.configuration, cachedResolver.resolveError = cachedResolver.resolver.Resolve(executionContext)
		cachedResolver.resolved = true
	}
	return cachedResolver.configuration, cachedResolver.resolveError
}

// Reset discards the cached snapshot so the next Resolve recomputes it.
func (cachedResolver *CachedResolver) Reset() {
	cachedResolver.mutex.Lock()
	defer cachedResolver.mutex.Unlock()

	cachedResolver.resolved = false
	cachedResolver.configuration = Configuration{}
	cachedResolver.resolveError = nil
}
