// Package observability lets the host instrument tree growth, caching and
// HTTP calls without the libraries depending on a metrics backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	observability.SetGrowHooks(&logHooks{logger})
//
// Libraries call the registered hooks directly:
//
//	observability.Grow().OnExpandStart(ctx, tag, parent)
//	// ... search and select ...
//	observability.Grow().OnExpandComplete(ctx, tag, node, deadEnds, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Grow Hooks
// =============================================================================

// GrowHooks receives events from the two phases of a growing run. Node IDs
// are plain ints; the root is 0 and a parent of -1 means the root is being
// created.
type GrowHooks interface {
	// Expansion events
	OnExpandStart(ctx context.Context, tag string, parent int)
	OnExpandComplete(ctx context.Context, tag string, node, deadEnds int, duration time.Duration, err error)

	// Simulation events
	OnSimulateStart(ctx context.Context, nodes int)
	OnSimulateComplete(ctx context.Context, ticks int, energy float64, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit in a key namespace.
	OnCacheHit(ctx context.Context, namespace string)

	// OnCacheMiss records a cache miss in a key namespace.
	OnCacheMiss(ctx context.Context, namespace string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGrowHooks is a no-op implementation of GrowHooks.
type NoopGrowHooks struct{}

func (NoopGrowHooks) OnExpandStart(context.Context, string, int) {}
func (NoopGrowHooks) OnExpandComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopGrowHooks) OnSimulateStart(context.Context, int)                                   {}
func (NoopGrowHooks) OnSimulateComplete(context.Context, int, float64, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	growHooks     GrowHooks     = NoopGrowHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetGrowHooks registers custom grow hooks.
// This should be called once at application startup before any run starts.
func SetGrowHooks(h GrowHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		growHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Grow returns the registered grow hooks.
func Grow() GrowHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return growHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	growHooks = NoopGrowHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
