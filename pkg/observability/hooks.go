// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about gestures, placements, snapshot persistence and HTTP
// requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The layout core stays free of metrics libraries; the server registers a
// Prometheus implementation from internal/metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := metrics.New()
//	m.Register() // installs gesture, placement, store and HTTP hooks
//
// Libraries call hooks to emit events:
//
//	observability.Gesture().OnGestureStart("drag", uid)
//	// ... pointer moves ...
//	observability.Gesture().OnGestureEnd("drag", false, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Gesture Hooks
// =============================================================================

// GestureHooks receives events from the gesture router. Gesture handling is
// synchronous and context-free, so these hooks take no context.
type GestureHooks interface {
	// OnGestureStart records entry into a pan ("pan") or item drag ("drag").
	OnGestureStart(kind, uid string)

	// OnGestureEnd records the return to idle. canceled is true for pointer
	// cancel and teardown, false for a normal release.
	OnGestureEnd(kind string, canceled bool, duration time.Duration)

	// OnSelect records a selection outside edit mode.
	OnSelect(uid string)
}

// =============================================================================
// Placement Hooks
// =============================================================================

// PlacementHooks receives events from the placement policy.
type PlacementHooks interface {
	// OnPlaced records a newly placed item of the given kind.
	OnPlaced(kind string)

	// OnRefused records a refused placement by error code.
	OnRefused(code string)

	// OnRemoved records an item removal.
	OnRemoved()
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot persistence backends.
type StoreHooks interface {
	// OnSnapshotLoad records a load. found is false on a miss.
	OnSnapshotLoad(ctx context.Context, backend string, found bool, duration time.Duration, err error)

	// OnSnapshotSave records a save of size encoded bytes.
	OnSnapshotSave(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP host.
type HTTPHooks interface {
	// OnResponse records a served request by route pattern.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGestureHooks is a no-op implementation of GestureHooks.
type NoopGestureHooks struct{}

func (NoopGestureHooks) OnGestureStart(string, string)            {}
func (NoopGestureHooks) OnGestureEnd(string, bool, time.Duration) {}
func (NoopGestureHooks) OnSelect(string)                          {}

// NoopPlacementHooks is a no-op implementation of PlacementHooks.
type NoopPlacementHooks struct{}

func (NoopPlacementHooks) OnPlaced(string)  {}
func (NoopPlacementHooks) OnRefused(string) {}
func (NoopPlacementHooks) OnRemoved()       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnSnapshotLoad(context.Context, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnSnapshotSave(context.Context, string, int, time.Duration, error)  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Registry
// =============================================================================

var (
	gestureHooks   GestureHooks   = NoopGestureHooks{}
	placementHooks PlacementHooks = NoopPlacementHooks{}
	storeHooks     StoreHooks     = NoopStoreHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetGestureHooks registers custom gesture hooks.
// This should be called once at application startup before any editor is created.
func SetGestureHooks(h GestureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gestureHooks = h
	}
}

// SetPlacementHooks registers custom placement hooks.
func SetPlacementHooks(h PlacementHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		placementHooks = h
	}
}

// SetStoreHooks registers custom snapshot store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Gesture returns the registered gesture hooks.
func Gesture() GestureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gestureHooks
}

// Placement returns the registered placement hooks.
func Placement() PlacementHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return placementHooks
}

// Store returns the registered snapshot store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
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
	gestureHooks = NoopGestureHooks{}
	placementHooks = NoopPlacementHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
