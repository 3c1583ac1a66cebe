// Package pkg holds the libraries behind shopfloor, a floor-plan editor for
// workshop machines.
//
// # Overview
//
// A layout is a set of items (machines, labels, zones) positioned on an
// infinite canvas that can be panned and zoomed. Pointer input from a
// terminal or an HTTP client drives one gesture at a time: dragging the
// background pans, dragging an item in edit mode moves it.
//
// # Architecture
//
//	host input (terminal mouse, HTTP pointer events)
//	         ↓
//	    [editor] (one session; composes the pieces below)
//	         ↓
//	    [gesture] ─→ [layout] ←─ [placement] ←─ [catalog]
//	         ↓
//	    [snapshot] (file, Redis or MongoDB)
//
// # Main Packages
//
// [geom] - Screen/world conversion. Pan is applied in screen units, item
// drags are divided by the scale.
//
// [layout] - The item store: ordered items, viewport, hit testing and
// snapshots.
//
// [gesture] - The pointer state machine (idle, panning, dragging) and the
// scoped listener registry that delivers moves and releases.
//
// [placement] - Adds catalog machines at the visible center and refuses
// duplicates.
//
// [catalog] - The machine master list, built in or loaded from TOML and
// reloaded on change.
//
// [editor] - Host-facing facade used by the TUI and the HTTP server.
//
// [snapshot] - Persistence of layout snapshots with retry on transient
// backend errors.
//
// [config], [errors], [observability] and [buildinfo] provide settings,
// coded errors, metric hooks and version stamps.
//
// # Testing
//
//	go test ./...
//	go test -run Example ./pkg/...
//
// Redis and MongoDB stores are covered against a live server only when
// SHOPFLOOR_TEST_REDIS or SHOPFLOOR_TEST_MONGO is set.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/geom
// [layout]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/layout
// [gesture]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/gesture
// [placement]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/placement
// [catalog]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/catalog
// [editor]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/editor
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/snapshot
// [config]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/shopfloor/pkg/buildinfo
package pkg
