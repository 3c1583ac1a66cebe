package gesture

import "github.com/matzehuels/shopfloor/pkg/geom"

// Source identifies the input device behind a pointer.
type Source uint8

// Pointer sources.
const (
	SourceMouse Source = iota
	SourceTouch
)

// String returns "mouse" or "touch".
func (s Source) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// Pointer is the unified mouse/touch input the router consumes. Positions are
// in screen space.
type Pointer struct {
	ID     int
	Source Source
	Pos    geom.Vec
}

// same reports whether p and o come from the same physical pointer.
func (p Pointer) same(o Pointer) bool {
	return p.ID == o.ID && p.Source == o.Source
}

// Mouse returns the pointer for a mouse event at screen (x, y).
func Mouse(x, y float64) Pointer {
	return Pointer{ID: 0, Source: SourceMouse, Pos: geom.V(x, y)}
}

// Touch is one contact point of a touch event.
type Touch struct {
	ID   int
	X, Y float64
}

// Touches returns the pointer for the first contact in ts. Additional
// simultaneous contacts are ignored; gestures are single-pointer only.
func Touches(ts []Touch) (Pointer, bool) {
	if len(ts) == 0 {
		return Pointer{}, false
	}
	t := ts[0]
	return Pointer{ID: t.ID, Source: SourceTouch, Pos: geom.V(t.X, t.Y)}, true
}

// Event is a pointer-down delivered by the host.
type Event struct {
	Pointer Pointer
	// Item optionally names the item the host already resolved as the target.
	// When empty, or no longer live, the router hit-tests the store.
	Item string
}
