// Package geom converts between screen space and world space for the layout
// editor.
//
// Screen space is raw pointer coordinates as reported by the input device.
// World space is where item positions are stored, independent of zoom. The
// rendered content sits inside a wrapper translated by the viewport pan (in
// screen units) and then scaled, so:
//
//	screen = world*scale + pan
//
// The asymmetry that follows is deliberate: a pan gesture moves the wrapper and
// applies the raw screen delta, while an item drag moves content inside the
// scaled wrapper and must divide the screen delta by the scale for the item to
// track the pointer 1:1.
package geom

import "math"

// Scale bounds and zoom step.
const (
	MinScale     = 0.5
	MaxScale     = 2.5
	DefaultScale = 1.0
	ZoomStep     = 0.1
)

// Vec is a 2D vector or point.
type Vec struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec) IsFinite() bool { return isFinite(v.X) && isFinite(v.Y) }

// Size is a width/height pair in world units.
type Size struct {
	W float64 `json:"w" toml:"w"`
	H float64 `json:"h" toml:"h"`
}

// Center returns the midpoint of a w×h box anchored at the origin.
func (s Size) Center() Vec { return Vec{s.W / 2, s.H / 2} }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Min  Vec
	Size Size
}

// Max returns the bottom-right corner.
func (r Rect) Max() Vec { return Vec{r.Min.X + r.Size.W, r.Min.Y + r.Size.H} }

// Contains reports whether p lies inside r. The min edges are inclusive and the
// max edges exclusive, so adjacent rects never both claim a point.
func (r Rect) Contains(p Vec) bool {
	max := r.Max()
	return p.X >= r.Min.X && p.X < max.X && p.Y >= r.Min.Y && p.Y < max.Y
}

// ScreenDeltaToWorldDelta converts a pointer delta into an item position delta
// at the given scale.
func ScreenDeltaToWorldDelta(d Vec, scale float64) Vec {
	return Vec{d.X / scale, d.Y / scale}
}

// ScreenToWorld maps a screen point into world space.
func ScreenToWorld(p, pan Vec, scale float64) Vec {
	return ScreenDeltaToWorldDelta(p.Sub(pan), scale)
}

// WorldToScreen maps a world point into screen space.
func WorldToScreen(w, pan Vec, scale float64) Vec {
	return w.Scale(scale).Add(pan)
}

// ClampScale pins s to [MinScale, MaxScale]. NaN and infinities fall back to
// DefaultScale so the viewport never holds a non-finite scale.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// ZoomIn returns s increased by one ZoomStep, clamped.
func ZoomIn(s float64) float64 { return ClampScale(s + ZoomStep) }

// ZoomOut returns s decreased by one ZoomStep, clamped.
func ZoomOut(s float64) float64 { return ClampScale(s - ZoomStep) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
