// Package gesture turns pointer input into layout mutations.
//
// A Router classifies each pointer-down as either a background pan or an item
// drag, then drives the layout from pointer movement until release. Exactly
// one gesture is active at a time:
//
//	Idle --down on background--------> PanningViewport
//	Idle --down on item, edit mode---> DraggingItem(uid)
//	Idle --down on item, view mode---> Idle (selection callback)
//	PanningViewport | DraggingItem --up/cancel--> Idle
//
// Move and release events reach the router only through a listener it
// attaches to an Attacher on gesture start and removes on every exit path
// (release, cancel, Close). Pointer movement while idle therefore has no
// effect.
//
// Item targets win over the background: a pointer-down that lands on an item
// never starts a pan. Pans apply the raw screen delta to the viewport; drags
// divide it by the current scale (see package geom).
package gesture

import (
	"fmt"
	"time"

	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/observability"
)

// Kind is the gesture state tag.
type Kind uint8

// Gesture states.
const (
	Idle Kind = iota
	PanningViewport
	DraggingItem
)

// String returns a short name for the state.
func (k Kind) String() string {
	switch k {
	case PanningViewport:
		return "panning"
	case DraggingItem:
		return "dragging"
	default:
		return "idle"
	}
}

// MarshalText encodes the state by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a state name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*k = Idle
	case "panning":
		*k = PanningViewport
	case "dragging":
		*k = DraggingItem
	default:
		return fmt.Errorf("unknown gesture state %q", b)
	}
	return nil
}

// hookKind is the gesture name reported to observability hooks.
func (k Kind) hookKind() string {
	if k == DraggingItem {
		return "drag"
	}
	return "pan"
}

// State is the exclusive gesture state. UID is set only for DraggingItem.
type State struct {
	Kind Kind   `json:"kind"`
	UID  string `json:"uid,omitempty"`
}

// Outcome reports what a pointer-down did.
type Outcome uint8

// Pointer-down outcomes.
const (
	Ignored Outcome = iota
	Panning
	Dragging
	Selected
)

// String returns a short name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	case Selected:
		return "selected"
	default:
		return "ignored"
	}
}

// Surface is the part of the layout store the router reads and writes.
type Surface interface {
	Viewport() layout.Viewport
	SetPan(p geom.Vec)
	Item(uid string) (layout.Item, bool)
	MoveItem(uid string, pos geom.Vec) bool
	HitTest(world geom.Vec) (string, bool)
}

var _ Surface = (*layout.Store)(nil)

// Option configures a Router.
type Option func(*Router)

// WithSelectHandler sets the callback for pointer-downs on items outside edit mode.
func WithSelectHandler(fn func(uid string)) Option {
	return func(r *Router) { r.onSelect = fn }
}

// WithClock overrides the time source used for gesture durations.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// Router is the gesture state machine. It is not safe for concurrent use.
type Router struct {
	surface   Surface
	listeners Attacher
	onSelect  func(uid string)
	now       func() time.Time

	state  State
	active *activeGesture
}

// activeGesture holds the reference point recorded at pointer-down.
type activeGesture struct {
	pointer Pointer
	// origin is the viewport pan (panning) or item position (dragging) at start.
	origin  geom.Vec
	started time.Time
	handle  Handle
}

// New creates a router over surface that attaches gesture listeners to listeners.
func New(surface Surface, listeners Attacher, opts ...Option) *Router {
	r := &Router{
		surface:   surface,
		listeners: listeners,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current gesture state.
func (r *Router) State() State { return r.state }

// Active reports whether a gesture is in progress.
func (r *Router) Active() bool { return r.state.Kind != Idle }

// ActivePointer returns the pointer that started the current gesture.
func (r *Router) ActivePointer() (Pointer, bool) {
	if r.active == nil {
		return Pointer{}, false
	}
	return r.active.pointer, true
}

// SetSelectHandler replaces the selection callback.
func (r *Router) SetSelectHandler(fn func(uid string)) { r.onSelect = fn }

// PointerDown starts a gesture, or selects an item outside edit mode. It is
// ignored while another gesture is active.
func (r *Router) PointerDown(ev Event, editMode bool) Outcome {
	if r.Active() || !ev.Pointer.Pos.IsFinite() {
		return Ignored
	}

	vp := r.surface.Viewport()
	if uid, ok := r.target(ev, vp); ok {
		if !editMode {
			if r.onSelect != nil {
				r.onSelect(uid)
			}
			observability.Gesture().OnSelect(uid)
			return Selected
		}
		it, _ := r.surface.Item(uid)
		r.begin(State{Kind: DraggingItem, UID: uid}, ev.Pointer, it.Position)
		return Dragging
	}

	r.begin(State{Kind: PanningViewport}, ev.Pointer, vp.Pan)
	return Panning
}

// Close ends any active gesture as a cancel and detaches its listener. The
// host calls it on teardown.
func (r *Router) Close() {
	if r.Active() {
		r.end(true)
	}
}

// target resolves the item under the pointer. A live host-resolved uid wins;
// otherwise the store is hit-tested in world space.
func (r *Router) target(ev Event, vp layout.Viewport) (string, bool) {
	if ev.Item != "" {
		if _, ok := r.surface.Item(ev.Item); ok {
			return ev.Item, true
		}
	}
	return r.surface.HitTest(geom.ScreenToWorld(ev.Pointer.Pos, vp.Pan, vp.Scale))
}

func (r *Router) begin(st State, p Pointer, origin geom.Vec) {
	g := &activeGesture{pointer: p, origin: origin, started: r.now()}
	r.state = st
	r.active = g
	g.handle = r.listeners.Add(&gestureListener{router: r, gesture: g})
	observability.Gesture().OnGestureStart(st.Kind.hookKind(), st.UID)
}

func (r *Router) move(pos geom.Vec) {
	if !pos.IsFinite() {
		return
	}
	delta := pos.Sub(r.active.pointer.Pos)
	switch r.state.Kind {
	case PanningViewport:
		r.surface.SetPan(r.active.origin.Add(delta))
	case DraggingItem:
		scale := r.surface.Viewport().Scale
		// A uid deleted mid-gesture makes this a no-op until release.
		r.surface.MoveItem(r.state.UID, r.active.origin.Add(geom.ScreenDeltaToWorldDelta(delta, scale)))
	}
}

// end returns to Idle, leaving the layout where the last move put it.
func (r *Router) end(canceled bool) {
	g := r.active
	kind := r.state.Kind
	g.handle.Remove()
	r.active = nil
	r.state = State{}
	observability.Gesture().OnGestureEnd(kind.hookKind(), canceled, r.now().Sub(g.started))
}

// gestureListener is bound to one gesture; events arriving after that gesture
// ended are dropped even if a stale handle was not yet removed.
type gestureListener struct {
	router  *Router
	gesture *activeGesture
}

func (l *gestureListener) current(p Pointer) bool {
	return l.router.active == l.gesture && l.gesture.pointer.same(p)
}

func (l *gestureListener) PointerMove(p Pointer) {
	if l.current(p) {
		l.router.move(p.Pos)
	}
}

func (l *gestureListener) PointerUp(p Pointer) {
	if l.current(p) {
		l.router.end(false)
	}
}

func (l *gestureListener) PointerCancel(p Pointer) {
	if l.current(p) {
		l.router.end(true)
	}
}
