// Package editor is the host-facing entry point of the shop-floor layout
// editor.
//
// An Editor composes the layout store, the gesture router with its
// document-level listener registry, and the placement policy into the single
// object a host (TUI, HTTP server, tests) drives. Hosts feed pointer input in,
// call the zoom and placement actions from their controls, and re-render from
// Snapshot after each call.
//
// The Editor is synchronous and not safe for concurrent use. The HTTP host
// serializes requests with a mutex; the TUI host runs on the bubbletea event
// loop.
//
// # Example
//
//	ed := editor.New(editor.WithLogger(logger))
//	defer ed.Close()
//
//	ed.Seed(catalog.DefaultLayout())
//	ed.OnPointerDown(gesture.Event{Pointer: gesture.Mouse(120, 80)}, true)
//	ed.OnPointerMove(gesture.Mouse(140, 95))
//	ed.OnPointerUp(gesture.Mouse(140, 95))
//	snap := ed.Snapshot()
package editor

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/gesture"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/placement"
)

// Option configures an Editor.
type Option func(*config)

type config struct {
	logger       *log.Logger
	viewportSize geom.Size
	idGen        func() string
	onSelect     func(uid string)
	editMode     bool
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithViewportSize sets the canvas size used to center new items.
func WithViewportSize(s geom.Size) Option {
	return func(c *config) { c.viewportSize = s }
}

// WithIDGenerator overrides item uid generation.
func WithIDGenerator(gen func() string) Option {
	return func(c *config) { c.idGen = gen }
}

// WithSelectHandler registers the selection callback; see OnItemSelected.
func WithSelectHandler(fn func(uid string)) Option {
	return func(c *config) { c.onSelect = fn }
}

// WithEditMode sets the initial edit-mode flag.
func WithEditMode(on bool) Option {
	return func(c *config) { c.editMode = on }
}

// Editor is one editing session over a single layout.
type Editor struct {
	logger    *log.Logger
	store     *layout.Store
	listeners *gesture.Registry
	router    *gesture.Router
	policy    *placement.Policy
	editMode  bool
}

// New creates an editor with an empty layout and the default viewport.
func New(opts ...Option) *Editor {
	cfg := config{viewportSize: placement.DefaultViewportSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}

	var storeOpts []layout.Option
	if cfg.idGen != nil {
		storeOpts = append(storeOpts, layout.WithIDGenerator(cfg.idGen))
	}
	store := layout.New(storeOpts...)
	listeners := gesture.NewRegistry()

	e := &Editor{
		logger:    cfg.logger,
		store:     store,
		listeners: listeners,
		policy:    placement.New(store, placement.WithViewportSize(cfg.viewportSize)),
		editMode:  cfg.editMode,
	}
	e.router = gesture.New(store, listeners)
	e.OnItemSelected(cfg.onSelect)
	return e
}

// Snapshot returns a copy of the items and viewport.
func (e *Editor) Snapshot() layout.Snapshot { return e.store.Snapshot() }

// Restore replaces the layout with snap. Any active gesture is canceled
// first, since its target may not survive the restore.
func (e *Editor) Restore(snap layout.Snapshot) error {
	e.router.Close()
	if err := e.store.Restore(snap); err != nil {
		return err
	}
	e.logger.Debug("layout restored", "items", len(snap.Items))
	return nil
}

// Seed places specs in order, typically the default floor plan of a fresh
// session. Refused specs are logged and skipped; the number placed is returned.
func (e *Editor) Seed(specs []layout.ItemSpec) int {
	n := 0
	for _, spec := range specs {
		if _, err := e.policy.PlaceSeed(spec); err != nil {
			e.logger.Warn("skipping seed item", "kind", spec.Kind, "ref", spec.ReferenceID, "err", err)
			continue
		}
		n++
	}
	return n
}

// OnPointerDown starts a pan or item drag, or reports a selection outside
// edit mode.
func (e *Editor) OnPointerDown(ev gesture.Event, editMode bool) gesture.Outcome {
	out := e.router.PointerDown(ev, editMode)
	if out != gesture.Ignored {
		e.logger.Debug("pointer down", "outcome", out, "source", ev.Pointer.Source, "x", ev.Pointer.Pos.X, "y", ev.Pointer.Pos.Y)
	}
	return out
}

// OnPointerMove delivers a document-level move. It has no effect while idle.
func (e *Editor) OnPointerMove(p gesture.Pointer) { e.listeners.DispatchMove(p) }

// OnPointerUp delivers a document-level release.
func (e *Editor) OnPointerUp(p gesture.Pointer) { e.listeners.DispatchUp(p) }

// OnPointerCancel delivers a pointer cancel. The layout keeps the last
// applied position.
func (e *Editor) OnPointerCancel(p gesture.Pointer) { e.listeners.DispatchCancel(p) }

// OnItemSelected sets the callback invoked when a pointer-down lands on an
// item outside edit mode. A nil fn disables selection reporting.
func (e *Editor) OnItemSelected(fn func(uid string)) {
	e.router.SetSelectHandler(func(uid string) {
		e.logger.Debug("item selected", "uid", uid)
		if fn != nil {
			fn(uid)
		}
	})
}

// GestureState returns the current gesture state.
func (e *Editor) GestureState() gesture.State { return e.router.State() }

// ActivePointer returns the pointer driving the current gesture. Hosts whose
// release events carry no contact use it to end the gesture.
func (e *Editor) ActivePointer() (gesture.Pointer, bool) { return e.router.ActivePointer() }

// ZoomIn raises the scale by one step. Zoom actions are ignored during a
// gesture; the return value reports whether the action ran.
func (e *Editor) ZoomIn() bool {
	return e.zoom(geom.ZoomIn(e.store.Viewport().Scale))
}

// ZoomOut lowers the scale by one step.
func (e *Editor) ZoomOut() bool {
	return e.zoom(geom.ZoomOut(e.store.Viewport().Scale))
}

// ResetView restores scale 1 and pan (0, 0).
func (e *Editor) ResetView() bool {
	if e.router.Active() {
		return false
	}
	e.store.SetScale(geom.DefaultScale)
	e.store.SetPan(geom.Vec{})
	return true
}

func (e *Editor) zoom(scale float64) bool {
	if e.router.Active() {
		return false
	}
	e.store.SetScale(scale)
	return true
}

// AddBackingEntity places a machine item for ent at the visible center.
func (e *Editor) AddBackingEntity(ent placement.Entity) (string, error) {
	uid, err := e.policy.PlaceBackingEntity(ent)
	if err != nil {
		e.logger.Debug("placement refused", "ref", ent.ID, "code", errors.GetCode(err))
		return "", err
	}
	e.logger.Info("placed machine", "ref", ent.ID, "uid", uid)
	return uid, nil
}

// RemoveItem deletes uid. Removal is an edit-mode affordance: outside edit
// mode, and for unknown uids, it does nothing and returns false.
func (e *Editor) RemoveItem(uid string) bool {
	if !e.editMode {
		return false
	}
	if !e.policy.RemoveItem(uid) {
		return false
	}
	e.logger.Info("removed item", "uid", uid)
	return true
}

// Relabel changes the caption of uid in edit mode.
func (e *Editor) Relabel(uid, text string) bool {
	return e.editMode && e.store.Relabel(uid, text)
}

// PlacedReferenceIDs returns the ids of every entity currently on the layout.
func (e *Editor) PlacedReferenceIDs() map[string]struct{} { return e.policy.PlacedReferenceIDs() }

// IsPlaced reports whether the entity id is on the layout.
func (e *Editor) IsPlaced(id string) bool { return e.policy.IsPlaced(id) }

// HitTest returns the topmost item under a screen point.
func (e *Editor) HitTest(screen geom.Vec) (string, bool) {
	vp := e.store.Viewport()
	return e.store.HitTest(geom.ScreenToWorld(screen, vp.Pan, vp.Scale))
}

// Item returns a copy of the item with the given uid.
func (e *Editor) Item(uid string) (layout.Item, bool) { return e.store.Item(uid) }

// SetEditMode sets the host's edit-mode flag.
func (e *Editor) SetEditMode(on bool) {
	if on != e.editMode {
		e.logger.Debug("edit mode", "enabled", on)
	}
	e.editMode = on
}

// EditMode reports the host's edit-mode flag.
func (e *Editor) EditMode() bool { return e.editMode }

// SetViewportSize updates the canvas size used to center new items.
func (e *Editor) SetViewportSize(s geom.Size) { e.policy.SetViewportSize(s) }

// Close ends any active gesture and detaches its listeners.
func (e *Editor) Close() { e.router.Close() }
