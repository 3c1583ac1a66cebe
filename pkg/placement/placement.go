// Package placement decides where new layout items go and refuses
// placements that would reference a machine twice.
//
// New machine items land at the visible center of the canvas, in world
// units: the center of the viewport minus the current pan. The scale is not
// applied, matching the way the floor plan has always placed new stations.
package placement

import (
	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/observability"
)

// DefaultViewportSize is the canvas size assumed when the host does not
// report one.
var DefaultViewportSize = geom.Size{W: 850, H: 550}

// Entity is the external thing a machine item stands for.
type Entity struct {
	ID           string `json:"id"`
	DisplayLabel string `json:"display_label"`
}

// Store is the part of the layout store the policy needs.
type Store interface {
	AddItem(spec layout.ItemSpec) (string, error)
	RemoveItem(uid string) bool
	ReferenceIDs() map[string]struct{}
	Viewport() layout.Viewport
}

var _ Store = (*layout.Store)(nil)

// Option configures a Policy.
type Option func(*Policy)

// WithViewportSize sets the canvas size used to find the visible center.
// Non-positive sizes are ignored.
func WithViewportSize(s geom.Size) Option {
	return func(p *Policy) {
		if s.W > 0 && s.H > 0 {
			p.viewport = s
		}
	}
}

// Policy places items into a store.
type Policy struct {
	store    Store
	viewport geom.Size
}

// New creates a placement policy over store.
func New(store Store, opts ...Option) *Policy {
	p := &Policy{store: store, viewport: DefaultViewportSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetViewportSize updates the canvas size, for hosts whose window resizes.
func (p *Policy) SetViewportSize(s geom.Size) {
	WithViewportSize(s)(p)
}

// ViewportSize returns the canvas size in use.
func (p *Policy) ViewportSize() geom.Size { return p.viewport }

// PlaceBackingEntity adds a medium machine item for e at the visible center.
// It returns a DUPLICATE_PLACEMENT error if e is already on the layout.
func (p *Policy) PlaceBackingEntity(e Entity) (string, error) {
	if e.ID == "" {
		return "", p.refuse(errors.New(errors.ErrCodeInvalidItemSpec, "entity has no id"))
	}
	return p.place(layout.ItemSpec{
		Kind:        layout.KindMachine,
		ReferenceID: e.ID,
		DisplayText: e.DisplayLabel,
		Position:    p.Center(),
		SizeClass:   layout.SizeMedium,
	})
}

// PlaceSeed adds spec as given. Machine references are deduplicated the same
// way as interactive placement.
func (p *Policy) PlaceSeed(spec layout.ItemSpec) (string, error) {
	return p.place(spec)
}

// Center returns the world point new items are placed at.
func (p *Policy) Center() geom.Vec {
	return p.viewport.Center().Sub(p.store.Viewport().Pan)
}

// RemoveItem deletes uid. The backing entity is untouched and may be placed
// again afterwards.
func (p *Policy) RemoveItem(uid string) bool {
	if !p.store.RemoveItem(uid) {
		return false
	}
	observability.Placement().OnRemoved()
	return true
}

// PlacedReferenceIDs returns the ids of every entity currently on the layout.
func (p *Policy) PlacedReferenceIDs() map[string]struct{} {
	return p.store.ReferenceIDs()
}

// IsPlaced reports whether id is referenced by a live item.
func (p *Policy) IsPlaced(id string) bool {
	_, ok := p.store.ReferenceIDs()[id]
	return ok
}

func (p *Policy) place(spec layout.ItemSpec) (string, error) {
	if spec.ReferenceID != "" && p.IsPlaced(spec.ReferenceID) {
		return "", p.refuse(errors.New(errors.ErrCodeDuplicatePlacement, "%s is already on the layout", spec.ReferenceID))
	}
	uid, err := p.store.AddItem(spec)
	if err != nil {
		return "", p.refuse(err)
	}
	observability.Placement().OnPlaced(string(spec.Kind))
	return uid, nil
}

func (p *Policy) refuse(err error) error {
	observability.Placement().OnRefused(string(errors.GetCode(err)))
	return err
}
