package layout

import (
	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
)

// Kind classifies a placed item.
type Kind string

// Item kinds.
const (
	KindMachine Kind = "machine"
	KindLabel   Kind = "label"
	KindZone    Kind = "zone"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMachine, KindLabel, KindZone:
		return true
	}
	return false
}

// SizeClass selects an item's default footprint.
type SizeClass string

// Size classes.
const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// Default footprints in world units.
var footprints = map[SizeClass]geom.Size{
	SizeSmall:  {W: 56, H: 56},
	SizeMedium: {W: 80, H: 64},
	SizeLarge:  {W: 112, H: 96},
}

// Valid reports whether c is a known size class.
func (c SizeClass) Valid() bool {
	_, ok := footprints[c]
	return ok
}

// Footprint returns the default size for c. Unknown classes use medium.
func (c SizeClass) Footprint() geom.Size {
	if s, ok := footprints[c]; ok {
		return s
	}
	return footprints[SizeMedium]
}

// Item is a single entry on the layout canvas.
type Item struct {
	// UID is assigned by the Store and never changes.
	UID  string `json:"uid"`
	Kind Kind   `json:"kind"`
	// ReferenceID links a machine item to its backing entity. Empty for labels and zones.
	ReferenceID string `json:"reference_id,omitempty"`
	DisplayText string `json:"display_text,omitempty"`
	// Position is the world-space top-left anchor.
	Position     geom.Vec   `json:"position"`
	SizeOverride *geom.Size `json:"size_override,omitempty"`
	SizeClass    SizeClass  `json:"size_class"`
}

// Footprint returns the effective item size. Each dimension of SizeOverride
// that is zero falls back to the size-class default.
func (it Item) Footprint() geom.Size {
	s := it.SizeClass.Footprint()
	if it.SizeOverride != nil {
		if it.SizeOverride.W > 0 {
			s.W = it.SizeOverride.W
		}
		if it.SizeOverride.H > 0 {
			s.H = it.SizeOverride.H
		}
	}
	return s
}

// Bounds returns the item's world-space rectangle.
func (it Item) Bounds() geom.Rect {
	return geom.Rect{Min: it.Position, Size: it.Footprint()}
}

func (it Item) clone() Item {
	if it.SizeOverride != nil {
		s := *it.SizeOverride
		it.SizeOverride = &s
	}
	return it
}

// ItemSpec describes an item to create. The store assigns the uid.
type ItemSpec struct {
	Kind         Kind       `json:"kind" toml:"kind"`
	ReferenceID  string     `json:"reference_id,omitempty" toml:"reference_id"`
	DisplayText  string     `json:"display_text,omitempty" toml:"display_text"`
	Position     geom.Vec   `json:"position" toml:"position"`
	SizeOverride *geom.Size `json:"size_override,omitempty" toml:"size_override"`
	SizeClass    SizeClass  `json:"size_class,omitempty" toml:"size_class"`
}

// normalize validates spec and fills defaults. The returned item has no uid.
func (spec ItemSpec) normalize() (Item, error) {
	if !spec.Kind.Valid() {
		return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "unknown item kind %q", spec.Kind)
	}
	if spec.SizeClass == "" {
		spec.SizeClass = SizeMedium
	}
	if !spec.SizeClass.Valid() {
		return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "unknown size class %q", spec.SizeClass)
	}
	if !spec.Position.IsFinite() {
		return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "position is not finite: (%v, %v)", spec.Position.X, spec.Position.Y)
	}
	if o := spec.SizeOverride; o != nil {
		if !geom.V(o.W, o.H).IsFinite() || o.W < 0 || o.H < 0 {
			return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "invalid size override %vx%v", o.W, o.H)
		}
	}
	switch {
	case spec.Kind == KindMachine && spec.ReferenceID == "":
		return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "machine item requires a reference id")
	case spec.Kind != KindMachine && spec.ReferenceID != "":
		return Item{}, errors.New(errors.ErrCodeInvalidItemSpec, "%s item cannot reference %q", spec.Kind, spec.ReferenceID)
	}

	it := Item{
		Kind:        spec.Kind,
		ReferenceID: spec.ReferenceID,
		DisplayText: spec.DisplayText,
		Position:    spec.Position,
		SizeClass:   spec.SizeClass,
	}
	if spec.SizeOverride != nil {
		s := *spec.SizeOverride
		it.SizeOverride = &s
	}
	return it, nil
}

// Spec returns the ItemSpec that would recreate it under a fresh uid.
func (it Item) Spec() ItemSpec {
	c := it.clone()
	return ItemSpec{
		Kind:         c.Kind,
		ReferenceID:  c.ReferenceID,
		DisplayText:  c.DisplayText,
		Position:     c.Position,
		SizeOverride: c.SizeOverride,
		SizeClass:    c.SizeClass,
	}
}
