package layout

import (
	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
)

// Snapshot is a read-only copy of the store, in the shape hosts render and
// persist.
type Snapshot struct {
	Items    []Item   `json:"items"`
	Viewport Viewport `json:"viewport"`
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Items: s.Items(), Viewport: s.viewport}
}

// Restore replaces the store contents with snap, typically one a host loaded
// from storage. Every item is validated, uids must be unique and each machine
// may be placed at most once; on any error
// the store is left untouched. Restored uids join the issued set and deleted
// uids from earlier in the session stay retired.
func (s *Store) Restore(snap Snapshot) error {
	items := make([]Item, 0, len(snap.Items))
	seen := make(map[string]struct{}, len(snap.Items))
	placed := make(map[string]string)

	for i, in := range snap.Items {
		if in.UID == "" {
			return errors.New(errors.ErrCodeInvalidItemSpec, "item %d has no uid", i)
		}
		if _, dup := seen[in.UID]; dup {
			return errors.New(errors.ErrCodeInvalidItemSpec, "duplicate uid %q", in.UID)
		}
		seen[in.UID] = struct{}{}

		it, err := in.Spec().normalize()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidItemSpec, err, "item %q", in.UID)
		}
		it.UID = in.UID
		if it.Kind == KindMachine {
			if other, dup := placed[it.ReferenceID]; dup {
				return errors.New(errors.ErrCodeInvalidItemSpec, "machine %q placed twice (%s, %s)", it.ReferenceID, other, it.UID)
			}
			placed[it.ReferenceID] = it.UID
		}
		items = append(items, it)
	}

	vp := Viewport{Pan: snap.Viewport.Pan, Scale: geom.ClampScale(snap.Viewport.Scale)}
	if snap.Viewport.Scale == 0 {
		vp.Scale = geom.DefaultScale
	}
	if !vp.Pan.IsFinite() {
		vp.Pan = geom.Vec{}
	}

	s.items = items
	s.viewport = vp
	for uid := range seen {
		s.issued[uid] = struct{}{}
	}
	return nil
}
