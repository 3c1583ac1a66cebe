// Package layout holds the placed items and viewport of a shop-floor layout.
//
// A Store is the single source of truth for the editor: an ordered collection
// of items (insertion order is z-order, later items drawn on top) plus the
// viewport pan and scale. All mutations are synchronous and leave no partial
// state behind. The Store has no locking; it is owned by one logical user
// session, and hosts that serve it from several goroutines serialize access
// themselves.
//
// The Store does not enforce the one-item-per-machine rule. Duplicate
// placement is refused upstream by the placement policy.
package layout

import (
	"github.com/google/uuid"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
)

// maxIDAttempts bounds how often AddItem asks the generator for an unused uid.
const maxIDAttempts = 16

// Viewport is the pan/zoom state of the canvas.
type Viewport struct {
	// Pan is the translation of the scaled content, in screen units. Unbounded.
	Pan geom.Vec `json:"pan"`
	// Scale is always within [geom.MinScale, geom.MaxScale].
	Scale float64 `json:"scale"`
}

// DefaultViewport returns scale 1 with no pan.
func DefaultViewport() Viewport {
	return Viewport{Scale: geom.DefaultScale}
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides uid generation. The default is uuid.NewString.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Store owns layout items and the viewport.
type Store struct {
	items    []Item
	viewport Viewport
	// issued holds every uid handed out this session, live or deleted.
	issued map[string]struct{}
	newID  func() string
}

// New creates an empty store with the default viewport.
func New(opts ...Option) *Store {
	s := &Store{
		viewport: DefaultViewport(),
		issued:   make(map[string]struct{}),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem validates spec, assigns a fresh uid and appends the item on top.
// Malformed specs return an ErrCodeInvalidItemSpec error and leave the store
// unchanged.
func (s *Store) AddItem(spec ItemSpec) (string, error) {
	it, err := spec.normalize()
	if err != nil {
		return "", err
	}
	uid, err := s.nextID()
	if err != nil {
		return "", err
	}
	it.UID = uid
	s.issued[uid] = struct{}{}
	s.items = append(s.items, it)
	return uid, nil
}

func (s *Store) nextID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		if _, used := s.issued[id]; !used {
			return id, nil
		}
	}
	return "", errors.New(errors.ErrCodeInternal, "no unused item id after %d attempts", maxIDAttempts)
}

// MoveItem replaces the position of uid. Unknown uids and non-finite
// positions are ignored; the return value reports whether anything changed.
func (s *Store) MoveItem(uid string, pos geom.Vec) bool {
	i := s.index(uid)
	if i < 0 || !pos.IsFinite() {
		return false
	}
	s.items[i].Position = pos
	return true
}

// RemoveItem deletes uid if present. Its uid is never handed out again.
func (s *Store) RemoveItem(uid string) bool {
	i := s.index(uid)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// Relabel replaces the caption of uid.
func (s *Store) Relabel(uid, text string) bool {
	i := s.index(uid)
	if i < 0 {
		return false
	}
	s.items[i].DisplayText = text
	return true
}

// SetScale clamps and stores the zoom factor.
func (s *Store) SetScale(scale float64) {
	s.viewport.Scale = geom.ClampScale(scale)
}

// SetPan stores the viewport translation. Non-finite values are ignored.
func (s *Store) SetPan(p geom.Vec) {
	if p.IsFinite() {
		s.viewport.Pan = p
	}
}

// Viewport returns the current viewport.
func (s *Store) Viewport() Viewport { return s.viewport }

// Item returns a copy of the item with the given uid.
func (s *Store) Item(uid string) (Item, bool) {
	i := s.index(uid)
	if i < 0 {
		return Item{}, false
	}
	return s.items[i].clone(), true
}

// Items returns a copy of all items in z-order.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

// Len returns the number of live items.
func (s *Store) Len() int { return len(s.items) }

// HitTest returns the topmost item whose bounds contain the world point.
func (s *Store) HitTest(world geom.Vec) (string, bool) {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Bounds().Contains(world) {
			return s.items[i].UID, true
		}
	}
	return "", false
}

// ReferenceIDs returns the reference ids of all live items.
func (s *Store) ReferenceIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.items))
	for _, it := range s.items {
		if it.ReferenceID != "" {
			ids[it.ReferenceID] = struct{}{}
		}
	}
	return ids
}

func (s *Store) index(uid string) int {
	for i := range s.items {
		if s.items[i].UID == uid {
			return i
		}
	}
	return -1
}
