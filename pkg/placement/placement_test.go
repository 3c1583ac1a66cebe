package placement

import (
	"testing"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
	"github.com/matzehuels/shopfloor/pkg/layout"
	"github.com/matzehuels/shopfloor/pkg/observability"
)

func TestPlaceBackingEntity(t *testing.T) {
	store := layout.New()
	p := New(store)

	uid, err := p.PlaceBackingEntity(Entity{ID: "M1", DisplayLabel: "TORNO"})
	if err != nil {
		t.Fatalf("PlaceBackingEntity: %v", err)
	}

	it, ok := store.Item(uid)
	if !ok {
		t.Fatal("placed item not in store")
	}
	if it.Kind != layout.KindMachine || it.ReferenceID != "M1" || it.DisplayText != "TORNO" {
		t.Errorf("item = %+v", it)
	}
	if it.SizeClass != layout.SizeMedium {
		t.Errorf("SizeClass = %q, want medium", it.SizeClass)
	}
	if it.Position != geom.V(425, 275) {
		t.Errorf("Position = %v, want (425, 275)", it.Position)
	}
}

func TestPlacementIgnoresScale(t *testing.T) {
	tests := []struct {
		name  string
		pan   geom.Vec
		scale float64
		size  geom.Size
		want  geom.Vec
	}{
		{"default", geom.V(0, 0), 1, geom.Size{}, geom.V(425, 275)},
		{"panned", geom.V(100, -50), 1, geom.Size{}, geom.V(325, 325)},
		{"zoomed", geom.V(100, -50), 2, geom.Size{}, geom.V(325, 325)},
		{"custom viewport", geom.V(0, 0), 0.5, geom.Size{W: 1200, H: 800}, geom.V(600, 400)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := layout.New()
			store.SetPan(tt.pan)
			store.SetScale(tt.scale)
			p := New(store, WithViewportSize(tt.size))

			uid, err := p.PlaceBackingEntity(Entity{ID: "M1"})
			if err != nil {
				t.Fatal(err)
			}
			if it, _ := store.Item(uid); it.Position != tt.want {
				t.Errorf("Position = %v, want %v", it.Position, tt.want)
			}
		})
	}
}

func TestDuplicatePlacementRefused(t *testing.T) {
	store := layout.New()
	p := New(store)

	if _, err := p.PlaceBackingEntity(Entity{ID: "M1"}); err != nil {
		t.Fatal(err)
	}
	uid, err := p.PlaceBackingEntity(Entity{ID: "M1"})
	if !errors.Is(err, errors.ErrCodeDuplicatePlacement) {
		t.Fatalf("second placement error = %v, want DUPLICATE_PLACEMENT", err)
	}
	if uid != "" {
		t.Errorf("uid = %q, want empty", uid)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1", store.Len())
	}

	// Seeds share the same rule.
	if _, err := p.PlaceSeed(layout.ItemSpec{Kind: layout.KindMachine, ReferenceID: "M1"}); !errors.IsRefusal(err) {
		t.Errorf("seed error = %v, want refusal", err)
	}
}

func TestPlaceAfterRemove(t *testing.T) {
	store := layout.New()
	p := New(store)

	first, _ := p.PlaceBackingEntity(Entity{ID: "M1"})
	if !p.RemoveItem(first) {
		t.Fatal("RemoveItem returned false")
	}
	if p.IsPlaced("M1") {
		t.Error("M1 still placed after removal")
	}

	second, err := p.PlaceBackingEntity(Entity{ID: "M1"})
	if err != nil {
		t.Fatalf("re-placement: %v", err)
	}
	if second == first {
		t.Error("re-placement reused the removed uid")
	}
	if p.RemoveItem("missing") {
		t.Error("RemoveItem of unknown uid returned true")
	}
}

func TestEmptyEntityRefused(t *testing.T) {
	p := New(layout.New())
	if _, err := p.PlaceBackingEntity(Entity{DisplayLabel: "X"}); !errors.Is(err, errors.ErrCodeInvalidItemSpec) {
		t.Errorf("error = %v, want INVALID_ITEM_SPEC", err)
	}
}

func TestPlacedReferenceIDs(t *testing.T) {
	store := layout.New()
	p := New(store)
	p.PlaceBackingEntity(Entity{ID: "M1"})
	p.PlaceBackingEntity(Entity{ID: "M2"})
	p.PlaceSeed(layout.ItemSpec{Kind: layout.KindLabel, DisplayText: "TOOLS"})

	ids := p.PlacedReferenceIDs()
	if len(ids) != 2 {
		t.Fatalf("PlacedReferenceIDs = %v, want 2 entries", ids)
	}
	for _, id := range []string{"M1", "M2"} {
		if _, ok := ids[id]; !ok {
			t.Errorf("%s missing from %v", id, ids)
		}
	}
}

type countingHooks struct {
	placed, removed int
	refused         []string
}

func (h *countingHooks) OnPlaced(string)       { h.placed++ }
func (h *countingHooks) OnRefused(code string) { h.refused = append(h.refused, code) }
func (h *countingHooks) OnRemoved()            { h.removed++ }

func TestPlacementHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPlacementHooks(hooks)
	t.Cleanup(observability.Reset)

	p := New(layout.New())
	uid, _ := p.PlaceBackingEntity(Entity{ID: "M1"})
	p.PlaceBackingEntity(Entity{ID: "M1"})
	p.RemoveItem(uid)

	if hooks.placed != 1 || hooks.removed != 1 {
		t.Errorf("placed=%d removed=%d, want 1 and 1", hooks.placed, hooks.removed)
	}
	if len(hooks.refused) != 1 || hooks.refused[0] != string(errors.ErrCodeDuplicatePlacement) {
		t.Errorf("refused = %v", hooks.refused)
	}
}

func TestSetViewportSize(t *testing.T) {
	p := New(layout.New())
	p.SetViewportSize(geom.Size{W: 1200, H: 740})
	if got := p.Center(); got != geom.V(600, 370) {
		t.Errorf("Center() = %v, want (600, 370)", got)
	}

	// A collapsed window keeps the last usable size.
	p.SetViewportSize(geom.Size{W: 0, H: 740})
	if got := p.ViewportSize(); got != (geom.Size{W: 1200, H: 740}) {
		t.Errorf("ViewportSize() = %v", got)
	}
}
