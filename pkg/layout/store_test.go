package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/shopfloor/pkg/errors"
	"github.com/matzehuels/shopfloor/pkg/geom"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func machine(ref string, x, y float64) ItemSpec {
	return ItemSpec{Kind: KindMachine, ReferenceID: ref, Position: geom.V(x, y)}
}

func TestAddItem(t *testing.T) {
	s := New(WithIDGenerator(counterIDs()))

	uid, err := s.AddItem(machine("M1", 50, 50))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if uid != "item-1" {
		t.Errorf("uid = %q, want item-1", uid)
	}

	it, ok := s.Item(uid)
	if !ok {
		t.Fatal("added item not found")
	}
	if it.SizeClass != SizeMedium {
		t.Errorf("SizeClass = %q, want default medium", it.SizeClass)
	}
	if it.Position != geom.V(50, 50) {
		t.Errorf("Position = %v, want (50, 50)", it.Position)
	}
}

func TestAddItemRejectsInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec ItemSpec
	}{
		{"unknown kind", ItemSpec{Kind: "robot"}},
		{"unknown size class", ItemSpec{Kind: KindLabel, SizeClass: "huge"}},
		{"NaN position", ItemSpec{Kind: KindLabel, Position: geom.V(math.NaN(), 0)}},
		{"infinite position", ItemSpec{Kind: KindZone, Position: geom.V(0, math.Inf(1))}},
		{"negative override", ItemSpec{Kind: KindLabel, SizeOverride: &geom.Size{W: -1}}},
		{"machine without reference", ItemSpec{Kind: KindMachine}},
		{"label with reference", ItemSpec{Kind: KindLabel, ReferenceID: "M1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			uid, err := s.AddItem(tt.spec)
			if !errors.Is(err, errors.ErrCodeInvalidItemSpec) {
				t.Fatalf("AddItem error = %v, want INVALID_ITEM_SPEC", err)
			}
			if uid != "" {
				t.Errorf("uid = %q, want empty", uid)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d, want store unchanged", s.Len())
			}
		})
	}
}

func TestUIDsNeverReused(t *testing.T) {
	// Generator hands out "a" twice before moving on.
	seq := []string{"a", "a", "b", "a", "c"}
	i := 0
	s := New(WithIDGenerator(func() string {
		id := seq[i]
		i++
		return id
	}))

	first, _ := s.AddItem(ItemSpec{Kind: KindLabel})
	s.RemoveItem(first)
	second, _ := s.AddItem(ItemSpec{Kind: KindLabel})
	third, _ := s.AddItem(ItemSpec{Kind: KindLabel})

	if first != "a" || second != "b" || third != "c" {
		t.Errorf("uids = %q, %q, %q; want a, b, c", first, second, third)
	}
}

func TestAddItemGeneratorExhausted(t *testing.T) {
	s := New(WithIDGenerator(func() string { return "same" }))
	if _, err := s.AddItem(ItemSpec{Kind: KindLabel}); err != nil {
		t.Fatalf("first AddItem: %v", err)
	}
	if _, err := s.AddItem(ItemSpec{Kind: KindLabel}); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("second AddItem error = %v, want INTERNAL_ERROR", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestMoveItem(t *testing.T) {
	s := New()
	uid, _ := s.AddItem(machine("M1", 0, 0))

	if !s.MoveItem(uid, geom.V(10, 20)) {
		t.Error("MoveItem on live uid returned false")
	}
	if it, _ := s.Item(uid); it.Position != geom.V(10, 20) {
		t.Errorf("Position = %v, want (10, 20)", it.Position)
	}

	if s.MoveItem("missing", geom.V(1, 1)) {
		t.Error("MoveItem on unknown uid returned true")
	}
	if s.MoveItem(uid, geom.V(math.NaN(), 1)) {
		t.Error("MoveItem with NaN returned true")
	}
	if it, _ := s.Item(uid); it.Position != geom.V(10, 20) {
		t.Errorf("Position after rejected moves = %v, want (10, 20)", it.Position)
	}
}

func TestRemoveItemIsolation(t *testing.T) {
	s := New(WithIDGenerator(counterIDs()))
	for i := 0; i < 5; i++ {
		if _, err := s.AddItem(machine(fmt.Sprintf("M%d", i), float64(i*10), float64(i*5))); err != nil {
			t.Fatal(err)
		}
	}
	before := s.Items()

	if !s.RemoveItem("item-3") {
		t.Fatal("RemoveItem returned false for live uid")
	}
	if s.RemoveItem("item-3") {
		t.Error("second RemoveItem returned true")
	}

	after := s.Items()
	if len(after) != len(before)-1 {
		t.Fatalf("Len = %d, want %d", len(after), len(before)-1)
	}

	byUID := make(map[string]Item)
	for _, it := range after {
		byUID[it.UID] = it
	}
	for _, it := range before {
		if it.UID == "item-3" {
			if _, ok := byUID[it.UID]; ok {
				t.Error("removed item still present")
			}
			continue
		}
		got, ok := byUID[it.UID]
		if !ok {
			t.Errorf("item %s missing after unrelated removal", it.UID)
			continue
		}
		if got.Position != it.Position || got.ReferenceID != it.ReferenceID || got.DisplayText != it.DisplayText {
			t.Errorf("item %s changed: got %+v, want %+v", it.UID, got, it)
		}
	}
}

func TestViewportClamping(t *testing.T) {
	s := New()
	if vp := s.Viewport(); vp.Scale != 1 || vp.Pan != (geom.Vec{}) {
		t.Errorf("default viewport = %+v", vp)
	}

	s.SetScale(10)
	if got := s.Viewport().Scale; got != geom.MaxScale {
		t.Errorf("SetScale(10) -> %v, want %v", got, geom.MaxScale)
	}
	s.SetScale(0)
	if got := s.Viewport().Scale; got != geom.MinScale {
		t.Errorf("SetScale(0) -> %v, want %v", got, geom.MinScale)
	}

	s.SetPan(geom.V(-5000, 12000))
	if got := s.Viewport().Pan; got != geom.V(-5000, 12000) {
		t.Errorf("pan = %v, want unbounded value kept", got)
	}
	s.SetPan(geom.V(math.Inf(1), 0))
	if got := s.Viewport().Pan; got != geom.V(-5000, 12000) {
		t.Errorf("non-finite pan applied: %v", got)
	}
}

func TestHitTestTopmostWins(t *testing.T) {
	s := New(WithIDGenerator(counterIDs()))
	bottom, _ := s.AddItem(ItemSpec{Kind: KindZone, Position: geom.V(0, 0), SizeOverride: &geom.Size{W: 200, H: 200}})
	top, _ := s.AddItem(machine("M1", 50, 50))

	if uid, ok := s.HitTest(geom.V(60, 60)); !ok || uid != top {
		t.Errorf("HitTest overlap = %q, %v; want %q", uid, ok, top)
	}
	if uid, ok := s.HitTest(geom.V(5, 5)); !ok || uid != bottom {
		t.Errorf("HitTest zone = %q, %v; want %q", uid, ok, bottom)
	}
	if _, ok := s.HitTest(geom.V(500, 500)); ok {
		t.Error("HitTest on empty space reported a hit")
	}
}

func TestFootprint(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want geom.Size
	}{
		{"small default", Item{SizeClass: SizeSmall}, geom.Size{W: 56, H: 56}},
		{"large default", Item{SizeClass: SizeLarge}, geom.Size{W: 112, H: 96}},
		{"width override only", Item{SizeClass: SizeMedium, SizeOverride: &geom.Size{W: 110}}, geom.Size{W: 110, H: 64}},
		{"full override", Item{SizeClass: SizeLarge, SizeOverride: &geom.Size{W: 260, H: 50}}, geom.Size{W: 260, H: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Footprint(); got != tt.want {
				t.Errorf("Footprint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New()
	uid, _ := s.AddItem(ItemSpec{Kind: KindLabel, SizeOverride: &geom.Size{W: 10, H: 10}})

	snap := s.Snapshot()
	snap.Items[0].Position = geom.V(999, 999)
	snap.Items[0].SizeOverride.W = 999

	it, _ := s.Item(uid)
	if it.Position == geom.V(999, 999) || it.SizeOverride.W == 999 {
		t.Error("mutating snapshot changed the store")
	}
}

func TestRestore(t *testing.T) {
	src := New(WithIDGenerator(counterIDs()))
	src.AddItem(machine("M1", 1, 2))
	src.AddItem(ItemSpec{Kind: KindLabel, DisplayText: "TOOLS"})
	src.SetScale(2)
	src.SetPan(geom.V(5, 6))

	data, err := json.Marshal(src.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}

	dst := New(WithIDGenerator(counterIDs()))
	if err := dst.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dst.Len() != 2 {
		t.Fatalf("Len = %d, want 2", dst.Len())
	}
	if vp := dst.Viewport(); vp.Scale != 2 || vp.Pan != geom.V(5, 6) {
		t.Errorf("viewport = %+v", vp)
	}

	// Restored uids are issued: the generator's next "item-1" must be skipped.
	uid, err := dst.AddItem(ItemSpec{Kind: KindZone})
	if err != nil {
		t.Fatal(err)
	}
	if uid != "item-3" {
		t.Errorf("uid after restore = %q, want item-3", uid)
	}
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
	}{
		{"missing uid", Snapshot{Items: []Item{{Kind: KindLabel, SizeClass: SizeSmall}}}},
		{"duplicate uid", Snapshot{Items: []Item{
			{UID: "x", Kind: KindLabel, SizeClass: SizeSmall},
			{UID: "x", Kind: KindZone, SizeClass: SizeSmall},
		}}},
		{"invalid item", Snapshot{Items: []Item{{UID: "x", Kind: KindMachine, SizeClass: SizeSmall}}}},
		{"machine placed twice", Snapshot{Items: []Item{
			{UID: "a", Kind: KindMachine, ReferenceID: "M1", SizeClass: SizeSmall},
			{UID: "b", Kind: KindMachine, ReferenceID: "M1", SizeClass: SizeSmall},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			keep, _ := s.AddItem(ItemSpec{Kind: KindLabel})
			if err := s.Restore(tt.snap); !errors.Is(err, errors.ErrCodeInvalidItemSpec) {
				t.Fatalf("Restore error = %v, want INVALID_ITEM_SPEC", err)
			}
			if _, ok := s.Item(keep); !ok || s.Len() != 1 {
				t.Error("failed Restore modified the store")
			}
		})
	}
}
