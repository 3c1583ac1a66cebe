package geom

import (
	"math"
	"testing"
)

func TestScreenDeltaToWorldDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta Vec
		scale float64
		want  Vec
	}{
		{name: "identity", delta: V(20, 40), scale: 1, want: V(20, 40)},
		{name: "zoomed in", delta: V(20, 40), scale: 2, want: V(10, 20)},
		{name: "zoomed out", delta: V(20, 40), scale: 0.5, want: V(40, 80)},
		{name: "negative", delta: V(-30, 15), scale: 1.5, want: V(-20, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreenDeltaToWorldDelta(tt.delta, tt.scale); got != tt.want {
				t.Errorf("ScreenDeltaToWorldDelta(%v, %v) = %v, want %v", tt.delta, tt.scale, got, tt.want)
			}
		})
	}
}

func TestClampScale(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{0.5, 0.5},
		{2.5, 2.5},
		{0.1, 0.5},
		{-3, 0.5},
		{9, 2.5},
		{math.Inf(1), 2.5},
		{math.Inf(-1), 0.5},
		{math.NaN(), DefaultScale},
	}

	for _, tt := range tests {
		if got := ClampScale(tt.in); got != tt.want {
			t.Errorf("ClampScale(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestZoomStaysInBounds(t *testing.T) {
	s := DefaultScale
	for i := 0; i < 40; i++ {
		s = ZoomIn(s)
		if s < MinScale || s > MaxScale {
			t.Fatalf("ZoomIn step %d left bounds: %v", i, s)
		}
	}
	if s != MaxScale {
		t.Errorf("repeated ZoomIn = %v, want pinned at %v", s, MaxScale)
	}
	if again := ZoomIn(s); again != MaxScale {
		t.Errorf("ZoomIn at bound = %v, want %v", again, MaxScale)
	}

	for i := 0; i < 40; i++ {
		s = ZoomOut(s)
		if s < MinScale || s > MaxScale {
			t.Fatalf("ZoomOut step %d left bounds: %v", i, s)
		}
	}
	if s != MinScale {
		t.Errorf("repeated ZoomOut = %v, want pinned at %v", s, MinScale)
	}
}

func TestScreenWorldRoundTrip(t *testing.T) {
	pan := V(30, -12)
	scale := 2.0
	w := V(50, 50)

	screen := WorldToScreen(w, pan, scale)
	if screen != V(130, 88) {
		t.Fatalf("WorldToScreen = %v, want (130, 88)", screen)
	}
	if back := ScreenToWorld(screen, pan, scale); back != w {
		t.Errorf("ScreenToWorld(WorldToScreen(w)) = %v, want %v", back, w)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{Min: V(10, 10), Size: Size{W: 20, H: 10}}

	tests := []struct {
		name string
		p    Vec
		want bool
	}{
		{"top-left corner", V(10, 10), true},
		{"inside", V(15, 15), true},
		{"right edge exclusive", V(30, 15), false},
		{"bottom edge exclusive", V(15, 20), false},
		{"left of rect", V(9.9, 15), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestVecIsFinite(t *testing.T) {
	if !V(1, -2).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V(math.NaN(), 0).IsFinite() {
		t.Error("NaN component reported finite")
	}
	if V(0, math.Inf(-1)).IsFinite() {
		t.Error("infinite component reported finite")
	}
}
