package raster

import "testing"

func TestGetSetRoundTrip(t *testing.T) {
	img := NewImage(4, 4, false)
	img.Set(1, 2, [4]float32{1, 0.5, 0, 1})
	got := img.Get(1, 2)
	want := [4]float32{1, 0.5, 0, 1}
	for i := range want {
		// U8 storage loses float precision; check approx equality.
		d := got[i] - want[i]
		if d < 0 {
			d = -d
		}
		if d > 1.0/255.0 {
			t.Fatalf("Get/Set round trip at %v: got %v want %v", i, got, want)
		}
	}
}

func TestOutOfBoundsIsTransparentBlack(t *testing.T) {
	img := NewImage(2, 2, false)
	if got := img.Get(-1, 0); got != ([4]float32{}) {
		t.Errorf("out of bounds Get = %v, want zero", got)
	}
	// Should be a no-op, not a panic.
	img.Set(5, 5, [4]float32{1, 1, 1, 1})
}

func TestZeroSizeImageIsNoOp(t *testing.T) {
	img := NewImage(0, 0, false)
	if img.Get(0, 0) != ([4]float32{}) {
		t.Errorf("zero image Get should be transparent black")
	}
	img.Set(0, 0, [4]float32{1, 1, 1, 1})
}

func TestRectIntersectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 10, 10}
	i := a.Intersect(b)
	if i != (Rect{5, 5, 5, 5}) {
		t.Errorf("Intersect = %v, want {5 5 5 5}", i)
	}
	u := a.Union(b)
	if u != (Rect{0, 0, 15, 15}) {
		t.Errorf("Union = %v, want {0 0 15 15}", u)
	}
}

func TestDirtyRectUnionScenarioS6(t *testing.T) {
	// spec S6: paint a single pixel at (10,10), then at (100,100); the
	// union of the two 1x1 dirty rects runs from (10,10) to (101,101) with
	// the max exclusive, so both painted pixels are included.
	r1 := Rect{X: 10, Y: 10, W: 1, H: 1}
	r2 := Rect{X: 100, Y: 100, W: 1, H: 1}
	u := r1.Union(r2)
	wantMin := [2]int{10, 10}
	wantMaxExclusive := [2]int{101, 101}
	if u.X != wantMin[0] || u.Y != wantMin[1] {
		t.Fatalf("union min = (%d,%d), want %v", u.X, u.Y, wantMin)
	}
	if u.X+u.W != wantMaxExclusive[0] || u.Y+u.H != wantMaxExclusive[1] {
		t.Fatalf("union max-exclusive = (%d,%d), want %v", u.X+u.W, u.Y+u.H, wantMaxExclusive)
	}
}

func TestCloneGrown(t *testing.T) {
	img := NewImage(2, 2, false)
	img.Set(0, 0, [4]float32{1, 1, 1, 1})
	grown := img.CloneGrown(Rect{-1, -1, 4, 4})
	if grown.W != 4 || grown.H != 4 {
		t.Fatalf("CloneGrown size = %dx%d, want 4x4", grown.W, grown.H)
	}
	c := grown.Get(1, 1) // was (0,0) in original coords
	if c[3] < 0.99 {
		t.Errorf("CloneGrown lost pixel at shifted offset: %v", c)
	}
}
