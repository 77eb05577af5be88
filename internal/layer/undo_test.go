package layer

import (
	"testing"

	"github.com/layerforge/compositor/internal/raster"
)

func TestAnalyzeEditRoundTrip(t *testing.T) {
	before := raster.NewImage(4, 4, false)
	after := raster.NewImage(4, 4, false)
	before.Set(1, 1, [4]float32{0, 0, 0, 0})
	after.Set(1, 1, [4]float32{1, 0, 0, 1})

	scope := raster.Rect{X: 0, Y: 0, W: 4, H: 4}
	ev := AnalyzeEdit(before, after, scope)
	if ev == nil {
		t.Fatal("expected a non-nil edit")
	}
	if ev.Rect != scope {
		t.Fatalf("undo rect = %v, want the full clamped scope %v", ev.Rect, scope)
	}

	dst := raster.NewImage(4, 4, false)
	before.Bounds()
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			dst.Set(x, y, before.Get(x, y))
		}
	}
	ev.ApplyEdit(dst)
	if got := dst.Get(1, 1); got[0] < 0.99 {
		t.Errorf("after ApplyEdit, pixel = %v, want red", got)
	}

	ev.UndoEdit(dst)
	if got := dst.Get(1, 1); got[3] > 0.01 {
		t.Errorf("after UndoEdit, pixel = %v, want transparent", got)
	}

	ev.RedoEdit(dst)
	if got := dst.Get(1, 1); got[0] < 0.99 {
		t.Errorf("after RedoEdit, pixel = %v, want red", got)
	}
}

func TestAnalyzeEditNoChangeReturnsNil(t *testing.T) {
	img := raster.NewImage(3, 3, false)
	scope := raster.Rect{X: 0, Y: 0, W: 3, H: 3}
	if ev := AnalyzeEdit(img, img, scope); ev != nil {
		t.Fatalf("expected nil for an unchanged region, got %v", ev)
	}
}

func TestAnalyzeEditClampsToImageBounds(t *testing.T) {
	before := raster.NewImage(4, 4, false)
	after := raster.NewImage(4, 4, false)
	after.Set(0, 0, [4]float32{1, 1, 1, 1})

	scope := raster.Rect{X: -5, Y: -5, W: 20, H: 20}
	ev := AnalyzeEdit(before, after, scope)
	if ev == nil {
		t.Fatal("expected a non-nil edit")
	}
	want := raster.Rect{X: 0, Y: 0, W: 4, H: 4}
	if ev.Rect != want {
		t.Fatalf("undo rect = %v, want clamped %v", ev.Rect, want)
	}
}
