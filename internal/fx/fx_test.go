package fx

import (
	"testing"

	"github.com/layerforge/compositor/internal/raster"
)

func TestColorfillIsFillAndZeroRadius(t *testing.T) {
	e := Effect{Kind: KindColorfill}
	if !e.IsFill() {
		t.Error("colorfill should be a fill-type effect")
	}
	if e.Radius() != 0 {
		t.Errorf("colorfill radius = %d, want 0", e.Radius())
	}
}

func TestStrokeRadiusGrowsWithSize(t *testing.T) {
	e := Effect{Kind: KindStroke, StrokeSize: 5}
	if got, want := e.Radius(), 7; got != want {
		t.Errorf("stroke radius = %d, want %d", got, want)
	}
	if e.IsFill() {
		t.Error("stroke should not be a fill-type effect")
	}
}

func TestEffectCategoryOrder(t *testing.T) {
	order := map[Kind]Category{
		KindDropshadow: CategoryDropshadow,
		KindGradfill:   CategoryGradfill,
		KindColorfill:  CategoryColorfill,
		KindStroke:     CategoryStroke,
	}
	for kind, want := range order {
		if got := (Effect{Kind: kind}).Category(); got != want {
			t.Errorf("Category(%v) = %v, want %v", kind, got, want)
		}
	}
	if !(CategoryDropshadow < CategoryGradfill && CategoryGradfill < CategoryColorfill && CategoryColorfill < CategoryStroke) {
		t.Error("category ordering must be dropshadow < gradfill < colorfill < stroke")
	}
}

func TestColorfillOnlyPaintsWhereSourceIsOpaque(t *testing.T) {
	img := raster.NewImage(2, 1, false)
	img.Set(0, 0, [4]float32{0, 0, 0, 1}) // opaque at x=0, transparent at x=1
	e := Effect{Kind: KindColorfill, Color: [3]float32{1, 0, 0}}

	if c := e.Apply(img, 0, 0); c[3] < 0.99 {
		t.Errorf("opaque source: colorfill alpha = %v, want 1", c[3])
	}
	if c := e.Apply(img, 1, 0); c[3] > 0.01 {
		t.Errorf("transparent source: colorfill alpha = %v, want 0", c[3])
	}
}

func TestStrokeCenterSinglePixelBoundary(t *testing.T) {
	img := raster.NewImage(3, 1, false)
	img.Set(1, 0, [4]float32{0, 0, 0, 1}) // single opaque pixel, boundary on both sides
	e := Effect{Kind: KindStroke, StrokeSize: 1, StrokeStyle: StrokeCenter, StrokeColor: [3]float32{0, 1, 0}}
	c := e.Apply(img, 1, 0)
	if c[3] < 0.99 {
		t.Errorf("boundary pixel should get a stroke: %v", c)
	}
}
