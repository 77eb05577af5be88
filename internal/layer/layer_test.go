package layer

import (
	"testing"

	"github.com/layerforge/compositor/internal/raster"
)

func TestFindLayerAndParent(t *testing.T) {
	root := NewGroup("root")
	a := NewDrawable("a", raster.NewImage(1, 1, false))
	b := NewDrawable("b", raster.NewImage(1, 1, false))
	root.Children = []*Layer{a, b}

	if FindLayer(root, a.UUID) != a {
		t.Error("FindLayer did not find a")
	}
	if FindLayerParent(root, b.UUID) != root {
		t.Error("FindLayerParent did not find root as b's parent")
	}
	if FindLayer(root, NewID()) != nil {
		t.Error("FindLayer should return nil for an unknown id")
	}
}

func TestCountAndCountDrawable(t *testing.T) {
	root := NewGroup("root")
	g := NewGroup("g")
	d := NewDrawable("d", raster.NewImage(1, 1, false))
	g.Children = []*Layer{d}
	root.Children = []*Layer{g}

	if got := Count(root); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
	if got := CountDrawable(root); got != 1 {
		t.Errorf("CountDrawable = %d, want 1", got)
	}
}

func TestMoveLayerUpDown(t *testing.T) {
	root := NewGroup("root")
	a := NewDrawable("a", raster.NewImage(1, 1, false))
	b := NewDrawable("b", raster.NewImage(1, 1, false))
	root.Children = []*Layer{a, b}

	if !MoveLayerDown(root, a.UUID) {
		t.Fatal("MoveLayerDown(a) should succeed")
	}
	if root.Children[0] != b || root.Children[1] != a {
		t.Fatalf("order after MoveLayerDown(a): %v", root.Children)
	}
	if !MoveLayerUp(root, a.UUID) {
		t.Fatal("MoveLayerUp(a) should succeed")
	}
	if root.Children[0] != a {
		t.Fatalf("order after MoveLayerUp(a): %v", root.Children)
	}
}

func TestDeleteLayer(t *testing.T) {
	root := NewGroup("root")
	a := NewDrawable("a", raster.NewImage(1, 1, false))
	root.Children = []*Layer{a}
	if !DeleteLayer(root, a.UUID) {
		t.Fatal("DeleteLayer should succeed")
	}
	if len(root.Children) != 0 {
		t.Fatalf("children after delete = %v", root.Children)
	}
}

func TestDirtyRectUnionAcrossSubtree(t *testing.T) {
	root := NewGroup("root")
	a := NewDrawable("a", raster.NewImage(200, 200, false))
	root.Children = []*Layer{a}

	DirtifyRect(a, raster.Rect{X: 10, Y: 10, W: 1, H: 1})
	DirtifyRect(a, raster.Rect{X: 100, Y: 100, W: 1, H: 1})

	got := GetFlattenDirtyRect(root)
	if got.X != 10 || got.Y != 10 || got.X+got.W != 101 || got.Y+got.H != 101 {
		t.Fatalf("GetFlattenDirtyRect = %v, want min (10,10) max-exclusive (101,101)", got)
	}
}
