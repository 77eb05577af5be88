package adjust

import (
	"testing"

	"github.com/layerforge/compositor/internal/pixel"
)

// TestPosterizeScenarioS5 mirrors spec.md's scenario: Posterize(4) over a
// gradient row [0, 85, 170, 255] maps to itself.
func TestPosterizeScenarioS5(t *testing.T) {
	a := Adjustment{Kind: KindPosterize, Posterize: 4}
	for _, v := range []uint8{0, 85, 170, 255} {
		in := pixel.ToFloat(v)
		out := a.Apply([4]float32{in, in, in, 1})
		got := pixel.ToInt(out[0])
		if got != v {
			t.Errorf("Posterize(4) at %d = %d, want %d", v, got, v)
		}
	}
}

func TestInvert(t *testing.T) {
	a := Adjustment{Kind: KindInvert}
	out := a.Apply([4]float32{1, 0, 0.25, 1})
	want := [4]float32{0, 1, 0.75, 1}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("Invert = %v, want %v", out, want)
		}
	}
}

func TestThreshold(t *testing.T) {
	a := Adjustment{Kind: KindThreshold, Threshold: 0.5}
	white := a.Apply([4]float32{1, 1, 1, 1})
	if white[0] != 1 {
		t.Errorf("Threshold(white) = %v, want all-1", white)
	}
	black := a.Apply([4]float32{0, 0, 0, 1})
	if black[0] != 0 {
		t.Errorf("Threshold(black) = %v, want all-0", black)
	}
}
