package adjust

import "testing"

func TestCurvesPassThroughIdentity(t *testing.T) {
	identity := [][2]float32{{0, 0}, {1, 1}}
	out := applyCurves([4]float32{0.3, 0.6, 0.9, 1}, [][][2]float32{identity})
	for i, v := range []float32{0.3, 0.6, 0.9} {
		if d := out[i] - v; d > 0.02 || d < -0.02 {
			t.Errorf("identity curve channel %d = %v, want ~%v", i, out[i], v)
		}
	}
}

// TestCurvesOnlyUsesFirstChannelGroup preserves the original program's
// behavior of applying curves[0] to all three RGB channels rather than an
// independent spline per channel.
func TestCurvesOnlyUsesFirstChannelGroup(t *testing.T) {
	flat := [][2]float32{{0, 1}, {1, 1}} // maps everything to 1
	unused := [][2]float32{{0, 0}, {1, 0}}
	out := applyCurves([4]float32{0.2, 0.5, 0.8, 1}, [][][2]float32{flat, unused, unused})
	for i := 0; i < 3; i++ {
		if out[i] < 0.98 {
			t.Errorf("channel %d = %v, want ~1 (curves[0] applied to every channel)", i, out[i])
		}
	}
}

func TestCurvesEmptyIsNoOp(t *testing.T) {
	in := [4]float32{0.1, 0.2, 0.3, 1}
	out := applyCurves(in, nil)
	if out != in {
		t.Errorf("empty curves changed pixel: got %v want %v", out, in)
	}
}
