package blend

import (
	"testing"

	"github.com/layerforge/compositor/internal/pixel"
)

func u8p(r, g, b, a uint8) Pixel {
	return Pixel{pixel.ToFloat(r), pixel.ToFloat(g), pixel.ToFloat(b), pixel.ToFloat(a)}
}

func (p Pixel) u8() [4]uint8 {
	return [4]uint8{pixel.ToInt(p[0]), pixel.ToInt(p[1]), pixel.ToInt(p[2]), pixel.ToInt(p[3])}
}

func approxEq(a, b uint8) bool {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d <= 1
}

// TestNormalIdentity is spec law 1: Normal at top.a=1, amount=1 returns top
// verbatim.
func TestNormalIdentity(t *testing.T) {
	top := u8p(10, 200, 50, 255)
	bot := u8p(1, 2, 3, 255)
	out := Find("Normal")(top, bot, 1, 1, false)
	got := out.u8()
	want := top.u8()
	if got != want {
		t.Fatalf("Normal identity: got %v want %v", got, want)
	}
}

// TestZeroOpacityNoOp is spec law 2: any mode at amount=0 leaves bottom
// unchanged.
func TestZeroOpacityNoOp(t *testing.T) {
	bot := u8p(5, 6, 7, 200)
	top := u8p(250, 10, 90, 255)
	for _, mode := range []string{"Normal", "Multiply", "Screen", "Hard Mix", "Hue", "Composite"} {
		out := Find(mode)(top, bot, 0, 1, false)
		if got, want := out.u8(), bot.u8(); got != want {
			t.Errorf("%s: zero-opacity changed bottom: got %v want %v", mode, got, want)
		}
	}
}

func TestScenarioS1NormalOver(t *testing.T) {
	bot := u8p(0, 0, 0, 255)
	top := u8p(255, 255, 255, 128)
	out := Find("Normal")(top, bot, 1, 1, false).u8()
	want := [4]uint8{128, 128, 128, 255}
	if out != want {
		t.Fatalf("S1: got %v want %v", out, want)
	}
}

func TestScenarioS2MultiplyOpaque(t *testing.T) {
	bot := u8p(200, 100, 50, 255)
	top := u8p(128, 128, 128, 255)
	out := Find("Multiply")(top, bot, 1, 1, false).u8()
	want := [4]uint8{100, 50, 25, 255}
	for i := range want {
		if !approxEq(out[i], want[i]) {
			t.Fatalf("S2: got %v want %v (+-1)", out, want)
		}
	}
}

func TestScenarioS3Erase(t *testing.T) {
	bot := u8p(255, 0, 0, 200)
	top := u8p(0, 0, 0, 128)
	out := Find("Erase")(top, bot, 1, 1, false).u8()
	want := [4]uint8{255, 0, 0, 100}
	if out != want {
		t.Fatalf("S3: got %v want %v", out, want)
	}
}

func TestUnknownModeFallsBackToNormal(t *testing.T) {
	top := u8p(9, 9, 9, 255)
	bot := u8p(1, 1, 1, 255)
	got := Find("Some Nonexistent Mode")(top, bot, 1, 1, false).u8()
	want := Find("Normal")(top, bot, 1, 1, false).u8()
	if got != want {
		t.Fatalf("unknown mode: got %v want Normal's %v", got, want)
	}
}

func TestNoneIsNoOp(t *testing.T) {
	top := u8p(9, 9, 9, 255)
	bot := u8p(1, 2, 3, 200)
	got := Find("None")(top, bot, 1, 1, false).u8()
	if got != bot.u8() {
		t.Fatalf("None changed bottom: got %v want %v", got, bot.u8())
	}
}

// TestHardMixScalesTopByFillOpacity guards against the "Extra" kernel's
// per-channel math forgetting to scale the top sample by fill_opacity
// (modifier) before mixing it with bottom — a bug that only shows up when
// modifier < 1, which is exactly the case HardMix, as a fill_opacity-aware
// mode, exists to handle.
func TestHardMixScalesTopByFillOpacity(t *testing.T) {
	top := Pixel{0.8, 0.8, 0.8, 1}
	bot := Pixel{0.2, 0.2, 0.2, 1}
	out := hardMix(top, bot, 1, 0.5, false)
	if out[0] < 0.15 || out[0] > 0.25 {
		t.Fatalf("HardMix(fill=0.5) red channel = %v, want ~0.2 (unscaled top would give ~0.6)", out[0])
	}
	if out[3] < 0.95 {
		t.Fatalf("HardMix output alpha = %v, want ~1 (opaque top*amount*modifier mixed onto opaque bottom)", out[3])
	}
}

func TestToIntRoundingRule(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{-1, 0},
		{2, 255},
	}
	for _, c := range cases {
		if got := pixel.ToInt(c.in); got != c.want {
			t.Errorf("ToInt(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
