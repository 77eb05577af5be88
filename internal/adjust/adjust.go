// Package adjust implements non-destructive adjustment layers: pixel
// modifiers that read the flattened image below them and replace it,
// always computed as if each source pixel were fully opaque (the caller
// restores each source pixel's own alpha afterward via flushOpacity).
package adjust

import (
	"math"

	"github.com/layerforge/compositor/internal/pixel"
)

// Kind identifies which adjustment an Adjustment value carries.
type Kind int

const (
	KindInvert Kind = iota
	KindPosterize
	KindThreshold
	KindBrightContrast
	KindHueSatLum
	KindLevels
	KindCurves
	KindBlackWhite
)

// Adjustment is a tagged union over every adjustment kind's parameters,
// mirroring the original program's Adjustment enum. Only the field
// matching Kind is meaningful.
type Adjustment struct {
	Kind Kind

	Posterize float32    // number of levels
	Threshold float32    // cutoff in [0,1]
	BC        [5]float32 // brightness, contrast, r/g/b multipliers
	HSL       [3]float32 // hue shift (degrees), saturation, lightness deltas
	Levels    [][5]float32
	Curves    [][][2]float32 // one control-point list per channel group
	BWMix     [6]float32     // per-channel-pair weights
	BWTint    bool
	BWTintRGB [3]float32
}

// Apply computes the adjusted color for a single source pixel.
func (a Adjustment) Apply(c [4]float32) [4]float32 {
	switch a.Kind {
	case KindInvert:
		return [4]float32{1 - c[0], 1 - c[1], 1 - c[2], c[3]}
	case KindPosterize:
		return [4]float32{posterize(c[0], a.Posterize), posterize(c[1], a.Posterize), posterize(c[2], a.Posterize), c[3]}
	case KindThreshold:
		l := pixel.CalcY(c[0], c[1], c[2])
		v := float32(0)
		if l >= a.Threshold {
			v = 1
		}
		return [4]float32{v, v, v, c[3]}
	case KindBrightContrast:
		return applyBrightContrast(c, a.BC)
	case KindHueSatLum:
		return applyHueSatLum(c, a.HSL)
	case KindLevels:
		return applyLevels(c, a.Levels)
	case KindCurves:
		return applyCurves(c, a.Curves)
	case KindBlackWhite:
		return applyBlackWhite(c, a.BWMix, a.BWTint, a.BWTintRGB)
	default:
		return c
	}
}

func posterize(v float32, levels float32) float32 {
	if levels < 2 {
		levels = 2
	}
	steps := levels - 1
	return pixel.Clamp01(float32(int(v*steps+0.5)) / steps)
}

// applyBrightContrast: bc = [brightness, contrast, rMul, gMul, bMul].
func applyBrightContrast(c [4]float32, bc [5]float32) [4]float32 {
	brightness, contrast := bc[0], bc[1]
	mul := [3]float32{bc[2], bc[3], bc[4]}
	var out [4]float32
	out[3] = c[3]
	for i := 0; i < 3; i++ {
		v := c[i]*mul[i] + brightness
		v = (v-0.5)*(1+contrast) + 0.5
		out[i] = pixel.Clamp01(v)
	}
	return out
}

// applyHueSatLum: hsl = [hue shift in degrees, saturation delta, lightness delta].
func applyHueSatLum(c [4]float32, hsl [3]float32) [4]float32 {
	h, s, l := pixel.RGBToHSL(c[0], c[1], c[2])
	h += hsl[0]
	for h < 0 {
		h += 360
	}
	for h >= 360 {
		h -= 360
	}
	s = pixel.Clamp01(s + hsl[1])
	l = pixel.Clamp01(l + hsl[2])
	r, g, b := pixel.HSLToRGB(h, s, l)
	return [4]float32{r, g, b, c[3]}
}

// applyLevels applies one [inBlack, inWhite, gamma, outBlack, outWhite]
// tuple per RGB channel, falling back to the first tuple for channels
// beyond len(levels).
func applyLevels(c [4]float32, levels [][5]float32) [4]float32 {
	if len(levels) == 0 {
		return c
	}
	var out [4]float32
	out[3] = c[3]
	for i := 0; i < 3; i++ {
		lv := levels[0]
		if i < len(levels) {
			lv = levels[i]
		}
		out[i] = applyLevel(c[i], lv)
	}
	return out
}

func applyLevel(v float32, lv [5]float32) float32 {
	inBlack, inWhite, gamma, outBlack, outWhite := lv[0], lv[1], lv[2], lv[3], lv[4]
	if inWhite <= inBlack {
		inWhite = inBlack + 1e-6
	}
	t := pixel.Clamp01((v - inBlack) / (inWhite - inBlack))
	if gamma > 0 {
		t = powf(t, 1/gamma)
	}
	return pixel.Clamp01(pixel.Lerp(outBlack, outWhite, t))
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return float32(math.Pow(float64(base), float64(exp)))
}

func applyBlackWhite(c [4]float32, mix [6]float32, tint bool, tintRGB [3]float32) [4]float32 {
	// Gray level is a weighted sum of R, G and B: mix[0..2] weight R, G, B
	// and mix[3..5] weight R, G, B again; there is no hue-sector
	// decomposition.
	l := mix[0]*c[0] + mix[1]*c[1] + mix[2]*c[2] + mix[3]*c[0] + mix[4]*c[1] + mix[5]*c[2]
	l = pixel.Clamp01(l)
	if !tint {
		return [4]float32{l, l, l, c[3]}
	}
	return [4]float32{l * tintRGB[0], l * tintRGB[1], l * tintRGB[2], c[3]}
}
