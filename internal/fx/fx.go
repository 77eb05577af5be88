// Package fx implements per-layer effects: colorfill, gradfill, dropshadow
// and stroke. Each effect is a pixel modifier plus a small bundle of
// compositing metadata (radius, fill-vs-non-fill, weld mode, early blend
// mode) that the flattener's effects pipeline uses to decide how to merge
// the effect's output into the layer stack.
package fx

import (
	"math"

	"github.com/layerforge/compositor/internal/raster"
)

// Category orders effects within a layer's effect stack: dropshadow first,
// then gradfill, then colorfill, then stroke — matching the original
// program's fixed compositing order regardless of insertion order.
type Category int

const (
	CategoryDropshadow Category = iota
	CategoryGradfill
	CategoryColorfill
	CategoryStroke
)

// Kind identifies which effect an Effect value carries.
type Kind int

const (
	KindColorfill Kind = iota
	KindGradfill
	KindDropshadow
	KindStroke
)

// Effect bundles one effect's parameters. Only the fields relevant to Kind
// are meaningful.
type Effect struct {
	Kind    Kind
	Opacity float32
	Enabled bool

	Color [3]float32 // colorfill

	GradStopList []GradStop
	GradAngle    float32
	GradDistance float32
	GradBias     float32

	ShadowAngle    float32
	ShadowDistance float32
	ShadowColor    [3]float32

	StrokeSize  int
	StrokeStyle StrokeStyle
	StrokeColor [3]float32
}

// GradStop is one color stop of a gradfill gradient.
type GradStop struct {
	T     float32
	Color [3]float32
}

// StrokeStyle selects which side of the alpha boundary a stroke grows on.
type StrokeStyle int

const (
	StrokeCenter StrokeStyle = iota
	StrokeInside
	StrokeOutside
)

// Category returns the fixed compositing-order bucket for e.
func (e Effect) Category() Category {
	switch e.Kind {
	case KindDropshadow:
		return CategoryDropshadow
	case KindGradfill:
		return CategoryGradfill
	case KindColorfill:
		return CategoryColorfill
	default:
		return CategoryStroke
	}
}

// IsFill reports whether e replaces the covered area outright (colorfill,
// gradfill) rather than growing from an alpha boundary (dropshadow,
// stroke). Fill-type effects are composited with Interpolate; non-fill
// effects are composited with their own WeldMode.
func (e Effect) IsFill() bool {
	return e.Kind == KindColorfill || e.Kind == KindGradfill
}

// Radius returns how far outside the layer's own drawn pixels this effect
// can paint, for dirty-rect growth (spec.md §9 open question 1: computed
// per effect from its real parameters, not a flat constant).
func (e Effect) Radius() int {
	switch e.Kind {
	case KindStroke:
		return e.StrokeSize + 2
	case KindDropshadow:
		return int(math.Ceil(float64(e.ShadowDistance))) + 1
	case KindColorfill, KindGradfill:
		return 0
	default:
		return 0
	}
}

// WeldMode names the blend mode used to merge a non-fill effect's result
// back into the accumulator.
func (e Effect) WeldMode() string {
	switch e.Kind {
	case KindDropshadow:
		return "Interpolate"
	case KindStroke:
		switch {
		case e.StrokeSize == 1 && e.StrokeStyle == StrokeCenter:
			return "Normal"
		case e.StrokeStyle == StrokeOutside:
			return "Sum Weld"
		case e.StrokeStyle == StrokeInside:
			return "Clip Weld"
		default: // StrokeCenter, size > 1
			return "Soft Weld"
		}
	default:
		return "Normal"
	}
}

// EarlyBlendMode names the blend mode used when this effect contributes to
// the "fill" accumulator pass (fill-type effects only).
func (e Effect) EarlyBlendMode() string {
	return "Normal"
}

// Apply computes this effect's own-color output at (x,y), sampling img
// (the layer's own alpha/shape) as needed. img.Get already returns
// transparent black outside bounds, matching the wrapped/clamped sampling
// the original per-effect modifiers rely on.
func (e Effect) Apply(img *raster.Image, x, y int) [4]float32 {
	switch e.Kind {
	case KindColorfill:
		return applyColorfill(e, img, x, y)
	case KindGradfill:
		return applyGradfill(e, img, x, y)
	case KindDropshadow:
		return applyDropshadow(e, img, x, y)
	case KindStroke:
		return applyStroke(e, img, x, y)
	default:
		return [4]float32{}
	}
}

func applyColorfill(e Effect, img *raster.Image, x, y int) [4]float32 {
	a := img.Get(x, y)[3]
	if a <= 0 {
		return [4]float32{}
	}
	return [4]float32{e.Color[0], e.Color[1], e.Color[2], a}
}

func applyDropshadow(e Effect, img *raster.Image, x, y int) [4]float32 {
	rad := float64(e.ShadowAngle) * math.Pi / 180
	dx := int(math.Round(math.Cos(rad) * float64(e.ShadowDistance)))
	dy := int(math.Round(math.Sin(rad) * float64(e.ShadowDistance)))
	a := img.Get(x-dx, y-dy)[3]
	if a <= 0 {
		return [4]float32{}
	}
	return [4]float32{e.ShadowColor[0], e.ShadowColor[1], e.ShadowColor[2], a}
}

func applyGradfill(e Effect, img *raster.Image, x, y int) [4]float32 {
	a := img.Get(x, y)[3]
	if a <= 0 || len(e.GradStopList) == 0 {
		return [4]float32{}
	}
	rad := float64(e.GradAngle) * math.Pi / 180
	axisX, axisY := math.Cos(rad), math.Sin(rad)
	dist := e.GradDistance
	if dist == 0 {
		dist = 1
	}
	t := float32((float64(x)*axisX+float64(y)*axisY)/float64(dist)) + 0.5
	if e.GradBias != 0 {
		t = biasRemap(t, e.GradBias)
	}
	c := sampleGradient(e.GradStopList, t)
	return [4]float32{c[0], c[1], c[2], a}
}

// biasRemap is a simplified piecewise bias curve for gradfill's
// t-remapping, not a literal port of the original program's curve. Values
// of t outside (0,1) pass through unchanged.
func biasRemap(t, bias float32) float32 {
	if t <= 0 || t >= 1 {
		return t
	}
	if bias >= 0 {
		return t / (t + bias*(1-t) + 1e-6)
	}
	return t * (1 + bias) / (1 - bias*t - bias + 1e-6)
}

func sampleGradient(stops []GradStop, t float32) [3]float32 {
	if t <= stops[0].T {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.T {
		return last.Color
	}
	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]
		if t >= a.T && t <= b.T {
			span := b.T - a.T
			if span <= 0 {
				return a.Color
			}
			f := (t - a.T) / span
			return [3]float32{
				a.Color[0] + (b.Color[0]-a.Color[0])*f,
				a.Color[1] + (b.Color[1]-a.Color[1])*f,
				a.Color[2] + (b.Color[2]-a.Color[2])*f,
			}
		}
	}
	return last.Color
}

func applyStroke(e Effect, img *raster.Image, x, y int) [4]float32 {
	size := e.StrokeSize
	if size <= 0 {
		return [4]float32{}
	}
	selfA := img.Get(x, y)[3]

	if size == 1 && e.StrokeStyle == StrokeCenter {
		// Single-pixel-wide center stroke: paint only boundary pixels,
		// those with at least one fully-transparent 4-neighbor.
		if selfA <= 0 {
			return [4]float32{}
		}
		if img.Get(x-1, y)[3] <= 0 || img.Get(x+1, y)[3] <= 0 ||
			img.Get(x, y-1)[3] <= 0 || img.Get(x, y+1)[3] <= 0 {
			return [4]float32{e.StrokeColor[0], e.StrokeColor[1], e.StrokeColor[2], selfA}
		}
		return [4]float32{}
	}

	var nearestOpaque, nearestTransparent bool
	var best float64 = math.MaxFloat64
	for dy := -size; dy <= size; dy++ {
		for dx := -size; dx <= size; dx++ {
			d := math.Hypot(float64(dx), float64(dy))
			if d > float64(size) || d == 0 {
				continue
			}
			a := img.Get(x+dx, y+dy)[3]
			if a > 0 {
				nearestOpaque = true
				if d < best {
					best = d
				}
			} else {
				nearestTransparent = true
			}
		}
	}

	switch e.StrokeStyle {
	case StrokeOutside:
		if selfA > 0 || !nearestOpaque {
			return [4]float32{}
		}
		strength := float32(1 - best/float64(size))
		return [4]float32{e.StrokeColor[0], e.StrokeColor[1], e.StrokeColor[2], strength}
	case StrokeInside:
		if selfA <= 0 || !nearestTransparent {
			return [4]float32{}
		}
		return [4]float32{e.StrokeColor[0], e.StrokeColor[1], e.StrokeColor[2], selfA}
	default: // StrokeCenter
		if !nearestOpaque || !nearestTransparent {
			if selfA > 0 {
				return [4]float32{e.StrokeColor[0], e.StrokeColor[1], e.StrokeColor[2], selfA}
			}
			return [4]float32{}
		}
		a := selfA
		if a <= 0 {
			a = float32(1 - best/float64(size))
		}
		return [4]float32{e.StrokeColor[0], e.StrokeColor[1], e.StrokeColor[2], a}
	}
}
