// Package flatten implements the recursive layer-tree flattener: back-to-
// front compositing of a group's children into a single image, including
// the clipping-mask "stash" mechanic, adjustment-layer short-circuiting,
// and each drawable layer's own effects pipeline.
package flatten

import (
	"sort"

	"github.com/layerforge/compositor/internal/fx"
	"github.com/layerforge/compositor/internal/kernel"
	"github.com/layerforge/compositor/internal/layer"
	"github.com/layerforge/compositor/internal/raster"
)

// Flatten renders l (root or any group) into a w x h canvas-sized image,
// recursing into nested groups, honoring clipping and adjustment layers.
//
// overrideUUID/overrideImage let a caller substitute a single layer's
// pixel data for the duration of this one flatten, without committing it
// to the tree — the in-progress edit a live-preview redraw needs before a
// paint stroke is actually applied (spec.md §4.6/§6). Pass layer.Zero and
// nil when there is no override.
//
// Any layer below l whose whole subtree has no dirty rect
// (layer.GetFlattenDirtyRect is empty) and contains no override reuses its
// cached render from the last Flatten call instead of recomputing (module
// G's dirty-rect tracking gates module H's work); layers that are
// recomputed have their dirty rects cleared afterward. l itself is always
// recomposited and is neither cached nor cleared.
func Flatten(l *layer.Layer, w, h int, overrideUUID layer.ID, overrideImage *raster.Image) *raster.Image {
	return flattenGroup(l, w, h, overrideUUID, overrideImage)
}

func full(w, h int) raster.Rect { return raster.Rect{X: 0, Y: 0, W: w, H: h} }

// hasOverrideBelow reports whether overrideUUID/overrideImage names a
// layer anywhere in l's subtree, including l itself.
func hasOverrideBelow(l *layer.Layer, overrideUUID layer.ID, overrideImage *raster.Image) bool {
	if overrideImage == nil {
		return false
	}
	return layer.FindLayer(l, overrideUUID) != nil
}

func flattenGroup(l *layer.Layer, w, h int, overrideUUID layer.ID, overrideImage *raster.Image) *raster.Image {
	acc := raster.NewImage(w, h, false)
	children := l.Children
	i := len(children) - 1
	for i >= 0 {
		child := children[i]
		if !child.Visible {
			i--
			continue
		}
		if child.Adjustment != nil {
			applyAdjustmentLayer(child, acc, w, h)
			i--
			continue
		}
		if child.Clipping {
			// An orphan clipping layer with no target below it in the
			// visible run: render it as an ordinary layer.
			img := renderLayer(child, w, h, overrideUUID, overrideImage)
			compositeOver(acc, img, child.BlendMode, child.Opacity)
			i--
			continue
		}

		target := child
		targetImg := renderLayer(target, w, h, overrideUUID, overrideImage)

		j := i - 1
		hasRun := false
		var stash *raster.Image
		for j >= 0 && children[j].Visible && children[j].Clipping {
			if !hasRun {
				stash = forceOpaque(targetImg)
				hasRun = true
			}
			clipImg := renderLayer(children[j], w, h, overrideUUID, overrideImage)
			compositeOver(stash, clipImg, children[j].BlendMode, children[j].Opacity)
			j--
		}

		if hasRun {
			// Law 10: the clipped composite equals blend(L1_over_L0_opaque,
			// background, L0.a * L0.opacity) — the target's own per-pixel
			// alpha gates the merge alongside its opacity, so it is fed in
			// as the blend's modifier (compositeSimple folds amount and
			// modifier into the same top-alpha multiply), and the stash's
			// own (forced-opaque) alpha is discarded rather than restored.
			kernel.BlendRectFrom(acc, stash, acc, full(w, h), target.BlendMode, target.Opacity, targetImg)
			i = j
		} else {
			compositeOver(acc, targetImg, target.BlendMode, target.Opacity)
			i--
		}
	}
	return acc
}

// renderLayer produces a full-canvas image of l's own content, placed at
// its offset, with its effects pipeline applied, but NOT yet composited
// with its own opacity/blend mode (that happens at the caller, against the
// accumulator below). It consults l's flatten cache (module G) before
// doing any of that work.
func renderLayer(l *layer.Layer, w, h int, overrideUUID layer.ID, overrideImage *raster.Image) *raster.Image {
	overridden := hasOverrideBelow(l, overrideUUID, overrideImage)
	// layer.GetFlattenDirtyRect, not l.FlattenedDirtyRect alone: a group is
	// only safe to serve from cache when nothing anywhere in its subtree
	// (not just the group node itself) has been dirtied since.
	if !overridden && layer.GetFlattenDirtyRect(l).Empty() && l.CachedImage() != nil {
		return l.CachedImage()
	}

	var base *raster.Image
	if l.IsGroup {
		base = flattenGroup(l, w, h, overrideUUID, overrideImage)
	} else if l.UUID == overrideUUID && overrideImage != nil {
		base = placeAtOffset(l, overrideImage, w, h)
	} else if l.Data != nil {
		base = placeAtOffset(l, l.Data, w, h)
	} else {
		base = raster.NewImage(w, h, false)
	}

	out := base
	if len(l.Effects) != 0 {
		out = blendWithFx(l, base, w, h)
	}

	if !overridden {
		l.SetCachedImage(out)
		layer.ClearDirty(l)
	}
	return out
}

func placeAtOffset(l *layer.Layer, src *raster.Image, w, h int) *raster.Image {
	out := raster.NewImage(w, h, src.Float)
	b := src.Bounds()
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			out.Set(l.OffsetX+x, l.OffsetY+y, src.Get(x, y))
		}
	}
	return out
}

func applyAdjustmentLayer(l *layer.Layer, acc *raster.Image, w, h int) {
	r := full(w, h)
	kernel.ApplyModifier(acc, acc, r, func(x, y int, c [4]float32) [4]float32 {
		return l.Adjustment.Apply(c)
	}, true)
	_ = l.Opacity // adjustment layers apply at full strength to the accumulator; the layer's Opacity is not used.
}

func compositeOver(acc, top *raster.Image, modeName string, amount float32) {
	if amount <= 0 {
		return
	}
	kernel.BlendRectFrom(acc, top, acc, acc.Bounds(), modeName, amount, nil)
}

func forceOpaque(img *raster.Image) *raster.Image {
	out := img.Alike()
	r := img.Bounds()
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			c := img.Get(x, y)
			c[3] = 1
			out.Set(x, y, c)
		}
	}
	return out
}

// renderEffect computes e's own-color image over the full canvas.
func renderEffect(e fx.Effect, base *raster.Image, w, h int, r raster.Rect) *raster.Image {
	eimg := raster.NewImage(w, h, base.Float)
	kernel.ApplyModifier(eimg, base, r, func(x, y int, _ [4]float32) [4]float32 {
		return e.Apply(base, x, y)
	}, false)
	return eimg
}

// blendWithFx composites l's effects onto base, which already holds the
// layer's own drawn pixels. Dropshadow is a dedicated pre-pass (spec.md
// §4.3 step 2): every enabled dropshadow renders onto a blank accumulator
// first, and only then does the layer's own content (and every remaining
// effect, sorted into their fixed category order: gradfill, colorfill,
// stroke) get composited on top of it — so a shadow never paints over the
// content that casts it.
func blendWithFx(l *layer.Layer, base *raster.Image, w, h int) *raster.Image {
	effects := make([]fx.Effect, 0, len(l.Effects))
	for _, e := range l.Effects {
		if e.Enabled {
			effects = append(effects, e)
		}
	}
	if len(effects) == 0 {
		return base
	}

	r := full(w, h)
	acc := raster.NewImage(w, h, base.Float)

	for _, e := range effects {
		if e.Category() != fx.CategoryDropshadow {
			continue
		}
		compositeOver(acc, renderEffect(e, base, w, h, r), e.WeldMode(), e.Opacity)
	}

	compositeOver(acc, base, "Normal", 1)

	rest := make([]fx.Effect, 0, len(effects))
	for _, e := range effects {
		if e.Category() != fx.CategoryDropshadow {
			rest = append(rest, e)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Category() < rest[j].Category() })

	for _, e := range rest {
		eimg := renderEffect(e, base, w, h, r)
		if e.IsFill() {
			compositeOver(acc, eimg, "Interpolate", e.Opacity)
		} else {
			compositeOver(acc, eimg, e.WeldMode(), e.Opacity)
		}
	}

	out := acc.Alike()
	kernel.BlendRectFrom(out, base, acc, r, "Alpha Antiblend", 1, nil)
	final := out.Alike()
	kernel.BlendRectFrom(final, base, out, r, "Blend Weld", 1, nil)
	return final
}
