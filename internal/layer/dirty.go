package layer

import "github.com/layerforge/compositor/internal/raster"

// DirtifyRect marks r (canvas space) as edited on l itself, growing it by
// every enabled effect's own radius so the flattener repaints far enough
// to cover effect bleed (spec.md §9 open question 1 — per-effect radius,
// not a flat constant).
func DirtifyRect(l *Layer, r raster.Rect) {
	grown := r
	for _, e := range l.Effects {
		if !e.Enabled {
			continue
		}
		grown = grown.Union(r.Grow(e.Radius()))
	}
	l.EditedDirtyRect = l.EditedDirtyRect.Union(grown)
	l.FlattenedDirtyRect = l.FlattenedDirtyRect.Union(grown)
}

// DirtifyEdited marks l's current EditedDirtyRect as also needing
// reflattening (used when an ancestor's state changes without the layer's
// own pixels changing, e.g. a clip target below it changed).
func DirtifyEdited(l *Layer) {
	l.FlattenedDirtyRect = l.FlattenedDirtyRect.Union(l.EditedDirtyRect)
}

// DirtifyFullRect marks r dirty on l without effect-radius growth (used
// for structural changes: move, delete, visibility toggle).
func DirtifyFullRect(l *Layer, r raster.Rect) {
	l.FlattenedDirtyRect = l.FlattenedDirtyRect.Union(r)
}

// DirtifyPoint marks a single canvas-space point dirty.
func DirtifyPoint(l *Layer, x, y int) {
	DirtifyRect(l, raster.Rect{X: x, Y: y, W: 1, H: 1})
}

// DirtifyAll marks the whole subtree rooted at l fully dirty, canvas size
// w x h — used after a global change (canvas resize, full repaint).
func DirtifyAll(l *Layer, w, h int) {
	VisitLayers(l, func(n *Layer) bool {
		full := raster.Rect{X: 0, Y: 0, W: w, H: h}
		n.EditedDirtyRect = full
		n.FlattenedDirtyRect = full
		return true
	})
}

// GetFlattenDirtyRect returns the union of every dirty rect anywhere in
// the subtree rooted at l — the single rect the flattener needs to
// recompute, per spec.md S6.
func GetFlattenDirtyRect(l *Layer) raster.Rect {
	var out raster.Rect
	VisitLayers(l, func(n *Layer) bool {
		out = out.Union(n.FlattenedDirtyRect)
		return true
	})
	return out
}

// ClearDirty resets l's dirty rects after a successful flatten.
func ClearDirty(l *Layer) {
	l.EditedDirtyRect = raster.Rect{}
	l.FlattenedDirtyRect = raster.Rect{}
}
