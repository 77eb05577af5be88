// Package layer implements the hierarchical layer tree: groups, drawable
// layers, adjustment layers, clipping and dirty-rect tracking, plus the
// edit-diff undo model (UndoEvent) that records and replays paint strokes.
package layer

import (
	"github.com/layerforge/compositor/internal/adjust"
	"github.com/layerforge/compositor/internal/fx"
	"github.com/layerforge/compositor/internal/raster"
)

// BlendMode names are opaque strings resolved by internal/blend; the tree
// itself never interprets them beyond storing and comparing.

// Layer is one node of the tree: either a group (IsGroup set, Data nil;
// Children may be empty), a drawable layer (Data holds its pixels), or an adjustment layer
// (Adjustment non-nil, Data nil, zero pixels of its own).
type Layer struct {
	UUID ID

	Name      string
	Visible   bool
	Locked    bool
	Opacity   float32
	BlendMode string
	Clipping  bool // true: this layer only paints where the run below is opaque

	IsGroup  bool
	Children []*Layer

	Data       *raster.Image
	Adjustment *adjust.Adjustment
	Effects    []fx.Effect

	OffsetX, OffsetY int // layer's placement on the canvas

	// Dirty-rect bookkeeping (canvas-space rects).
	EditedDirtyRect    raster.Rect // accumulates since last flatten of this layer's own pixels
	FlattenedDirtyRect raster.Rect // accumulates since last flatten of the whole subtree

	// flatten cache
	cachedImage *raster.Image
}

// NewDrawable creates a new drawable layer backed by img.
func NewDrawable(name string, img *raster.Image) *Layer {
	return &Layer{
		UUID:      NewID(),
		Name:      name,
		Visible:   true,
		Opacity:   1,
		BlendMode: "Normal",
		Data:      img,
	}
}

// NewGroup creates a new empty group layer.
func NewGroup(name string) *Layer {
	return &Layer{
		UUID:      NewID(),
		Name:      name,
		Visible:   true,
		Opacity:   1,
		BlendMode: "Normal",
		IsGroup:   true,
	}
}

// NewAdjustment creates a new adjustment layer.
func NewAdjustment(name string, a adjust.Adjustment) *Layer {
	return &Layer{
		UUID:       NewID(),
		Name:       name,
		Visible:    true,
		Opacity:    1,
		BlendMode:  "Normal",
		Adjustment: &a,
	}
}

// CachedImage returns l's cached flatten output from the last time it was
// rendered, or nil if it has never been rendered or was invalidated.
func (l *Layer) CachedImage() *raster.Image {
	return l.cachedImage
}

// SetCachedImage records img as l's flatten output, for reuse by a later
// Flatten call while no dirty rect is set anywhere in l's subtree.
func (l *Layer) SetCachedImage(img *raster.Image) {
	l.cachedImage = img
}

// FindLayer returns the layer with the given id anywhere in the subtree
// rooted at l, or nil.
func FindLayer(l *Layer, id ID) *Layer {
	if l.UUID == id {
		return l
	}
	for _, c := range l.Children {
		if found := FindLayer(c, id); found != nil {
			return found
		}
	}
	return nil
}

// FindLayerUnlocked is FindLayer but returns nil for a match that is
// itself locked or has a locked ancestor within the searched subtree.
func FindLayerUnlocked(l *Layer, id ID) *Layer {
	if l.Locked {
		return nil
	}
	if l.UUID == id {
		return l
	}
	for _, c := range l.Children {
		if found := FindLayerUnlocked(c, id); found != nil {
			return found
		}
	}
	return nil
}

// FindLayerParent returns the parent of the layer with the given id
// within the subtree rooted at l, or nil if id is l itself or not found.
func FindLayerParent(l *Layer, id ID) *Layer {
	for _, c := range l.Children {
		if c.UUID == id {
			return l
		}
		if found := FindLayerParent(c, id); found != nil {
			return found
		}
	}
	return nil
}

// VisitLayers calls fn on l and every descendant, pre-order, stopping
// early if fn returns false.
func VisitLayers(l *Layer, fn func(*Layer) bool) bool {
	if !fn(l) {
		return false
	}
	for _, c := range l.Children {
		if !VisitLayers(c, fn) {
			return false
		}
	}
	return true
}

// VisitLayerParent calls fn(parent, child) for every parent/child edge in
// the subtree rooted at l.
func VisitLayerParent(l *Layer, fn func(parent, child *Layer) bool) bool {
	for _, c := range l.Children {
		if !fn(l, c) {
			return false
		}
		if !VisitLayerParent(c, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of layers in the subtree rooted at l,
// including l itself.
func Count(l *Layer) int {
	n := 1
	for _, c := range l.Children {
		n += Count(c)
	}
	return n
}

// CountDrawable returns the number of non-group, non-adjustment layers in
// the subtree rooted at l.
func CountDrawable(l *Layer) int {
	n := 0
	if !l.IsGroup && l.Adjustment == nil {
		n++
	}
	for _, c := range l.Children {
		n += CountDrawable(c)
	}
	return n
}

// UUIDOfPrev returns the sibling immediately above id in its parent's
// child list (Zero if id is the topmost child or not found).
func UUIDOfPrev(root *Layer, id ID) ID {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return Zero
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			if i > 0 {
				return parent.Children[i-1].UUID
			}
			return Zero
		}
	}
	return Zero
}

// UUIDOfNext returns the sibling immediately below id in its parent's
// child list (Zero if id is the bottommost child or not found).
func UUIDOfNext(root *Layer, id ID) ID {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return Zero
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			if i+1 < len(parent.Children) {
				return parent.Children[i+1].UUID
			}
			return Zero
		}
	}
	return Zero
}

// WouldOverride reports whether moving/placing a layer named candidateID
// as a child of target would create a cycle (target is candidateID or a
// descendant of it).
func WouldOverride(candidate *Layer, targetID ID) bool {
	return VisitLayers(candidate, func(l *Layer) bool {
		return l.UUID != targetID
	}) == false
}

// DeleteLayer removes the layer with id from the subtree rooted at root,
// dirtying its old footprint. Reports whether a layer was removed.
func DeleteLayer(root *Layer, id ID) bool {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return false
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			DirtifyFullRect(parent, c.footprint())
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Layer) footprint() raster.Rect {
	if l.Data == nil {
		return raster.Rect{}
	}
	b := l.Data.Bounds()
	return raster.Rect{X: b.X + l.OffsetX, Y: b.Y + l.OffsetY, W: b.W, H: b.H}
}

// MoveLayerUp moves the layer with id one slot earlier (towards the front
// of its parent's child slice, i.e. higher in paint order) among its
// siblings.
func MoveLayerUp(root *Layer, id ID) bool {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return false
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			if i == 0 {
				return false
			}
			parent.Children[i-1], parent.Children[i] = parent.Children[i], parent.Children[i-1]
			DirtifyFullRect(parent, c.footprint())
			return true
		}
	}
	return false
}

// MoveLayerDown moves the layer with id one slot later among its siblings.
func MoveLayerDown(root *Layer, id ID) bool {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return false
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			if i+1 >= len(parent.Children) {
				return false
			}
			parent.Children[i+1], parent.Children[i] = parent.Children[i], parent.Children[i+1]
			DirtifyFullRect(parent, c.footprint())
			return true
		}
	}
	return false
}

// AddGroup inserts a new empty group as the topmost child of parent.
func AddGroup(parent *Layer, name string) *Layer {
	g := NewGroup(name)
	parent.Children = append([]*Layer{g}, parent.Children...)
	return g
}

// MoveIntoNewGroup wraps the layer with id in a freshly created group,
// preserving its position among its former siblings.
func MoveIntoNewGroup(root *Layer, id ID) *Layer {
	parent := FindLayerParent(root, id)
	if parent == nil {
		return nil
	}
	for i, c := range parent.Children {
		if c.UUID == id {
			g := NewGroup(c.Name + " group")
			g.Children = []*Layer{c}
			parent.Children[i] = g
			DirtifyFullRect(parent, c.footprint())
			return g
		}
	}
	return nil
}
