// Package raster implements the compositor's pixel buffer: a rectangular,
// 4-channel (RGBA) image that can hold either straight U8 or F32 samples
// (there is no 1-channel variant; masks are RGBA images read through
// their alpha channel), with
// bounds-checked and wrapping pixel access and the grow/clear helpers the
// layer tree and undo system build on.
package raster

import "github.com/layerforge/compositor/internal/pixel"

// Rect is an axis-aligned, half-open pixel rectangle: [X, X+W) x [Y, Y+H).
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rect covers zero pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlap of r and o, which may be empty.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Union returns the smallest rect covering both r and o. An empty operand
// is ignored; Union of two empty rects is empty.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1 := max(r.X+r.W, o.X+o.W)
	y1 := max(r.Y+r.H, o.Y+o.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Grow expands r by n pixels in every direction.
func (r Rect) Grow(n int) Rect {
	return Rect{r.X - n, r.Y - n, r.W + 2*n, r.H + 2*n}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Image is a 4-channel (RGBA) pixel buffer. Float selects whether the
// backing store holds F32 samples (for HDR-ish adjustment/effect math) or
// straight U8 samples; both share the same Rect/Get/Set surface so the
// kernel harness and layer tree never need to special-case either.
type Image struct {
	W, H  int
	Float bool
	u8    []uint8   // len = W*H*4, valid when !Float
	f32   []float32 // len = W*H*4, valid when Float
}

// NewImage allocates a zeroed (transparent black) image of the given kind.
func NewImage(w, h int, isFloat bool) *Image {
	img := &Image{W: w, H: h, Float: isFloat}
	if w <= 0 || h <= 0 {
		return img
	}
	if isFloat {
		img.f32 = make([]float32, w*h*4)
	} else {
		img.u8 = make([]uint8, w*h*4)
	}
	return img
}

// Bounds returns the image's own rect, anchored at (0,0).
func (img *Image) Bounds() Rect { return Rect{0, 0, img.W, img.H} }

func (img *Image) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < img.W && y < img.H
}

func (img *Image) offset(x, y int) int { return (y*img.W + x) * 4 }

// Get reads the pixel at (x,y) as a straight-alpha [0,1] float pixel,
// regardless of the backing store's kind. Out-of-bounds reads return
// transparent black.
func (img *Image) Get(x, y int) [4]float32 {
	if !img.inBounds(x, y) {
		return [4]float32{}
	}
	o := img.offset(x, y)
	var out [4]float32
	if img.Float {
		copy(out[:], img.f32[o:o+4])
		return out
	}
	for i := 0; i < 4; i++ {
		out[i] = pixel.ToFloat(img.u8[o+i])
	}
	return out
}

// Set writes a straight-alpha [0,1] float pixel at (x,y), converting to
// the backing store's kind. Out-of-bounds writes are a no-op.
func (img *Image) Set(x, y int, c [4]float32) {
	if !img.inBounds(x, y) {
		return
	}
	o := img.offset(x, y)
	if img.Float {
		copy(img.f32[o:o+4], c[:])
		return
	}
	for i := 0; i < 4; i++ {
		img.u8[o+i] = pixel.ToInt(c[i])
	}
}

// GetWrapped reads a pixel with coordinates wrapped (modulo) into bounds.
// Go's `%` truncates toward zero, so the double-modulo form below is used
// to make negative inputs wrap to the tail of the axis. The effects in
// internal/fx sample with Get, not GetWrapped.
func (img *Image) GetWrapped(x, y int) [4]float32 {
	if img.W == 0 || img.H == 0 {
		return [4]float32{}
	}
	x = ((x % img.W) + img.W) % img.W
	y = ((y % img.H) + img.H) % img.H
	return img.Get(x, y)
}

// CloneGrown returns a copy of img resized to a new rect (in img's own
// coordinate space), with pixels outside the original bounds left blank.
func (img *Image) CloneGrown(r Rect) *Image {
	out := NewImage(r.W, r.H, img.Float)
	src := img.Bounds().Intersect(r)
	if src.Empty() {
		return out
	}
	for y := src.Y; y < src.Y+src.H; y++ {
		for x := src.X; x < src.X+src.W; x++ {
			out.Set(x-r.X, y-r.Y, img.Get(x, y))
		}
	}
	return out
}

// AlikeGrown allocates a blank image of the same kind as img, sized r.
func (img *Image) AlikeGrown(r Rect) *Image {
	return NewImage(r.W, r.H, img.Float)
}

// Alike allocates a blank image of the same kind and size as img.
func (img *Image) Alike() *Image {
	return NewImage(img.W, img.H, img.Float)
}

// CloneClearedOutside returns a copy of img with every pixel outside r
// (in img's own coordinate space) reset to transparent black.
func (img *Image) CloneClearedOutside(r Rect) *Image {
	out := NewImage(img.W, img.H, img.Float)
	clip := img.Bounds().Intersect(r)
	if clip.Empty() {
		return out
	}
	for y := clip.Y; y < clip.Y+clip.H; y++ {
		for x := clip.X; x < clip.X+clip.W; x++ {
			out.Set(x, y, img.Get(x, y))
		}
	}
	return out
}

// Clear resets every pixel in img to transparent black.
func (img *Image) Clear() {
	if img.Float {
		for i := range img.f32 {
			img.f32[i] = 0
		}
	} else {
		for i := range img.u8 {
			img.u8[i] = 0
		}
	}
}
