// Command flattenctl loads a layer document, flattens it, and writes the
// result as a PNG (plus an optional downsampled preview).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	stdimage "image"
	"image/color"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/draw"

	"github.com/layerforge/compositor/internal/adjust"
	"github.com/layerforge/compositor/internal/config"
	"github.com/layerforge/compositor/internal/flatten"
	"github.com/layerforge/compositor/internal/fx"
	"github.com/layerforge/compositor/internal/layer"
	"github.com/layerforge/compositor/internal/raster"
)

func main() {
	in := flag.String("in", "", "input layer document (JSON)")
	out := flag.String("out", "out.png", "output PNG path")
	preview := flag.String("preview", "", "optional downsampled preview PNG path")
	previewW := flag.Int("preview-width", 256, "preview width in pixels")
	workers := flag.Int("workers", 0, "kernel band count (0 = auto)")
	flag.Parse()

	if *in == "" {
		log.Fatalf("flattenctl: -in is required")
	}
	if *workers > 0 {
		config.SetWorkerCount(*workers)
	}

	root, w, h, err := loadDocument(*in)
	if err != nil {
		log.Fatalf("flattenctl: %v", err)
	}

	result := flatten.Flatten(root, w, h, layer.Zero, nil)

	if err := writePNG(*out, result); err != nil {
		log.Fatalf("flattenctl: %v", err)
	}

	if *preview != "" {
		if err := writePreview(*preview, result, *previewW); err != nil {
			log.Fatalf("flattenctl: %v", err)
		}
	}
}

// docLayer is the on-disk JSON shape for one layer node.
type docLayer struct {
	Name      string     `json:"name"`
	Visible   *bool      `json:"visible,omitempty"`
	Locked    bool       `json:"locked,omitempty"`
	Opacity   *float32   `json:"opacity,omitempty"`
	BlendMode string     `json:"blend_mode,omitempty"`
	Clipping  bool       `json:"clipping,omitempty"`
	OffsetX   int        `json:"offset_x,omitempty"`
	OffsetY   int        `json:"offset_y,omitempty"`
	Group     bool       `json:"group,omitempty"`
	Children  []docLayer `json:"children,omitempty"`

	PNGPath string `json:"png,omitempty"`

	Adjustment *docAdjustment `json:"adjustment,omitempty"`
	Effects    []docEffect    `json:"effects,omitempty"`
}

type docAdjustment struct {
	Kind      string  `json:"kind"`
	Posterize float32 `json:"posterize,omitempty"`
	Threshold float32 `json:"threshold,omitempty"`
}

type docEffect struct {
	Kind    string     `json:"kind"`
	Opacity float32    `json:"opacity"`
	Enabled bool       `json:"enabled"`
	Color   [3]float32 `json:"color,omitempty"`
}

type docRoot struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Layers []docLayer `json:"layers"`
}

func loadDocument(path string) (*layer.Layer, int, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading document %q: %w", path, err)
	}
	var doc docRoot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, 0, 0, fmt.Errorf("parsing document %q: %w", path, err)
	}
	root := layer.NewGroup("root")
	for _, dl := range doc.Layers {
		l, err := buildLayer(dl)
		if err != nil {
			return nil, 0, 0, err
		}
		root.Children = append(root.Children, l)
	}
	return root, doc.Width, doc.Height, nil
}

func buildLayer(dl docLayer) (*layer.Layer, error) {
	var l *layer.Layer
	switch {
	case dl.Group:
		l = layer.NewGroup(dl.Name)
		for _, c := range dl.Children {
			cl, err := buildLayer(c)
			if err != nil {
				return nil, err
			}
			l.Children = append(l.Children, cl)
		}
	case dl.Adjustment != nil:
		a := adjust.Adjustment{}
		switch dl.Adjustment.Kind {
		case "invert":
			a.Kind = adjust.KindInvert
		case "posterize":
			a.Kind = adjust.KindPosterize
			a.Posterize = dl.Adjustment.Posterize
		case "threshold":
			a.Kind = adjust.KindThreshold
			a.Threshold = dl.Adjustment.Threshold
		default:
			return nil, fmt.Errorf("unknown adjustment kind %q", dl.Adjustment.Kind)
		}
		l = layer.NewAdjustment(dl.Name, a)
	default:
		var img *raster.Image
		if dl.PNGPath != "" {
			loaded, err := loadPNG(dl.PNGPath)
			if err != nil {
				return nil, err
			}
			img = loaded
		} else {
			img = raster.NewImage(0, 0, false)
		}
		l = layer.NewDrawable(dl.Name, img)
	}

	l.Locked = dl.Locked
	l.Clipping = dl.Clipping
	l.OffsetX = dl.OffsetX
	l.OffsetY = dl.OffsetY
	if dl.Visible != nil {
		l.Visible = *dl.Visible
	}
	if dl.Opacity != nil {
		l.Opacity = *dl.Opacity
	}
	if dl.BlendMode != "" {
		l.BlendMode = dl.BlendMode
	}
	for _, de := range dl.Effects {
		e, err := buildEffect(de)
		if err != nil {
			return nil, err
		}
		l.Effects = append(l.Effects, e)
	}
	return l, nil
}

func buildEffect(de docEffect) (fx.Effect, error) {
	e := fx.Effect{Opacity: de.Opacity, Enabled: de.Enabled, Color: de.Color}
	switch de.Kind {
	case "colorfill":
		e.Kind = fx.KindColorfill
	case "gradfill":
		e.Kind = fx.KindGradfill
	case "dropshadow":
		e.Kind = fx.KindDropshadow
	case "stroke":
		e.Kind = fx.KindStroke
	default:
		return fx.Effect{}, fmt.Errorf("unknown effect kind %q", de.Kind)
	}
	return e, nil
}

func loadPNG(path string) (*raster.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layer image %q: %w", path, err)
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding layer image %q: %w", path, err)
	}
	b := src.Bounds()
	img := raster.NewImage(b.Dx(), b.Dy(), false)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.At(x, y).RGBA()
			img.Set(x-b.Min.X, y-b.Min.Y, [4]float32{
				float32(r) / 65535, float32(g) / 65535, float32(bl) / 65535, float32(a) / 65535,
			})
		}
	}
	return img, nil
}

func toStdImage(img *raster.Image) *stdimage.RGBA {
	out := stdimage.NewRGBA(stdimage.Rect(0, 0, img.W, img.H))
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c := img.Get(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3]),
			})
		}
	}
	return out
}

func to8(v float32) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v*255.0 + 0.5)
}

func writePNG(path string, img *raster.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output %q: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, toStdImage(img)); err != nil {
		return fmt.Errorf("encoding output %q: %w", path, err)
	}
	return nil
}

func writePreview(path string, img *raster.Image, width int) error {
	src := toStdImage(img)
	if width <= 0 || src.Bounds().Dx() <= 0 {
		return fmt.Errorf("invalid preview width %d", width)
	}
	aspect := float64(src.Bounds().Dy()) / float64(src.Bounds().Dx())
	height := int(float64(width) * aspect)
	if height < 1 {
		height = 1
	}
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating preview %q: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("encoding preview %q: %w", path, err)
	}
	return nil
}
