package software

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/compositor/internal/blend"
	"github.com/gogpu/compositor/internal/cache"
	"github.com/gogpu/compositor/internal/logging"
	"github.com/gogpu/compositor/scene"
	"github.com/gogpu/compositor/win"
)

// Decoration colours, premultiplied.
var (
	activeFrame   = color.RGBA{R: 0x3d, G: 0x5a, B: 0x80, A: 0xff}
	inactiveFrame = color.RGBA{R: 0x4a, G: 0x4a, B: 0x4f, A: 0xff}
	activeTitle   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	inactiveTitle = color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
)

type decorationKey struct {
	deco  win.Decoration
	frame image.Point
}

// decorations renders decoration atlases and keeps the recent ones.
type decorations struct {
	atlases *cache.Cache[decorationKey, *image.RGBA]
	faces   *cache.Cache[int, font.Face]
	font    *opentype.Font
}

func newDecorations() *decorations {
	d := &decorations{
		atlases: cache.New[decorationKey, *image.RGBA](64),
		faces:   cache.New[int, font.Face](8),
	}
	d.faces.OnEvict(func(_ int, f font.Face) {
		if f != nil {
			_ = f.Close()
		}
	})
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		logging.Logger().Error("software: parsing decoration font", "err", err)
	}
	d.font = f
	return d
}

// atlas returns the decoration texture of d around a frame of the given
// size, laid out by scene.NewDecorationAtlas.
func (d *decorations) atlas(deco win.Decoration, frame image.Point) *image.RGBA {
	key := decorationKey{deco, frame}
	return d.atlases.GetOrCreate(key, func() *image.RGBA { return d.render(deco, frame) })
}

func (d *decorations) render(deco win.Decoration, frame image.Point) *image.RGBA {
	fill, ink := inactiveFrame, inactiveTitle
	if deco.Active {
		fill, ink = activeFrame, activeTitle
	}

	// Draw the frame once, then pack its strips.
	full := image.NewRGBA(image.Rectangle{Max: frame})
	blend.Fill(blend.Source, full, full.Rect, fill, 255)
	d.drawTitle(full, deco, ink)

	a := scene.NewDecorationAtlas(deco, frame)
	atlas := image.NewRGBA(image.Rectangle{Max: a.Size})
	copyStrip(atlas, a.TopPos, full, a.Top, false)
	copyStrip(atlas, a.BottomPos, full, a.Bottom, false)
	copyStrip(atlas, a.LeftPos, full, a.Left, true)
	copyStrip(atlas, a.RightPos, full, a.Right, true)
	return atlas
}

// drawTitle writes the caption centred vertically in the top border.
func (d *decorations) drawTitle(dst *image.RGBA, deco win.Decoration, ink color.RGBA) {
	if d.font == nil || deco.Title == "" || deco.Top < 8 {
		return
	}
	size := deco.Top * 3 / 5
	face := d.faces.GetOrCreate(size, func() font.Face {
		f, err := opentype.NewFace(d.font, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			logging.Logger().Error("software: decoration face", "size", size, "err", err)
			return nil
		}
		return f
	})
	if face == nil {
		return
	}
	m := face.Metrics()
	baseline := (deco.Top + (m.Ascent - m.Descent).Ceil()) / 2
	top := dst.SubImage(image.Rect(0, 0, dst.Rect.Dx(), deco.Top)).(*image.RGBA)
	dr := &font.Drawer{
		Dst:  top,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(deco.Left+deco.Top/3, baseline),
	}
	dr.DrawString(deco.Title)
}

// copyStrip copies r of src to pos in dst, transposed when swap is set.
func copyStrip(dst *image.RGBA, pos image.Point, src *image.RGBA, r image.Rectangle, swap bool) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			tx, ty := x-r.Min.X, y-r.Min.Y
			if swap {
				tx, ty = ty, tx
			}
			dst.SetRGBA(pos.X+tx, pos.Y+ty, src.RGBAAt(x, y))
		}
	}
}
