package software

import (
	"image"
	"math"
	"slices"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/compositor/internal/blend"
	"github.com/gogpu/compositor/internal/filter"
	"github.com/gogpu/compositor/paint"
	"github.com/gogpu/compositor/quad"
	"github.com/gogpu/compositor/region"
	"github.com/gogpu/compositor/scene"
	"github.com/gogpu/compositor/win"
)

// layer orders quads: shadows below everything, effect quads on top.
func layer(t quad.Type) int {
	switch t {
	case quad.TypeShadow:
		return 0
	case quad.TypeContents:
		return 1
	case quad.TypeDecoration:
		return 2
	}
	return 3
}

// PerformPaint draws the quads of data clipped to r.
func (b *Backend) PerformPaint(w *scene.Window, mask paint.Mask, r region.Region, data *paint.WindowPaintData) {
	dst := b.dst()
	clip := r.IntersectRect(dst.Rect)
	if clip.IsEmpty() || data.Opacity <= 0 {
		return
	}
	quads := slices.Clone(data.Quads)
	slices.SortStableFunc(quads, func(x, y quad.Quad) int { return layer(x.Type) - layer(y.Type) })

	j := job{
		dst:      dst,
		clip:     clip,
		cm:       colorMatrix(data),
		coverage: byte(min(data.Opacity, 1)*255 + 0.5),
		lanczos:  mask.Has(paint.WindowLanczos),
	}
	origin := w.Pos()
	for _, q := range quads {
		dr := screenRect(q, origin, data)
		if dr.Empty() || clip.IntersectRect(dr).IsEmpty() {
			continue
		}
		switch q.Type {
		case quad.TypeContents:
			b.drawContents(&j, w, q, dr, data.CrossFadeProgress)
		case quad.TypeDecoration:
			d, ok := w.Toplevel().Decoration()
			if !ok {
				continue
			}
			j.texture(dr, b.decos.atlas(d, w.Geometry().Size()), srcRect(q), q.UVSwapped)
		case quad.TypeShadow:
			sh := w.Shadow()
			if sh == nil || q.ID < 0 || q.ID >= win.ShadowElementCount {
				continue
			}
			if el := sh.Element(q.ID); el != nil {
				j.texture(dr, el, srcRect(q), false)
			}
		default:
			if q.Fill.A > 0 {
				for _, c := range clip.IntersectRect(dr).Rects() {
					blend.Fill(blend.SourceOver, dst, c, q.Fill, j.coverage)
				}
			}
		}
	}
}

func (b *Backend) drawContents(j *job, w *scene.Window, q quad.Quad, dr image.Rectangle, progress float64) {
	src := w.QuadSource(q.ID)
	if src == nil {
		return
	}
	cur, ok := scene.BufferOf[*Buffer](src)
	if !ok || cur.Image() == nil {
		return
	}
	sr := srcRect(q)
	prev, ok := scene.PreviousBufferOf[*Buffer](src)
	if progress >= 1 || !ok || prev == cur || prev.Image() == nil {
		j.texture(dr, cur.Image(), sr, q.UVSwapped)
		return
	}

	// Cross-fade: blend the previous content, stretched to the current
	// size, into the current one.
	now := j.sample(dr, cur.Image(), sr, q.UVSwapped)
	old := prev.Image()
	kx := float64(old.Rect.Dx()) / float64(cur.Image().Rect.Dx())
	ky := float64(old.Rect.Dy()) / float64(cur.Image().Rect.Dy())
	osr := image.Rect(
		int(math.Round(float64(sr.Min.X)*kx)), int(math.Round(float64(sr.Min.Y)*ky)),
		int(math.Round(float64(sr.Max.X)*kx)), int(math.Round(float64(sr.Max.Y)*ky)),
	)
	then := j.sample(dr, old, osr, q.UVSwapped)
	lerp(now, then, max(progress, 0))
	j.composite(dr, now)
}

// job holds the per-window drawing state.
type job struct {
	dst      *image.RGBA
	clip     region.Region
	cm       filter.ColorMatrix
	coverage byte
	lanczos  bool
}

// texture draws the sr part of src into dr.
func (j *job) texture(dr image.Rectangle, src image.Image, sr image.Rectangle, swapped bool) {
	if rgba, ok := src.(*image.RGBA); ok && !swapped && dr.Size() == sr.Size() && j.cm.IsIdentity() {
		for _, c := range j.clip.IntersectRect(dr).Rects() {
			blend.Draw(blend.SourceOver, j.dst, c, rgba, sr.Min.Add(c.Min.Sub(dr.Min)), j.coverage)
		}
		return
	}
	j.composite(dr, j.sample(dr, src, sr, swapped))
}

// sample scales the sr part of src to an image covering dr.
func (j *job) sample(dr image.Rectangle, src image.Image, sr image.Rectangle, swapped bool) *image.RGBA {
	if swapped {
		src, sr = transpose(src, sr), image.Rect(0, 0, sr.Dy(), sr.Dx())
	}
	tmp := image.NewRGBA(dr)
	switch {
	case dr.Size() == sr.Size():
		xdraw.Copy(tmp, dr.Min, src, sr, xdraw.Src, nil)
	case j.lanczos:
		xdraw.CatmullRom.Scale(tmp, dr, src, sr, xdraw.Src, nil)
	default:
		xdraw.ApproxBiLinear.Scale(tmp, dr, src, sr, xdraw.Src, nil)
	}
	return tmp
}

// composite applies the colour matrix to tmp and blends it onto the
// clipped destination.
func (j *job) composite(dr image.Rectangle, tmp *image.RGBA) {
	j.cm.Apply(tmp, dr)
	for _, c := range j.clip.IntersectRect(dr).Rects() {
		blend.Draw(blend.SourceOver, j.dst, c, tmp, c.Min, j.coverage)
	}
}

// screenRect maps q through the window and screen transforms.
func screenRect(q quad.Quad, origin image.Point, d *paint.WindowPaintData) image.Rectangle {
	x0, y0 := d.Transform.Apply(q.Left(), q.Top())
	x1, y1 := d.Transform.Apply(q.Right(), q.Bottom())
	ox, oy := float64(origin.X), float64(origin.Y)
	x0, y0 = d.Screen.Apply(x0+ox, y0+oy)
	x1, y1 = d.Screen.Apply(x1+ox, y1+oy)
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
}

// srcRect returns the texture rectangle q samples.
func srcRect(q quad.Quad) image.Rectangle {
	u0 := min(q.V[0].U, q.V[1].U, q.V[2].U, q.V[3].U)
	v0 := min(q.V[0].V, q.V[1].V, q.V[2].V, q.V[3].V)
	u1 := max(q.V[0].U, q.V[1].U, q.V[2].U, q.V[3].U)
	v1 := max(q.V[0].V, q.V[1].V, q.V[2].V, q.V[3].V)
	return image.Rect(int(math.Round(u0)), int(math.Round(v0)), int(math.Round(u1)), int(math.Round(v1)))
}

func colorMatrix(d *paint.WindowPaintData) filter.ColorMatrix {
	m := filter.Identity()
	if d.Saturation != 1 {
		m = filter.Saturation(float32(d.Saturation))
	}
	if d.Brightness != 1 {
		m = m.Multiply(filter.Brightness(float32(d.Brightness)))
	}
	return m
}

// transpose returns the sr part of src with its axes swapped.
func transpose(src image.Image, sr image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, sr.Dy(), sr.Dx()))
	for y := 0; y < sr.Dy(); y++ {
		for x := 0; x < sr.Dx(); x++ {
			r, g, b, a := src.At(sr.Min.X+x, sr.Min.Y+y).RGBA()
			i := dst.PixOffset(y, x)
			dst.Pix[i+0] = uint8(r >> 8)
			dst.Pix[i+1] = uint8(g >> 8)
			dst.Pix[i+2] = uint8(b >> 8)
			dst.Pix[i+3] = uint8(a >> 8)
		}
	}
	return dst
}

// lerp blends from toward dst by t: dst = from + (dst-from)*t.
func lerp(dst, from *image.RGBA, t float64) {
	for i := range dst.Pix {
		a, b := float64(from.Pix[i]), float64(dst.Pix[i])
		dst.Pix[i] = uint8(a + (b-a)*t + 0.5)
	}
}
