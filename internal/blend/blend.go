// Package blend composites premultiplied RGBA pixels.
//
// Every function works on *image.RGBA, whose pixels are premultiplied,
// and takes an extra coverage value scaling the source: 255 draws the
// source as is, 0 leaves the destination untouched.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
package blend

import (
	"image"
	"image/color"
)

// Mode selects the compositing operator.
type Mode uint8

const (
	// SourceOver composites the source over the destination: S + D*(1-Sa).
	SourceOver Mode = iota
	// Source replaces the destination: S.
	Source
)

func (m Mode) String() string {
	if m == Source {
		return "Source"
	}
	return "SourceOver"
}

// Pixel composites one premultiplied source pixel onto d with mode m.
func Pixel(m Mode, d []uint8, sr, sg, sb, sa, coverage byte) {
	if coverage != 255 {
		sr, sg, sb, sa = mulDiv255(sr, coverage), mulDiv255(sg, coverage), mulDiv255(sb, coverage), mulDiv255(sa, coverage)
	}
	if m == Source || sa == 255 {
		d[0], d[1], d[2], d[3] = sr, sg, sb, sa
		return
	}
	if sa == 0 && m == SourceOver {
		return
	}
	inv := 255 - sa
	d[0] = addClamp(sr, mulDiv255(d[0], inv))
	d[1] = addClamp(sg, mulDiv255(d[1], inv))
	d[2] = addClamp(sb, mulDiv255(d[2], inv))
	d[3] = addClamp(sa, mulDiv255(d[3], inv))
}

// Draw composites the part of src at sp onto r of dst. r is clipped to
// both images.
func Draw(m Mode, dst *image.RGBA, r image.Rectangle, src *image.RGBA, sp image.Point, coverage byte) {
	r, sp = clip(dst, r, src, sp)
	if r.Empty() || (coverage == 0 && m == SourceOver) {
		return
	}
	w := r.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(sp.X, sp.Y+y-r.Min.Y)
		drow := dst.Pix[di : di+4*w]
		srow := src.Pix[si : si+4*w]
		for i := 0; i < len(drow); i += 4 {
			Pixel(m, drow[i:i+4], srow[i], srow[i+1], srow[i+2], srow[i+3], coverage)
		}
	}
}

// Fill composites the premultiplied colour c onto r of dst.
func Fill(m Mode, dst *image.RGBA, r image.Rectangle, c color.RGBA, coverage byte) {
	r = r.Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := dst.PixOffset(r.Min.X, y)
		row := dst.Pix[i : i+4*r.Dx()]
		for j := 0; j < len(row); j += 4 {
			Pixel(m, row[j:j+4], c.R, c.G, c.B, c.A, coverage)
		}
	}
}

// clip shrinks r to dst and to the part of src available at sp.
func clip(dst *image.RGBA, r image.Rectangle, src *image.RGBA, sp image.Point) (image.Rectangle, image.Point) {
	orig := r.Min
	r = r.Intersect(dst.Rect)
	sp = sp.Add(r.Min.Sub(orig))
	sr := image.Rectangle{Min: sp, Max: sp.Add(r.Size())}.Intersect(src.Rect)
	if sr.Empty() {
		return image.Rectangle{}, sp
	}
	r.Min = r.Min.Add(sr.Min.Sub(sp))
	r.Max = r.Min.Add(sr.Size())
	return r, sr.Min
}
