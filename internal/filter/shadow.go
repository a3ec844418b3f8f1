package filter

import (
	"image"
	"image/color"

	"github.com/gogpu/compositor/win"
)

// Shadow generates a Gaussian drop shadow reaching size pixels beyond each
// edge of a window, tinted with c. It returns an empty shadow for size < 1.
//
// The tiles are cut from a blurred square: corners of 2*size pixels and
// one pixel wide edges the scene stretches along the frame.
func Shadow(size int, c color.RGBA) win.Shadow {
	var s win.Shadow
	if size < 1 {
		return s
	}
	side := 4*size + 1
	plane := make([]float32, side*side)
	for y := size; y < 3*size+1; y++ {
		for x := size; x < 3*size+1; x++ {
			plane[y*side+x] = 1
		}
	}
	blur(plane, side, side, GaussianKernel(float64(size)/3))

	canvas := image.NewRGBA(image.Rect(0, 0, side, side))
	for i, a := range plane {
		k := min(max(a, 0), 1)
		o := i * 4
		canvas.Pix[o+0] = uint8(float32(c.R)*k + 0.5)
		canvas.Pix[o+1] = uint8(float32(c.G)*k + 0.5)
		canvas.Pix[o+2] = uint8(float32(c.B)*k + 0.5)
		canvas.Pix[o+3] = uint8(float32(c.A)*k + 0.5)
	}

	lo, mid, hi := 2*size, 2*size+1, side
	cuts := [win.ShadowElementCount]image.Rectangle{
		win.ShadowTopLeft:     image.Rect(0, 0, lo, lo),
		win.ShadowTop:         image.Rect(lo, 0, mid, lo),
		win.ShadowTopRight:    image.Rect(mid, 0, hi, lo),
		win.ShadowRight:       image.Rect(mid, lo, hi, mid),
		win.ShadowBottomRight: image.Rect(mid, mid, hi, hi),
		win.ShadowBottom:      image.Rect(lo, mid, mid, hi),
		win.ShadowBottomLeft:  image.Rect(0, mid, lo, hi),
		win.ShadowLeft:        image.Rect(0, lo, lo, mid),
	}
	for i, r := range cuts {
		s.Elements[i] = crop(canvas, r)
	}
	s.Offset = win.Margins{Left: size, Top: size, Right: size, Bottom: size}
	return s
}

// crop copies r of src into a new image at the origin.
func crop(src *image.RGBA, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: r.Size()})
	for y := 0; y < r.Dy(); y++ {
		si := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:], src.Pix[si:si+4*r.Dx()])
	}
	return dst
}
