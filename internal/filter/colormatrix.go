package filter

import "image"

// ColorMatrix is a 4x5 colour transformation in row-major order:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// Colour values are in [0, 255] during the transformation.
type ColorMatrix [20]float32

// Identity returns the matrix leaving colours unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness scales the colour channels by f: 0 is black, 1 unchanged.
func Brightness(f float32) ColorMatrix {
	return ColorMatrix{
		f, 0, 0, 0, 0,
		0, f, 0, 0, 0,
		0, 0, f, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Saturation blends between luminance (0) and the original colour (1).
func Saturation(f float32) ColorMatrix {
	// Rec. 709 luminance weights.
	const (
		lumR = 0.2126
		lumG = 0.7152
		lumB = 0.0722
	)
	inv := 1 - f
	return ColorMatrix{
		lumR*inv + f, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + f, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + f, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// IsIdentity reports whether m leaves colours unchanged.
func (m ColorMatrix) IsIdentity() bool { return m == Identity() }

// Multiply returns the matrix applying m first, then o.
func (m ColorMatrix) Multiply(o ColorMatrix) ColorMatrix {
	var r ColorMatrix
	for row := range 4 {
		for col := range 4 {
			var sum float32
			for k := range 4 {
				sum += o[row*5+k] * m[k*5+col]
			}
			r[row*5+col] = sum
		}
		r[row*5+4] = o[row*5]*m[4] + o[row*5+1]*m[9] + o[row*5+2]*m[14] + o[row*5+3]*m[19] + o[row*5+4]
	}
	return r
}

// Apply transforms the pixels of img inside r in place.
func (m ColorMatrix) Apply(img *image.RGBA, r image.Rectangle) {
	r = r.Intersect(img.Rect)
	if r.Empty() || m.IsIdentity() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		row := img.Pix[i : i+4*r.Dx()]
		for j := 0; j < len(row); j += 4 {
			m.pixel(row[j : j+4 : j+4])
		}
	}
}

// pixel transforms one premultiplied pixel. The matrix works on straight
// alpha values.
func (m ColorMatrix) pixel(p []uint8) {
	a := float32(p[3])
	var r, g, b float32
	if a > 0 {
		r = float32(p[0]) * 255 / a
		g = float32(p[1]) * 255 / a
		b = float32(p[2]) * 255 / a
	}

	nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
	ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
	nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
	na := clampUnit(m[15]*r+m[16]*g+m[17]*b+m[18]*a+m[19], 255)

	k := na / 255
	p[0] = uint8(clampUnit(nr*k, na) + 0.5)
	p[1] = uint8(clampUnit(ng*k, na) + 0.5)
	p[2] = uint8(clampUnit(nb*k, na) + 0.5)
	p[3] = uint8(na + 0.5)
}

// clampUnit clamps v to [0, hi].
func clampUnit(v, hi float32) float32 {
	return min(max(v, 0), hi)
}
