package filter

import "math"

// GaussianKernel returns a normalized 1D Gaussian kernel with standard
// deviation sigma. Its length is 2*ceil(3*sigma)+1; sigma <= 0 yields the
// identity kernel.
func GaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*half+1)

	twoSigmaSq := 2 * sigma * sigma
	var sum float64
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}
	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// blur runs kernel over the w×h float plane horizontally then vertically.
// Samples outside the plane count as zero.
func blur(plane []float32, w, h int, kernel []float32) {
	half := len(kernel) / 2
	tmp := make([]float32, len(plane))
	for y := range h {
		for x := range w {
			var sum float32
			for k, kv := range kernel {
				if sx := x + k - half; sx >= 0 && sx < w {
					sum += plane[y*w+sx] * kv
				}
			}
			tmp[y*w+x] = sum
		}
	}
	for y := range h {
		for x := range w {
			var sum float32
			for k, kv := range kernel {
				if sy := y + k - half; sy >= 0 && sy < h {
					sum += tmp[sy*w+x] * kv
				}
			}
			plane[y*w+x] = sum
		}
	}
}
