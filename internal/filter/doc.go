// Package filter provides the pixel filters of the software backend:
// colour matrices for brightness and saturation, and a Gaussian drop
// shadow generator producing the eight tiles of a window shadow.
package filter
