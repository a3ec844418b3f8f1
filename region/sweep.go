package region

import (
	"image"
	"slices"
)

type span struct{ x0, x1 int }

// combine evaluates op over every pixel of the plane and returns the
// canonical region of pixels where op is true. The plane is cut into
// horizontal bands at every y edge of either operand and each band is
// resolved as a set of x spans.
func combine(a, b Region, op func(inA, inB bool) bool) Region {
	ys := make([]int, 0, 2*(len(a.rects)+len(b.rects)))
	for _, rc := range a.rects {
		ys = append(ys, rc.Min.Y, rc.Max.Y)
	}
	for _, rc := range b.rects {
		ys = append(ys, rc.Min.Y, rc.Max.Y)
	}
	slices.Sort(ys)
	ys = slices.Compact(ys)

	var (
		out      []image.Rectangle
		prev     []span
		prevBand int // index in out where the previous band starts
		prevY1   int
	)
	for i := 0; i+1 < len(ys); i++ {
		y0, y1 := ys[i], ys[i+1]
		spans := combineSpans(bandSpans(a, y0, y1), bandSpans(b, y0, y1), op)
		if len(spans) == 0 {
			prev = nil
			continue
		}
		if prev != nil && prevY1 == y0 && slices.Equal(prev, spans) {
			for j := prevBand; j < len(out); j++ {
				out[j].Max.Y = y1
			}
			prevY1 = y1
			continue
		}
		prevBand = len(out)
		for _, s := range spans {
			out = append(out, image.Rect(s.x0, y0, s.x1, y1))
		}
		prev = spans
		prevY1 = y1
	}
	return Region{rects: out}
}

// bandSpans returns the x spans of r that fully cover [y0, y1). Because the
// band limits come from every y edge of r, a rectangle either covers the band
// completely or not at all.
func bandSpans(r Region, y0, y1 int) []span {
	var spans []span
	for _, rc := range r.rects {
		if rc.Min.Y > y0 {
			break
		}
		if rc.Max.Y >= y1 {
			spans = append(spans, span{rc.Min.X, rc.Max.X})
		}
	}
	return spans
}

func combineSpans(a, b []span, op func(bool, bool) bool) []span {
	xs := make([]int, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		xs = append(xs, s.x0, s.x1)
	}
	for _, s := range b {
		xs = append(xs, s.x0, s.x1)
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	var out []span
	for i := 0; i+1 < len(xs); i++ {
		x0, x1 := xs[i], xs[i+1]
		if !op(covers(a, x0), covers(b, x0)) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].x1 == x0 {
			out[n-1].x1 = x1
			continue
		}
		out = append(out, span{x0, x1})
	}
	return out
}

func covers(spans []span, x int) bool {
	for _, s := range spans {
		if x >= s.x0 && x < s.x1 {
			return true
		}
	}
	return false
}
