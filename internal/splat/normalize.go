package splat

import (
	"fmt"
	"math"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max [3]float64
}

// BoundsOf returns the bounding box of the splat positions. The second
// result is false for an empty slice.
func BoundsOf(splats []Splat) (Bounds, bool) {
	if len(splats) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		Min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, s := range splats {
		p := [3]float64{s.X, s.Y, s.Z}
		for axis, v := range p {
			b.Min[axis] = math.Min(b.Min[axis], v)
			b.Max[axis] = math.Max(b.Max[axis], v)
		}
	}
	return b, true
}

// Ranges returns max-min per axis, with 1 substituted for a zero range so
// a single point or a planar cloud never divides by zero.
func (b Bounds) Ranges() [3]float64 {
	var r [3]float64
	for axis := range r {
		r[axis] = b.Max[axis] - b.Min[axis]
		if r[axis] == 0 {
			r[axis] = 1
		}
	}
	return r
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float64 {
	var c [3]float64
	for axis := range c {
		c[axis] = (b.Min[axis] + b.Max[axis]) / 2
	}
	return c
}

// Normalize rescales positions so the largest axis of the bounding box
// spans targetExtent. With center set, the box midpoint moves to the
// origin. Scale is multiplied by the same factor; colour and opacity are
// copied unchanged. Empty input is returned as is.
func Normalize(splats []Splat, targetExtent float64, center bool) ([]Splat, error) {
	if !(targetExtent > 0) || math.IsInf(targetExtent, 1) {
		return nil, fmt.Errorf("%w: target extent must be positive, got %g", ErrInvalidParameter, targetExtent)
	}
	b, ok := BoundsOf(splats)
	if !ok {
		return splats, nil
	}

	r := b.Ranges()
	factor := targetExtent / math.Max(r[0], math.Max(r[1], r[2]))
	var c [3]float64
	if center {
		c = b.Center()
	}
	diagf("normalize: extent=%g factor=%g center=%v", targetExtent, factor, c)

	out := make([]Splat, len(splats))
	for i, s := range splats {
		out[i] = Splat{
			X:       (s.X - c[0]) * factor,
			Y:       (s.Y - c[1]) * factor,
			Z:       (s.Z - c[2]) * factor,
			R:       s.R,
			G:       s.G,
			B:       s.B,
			Opacity: s.Opacity,
			Scale:   s.Scale * factor,
		}
	}
	return out, nil
}
