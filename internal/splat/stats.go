package splat

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the min/max/mean of one attribute.
type Summary struct {
	Min, Max, Mean float64
}

// Stats describes a decoded splat collection. It is derived entirely from
// the splats and carries no other state.
type Stats struct {
	Count   int
	Opacity Summary
	Scale   Summary
	Bounds  Bounds
}

// Inspect computes Stats for splats. Empty input yields the zero Stats.
func Inspect(splats []Splat) Stats {
	if len(splats) == 0 {
		return Stats{}
	}
	opacity := make([]float64, len(splats))
	scale := make([]float64, len(splats))
	for i, s := range splats {
		opacity[i] = s.Opacity
		scale[i] = s.Scale
	}
	b, _ := BoundsOf(splats)
	return Stats{
		Count:   len(splats),
		Opacity: summarize(opacity),
		Scale:   summarize(scale),
		Bounds:  b,
	}
}

func summarize(v []float64) Summary {
	return Summary{
		Min:  floats.Min(v),
		Max:  floats.Max(v),
		Mean: stat.Mean(v, nil),
	}
}
