// Package splat holds the conversion core: decoding Gaussian splat
// attributes from a point table, fitting them into a target extent,
// reducing them to a particle budget and rendering particle commands.
package splat

// Splat is a single Gaussian splat reduced to a point-like particle.
// Colour and opacity are in [0,1] and Scale is a non-negative isotropic
// size (the mean of the three per-axis extents).
type Splat struct {
	X, Y, Z float64
	R, G, B float64
	Opacity float64
	Scale   float64
}

// FieldSource is a column-oriented table of per-point numeric fields,
// such as the vertex element of a PLY file.
type FieldSource interface {
	// Len returns the number of rows.
	Len() int
	// Column returns the values of the named field, or false if the
	// field is absent. The returned slice has Len() entries.
	Column(name string) ([]float64, bool)
}

// clamp01 limits v to the closed interval [0,1].
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// clamp limits v to [lo,hi]. NaN and negative zero map to lo.
func clamp(v, lo, hi float64) float64 {
	if v <= lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
