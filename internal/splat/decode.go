package splat

import (
	"fmt"
	"math"
)

// shC0 is the zeroth-order real spherical harmonic, 1/(2*sqrt(pi)).
const shC0 = 0.28209479177387814

// Fallbacks used when the optional field groups are absent.
const (
	DefaultOpacity = 1.0
	DefaultScale   = 0.01
)

// ColorEncoding identifies how per-point colour is stored.
type ColorEncoding int

const (
	ColorWhite ColorEncoding = iota
	ColorRGB8
	ColorSphericalHarmonic
)

func (c ColorEncoding) String() string {
	switch c {
	case ColorSphericalHarmonic:
		return "sh-dc"
	case ColorRGB8:
		return "rgb8"
	default:
		return "white"
	}
}

// OpacityEncoding identifies how per-point opacity is stored.
type OpacityEncoding int

const (
	OpacityOpaque OpacityEncoding = iota
	OpacityLogit
)

func (o OpacityEncoding) String() string {
	if o == OpacityLogit {
		return "logit"
	}
	return "opaque"
}

// ScaleEncoding identifies how per-point size is stored.
type ScaleEncoding int

const (
	ScaleFixed ScaleEncoding = iota
	ScaleLog
)

func (s ScaleEncoding) String() string {
	if s == ScaleLog {
		return "log3"
	}
	return "fixed"
}

// Field names of the Gaussian splatting PLY layout.
var (
	positionFields = [3]string{"x", "y", "z"}
	shFields       = [3]string{"f_dc_0", "f_dc_1", "f_dc_2"}
	rgbFields      = [3]string{"red", "green", "blue"}
	opacityField   = "opacity"
	scaleFields    = [3]string{"scale_0", "scale_1", "scale_2"}
)

// Layout is the set of encodings found in one input table. It is chosen
// once per file by DetectLayout and then applied to every row.
type Layout struct {
	Color   ColorEncoding
	Opacity OpacityEncoding
	Scale   ScaleEncoding
}

func (l Layout) String() string {
	return fmt.Sprintf("color=%s opacity=%s scale=%s", l.Color, l.Opacity, l.Scale)
}

// DetectLayout inspects which fields src carries. A field group only
// counts as present when all of its fields are; a partial group falls
// through to the next encoding. Missing position axes are an error.
func DetectLayout(src FieldSource) (Layout, error) {
	for _, name := range positionFields {
		if _, ok := src.Column(name); !ok {
			return Layout{}, fmt.Errorf("%w: position axis %q", ErrMissingRequiredField, name)
		}
	}

	var l Layout
	switch {
	case hasAll(src, shFields):
		l.Color = ColorSphericalHarmonic
	case hasAll(src, rgbFields):
		l.Color = ColorRGB8
	default:
		l.Color = ColorWhite
	}
	if _, ok := src.Column(opacityField); ok {
		l.Opacity = OpacityLogit
	}
	if hasAll(src, scaleFields) {
		l.Scale = ScaleLog
	}
	return l, nil
}

func hasAll(src FieldSource, names [3]string) bool {
	for _, name := range names {
		if _, ok := src.Column(name); !ok {
			return false
		}
	}
	return true
}

// columns fetches a three-field group that DetectLayout already verified.
func columns(src FieldSource, names [3]string) [3][]float64 {
	var c [3][]float64
	for i, name := range names {
		c[i], _ = src.Column(name)
	}
	return c
}

// Decode converts every row of src into a Splat, in input order.
// Only the position fields are mandatory; absent colour, opacity and
// scale groups fall back to white, DefaultOpacity and DefaultScale.
func Decode(src FieldSource) ([]Splat, error) {
	layout, err := DetectLayout(src)
	if err != nil {
		return nil, err
	}
	diagf("decoding %d points (%s)", src.Len(), layout)
	return DecodeWithLayout(src, layout), nil
}

// DecodeWithLayout decodes src under a layout already returned by
// DetectLayout for the same source.
func DecodeWithLayout(src FieldSource, layout Layout) []Splat {
	n := src.Len()
	pos := columns(src, positionFields)

	var col [3][]float64
	switch layout.Color {
	case ColorSphericalHarmonic:
		col = columns(src, shFields)
	case ColorRGB8:
		col = columns(src, rgbFields)
	}
	var opacity []float64
	if layout.Opacity == OpacityLogit {
		opacity, _ = src.Column(opacityField)
	}
	var scale [3][]float64
	if layout.Scale == ScaleLog {
		scale = columns(src, scaleFields)
	}

	out := make([]Splat, n)
	for i := 0; i < n; i++ {
		s := Splat{
			X:       pos[0][i],
			Y:       pos[1][i],
			Z:       pos[2][i],
			R:       1,
			G:       1,
			B:       1,
			Opacity: DefaultOpacity,
			Scale:   DefaultScale,
		}
		switch layout.Color {
		case ColorSphericalHarmonic:
			s.R = clamp01(0.5 + col[0][i]*shC0)
			s.G = clamp01(0.5 + col[1][i]*shC0)
			s.B = clamp01(0.5 + col[2][i]*shC0)
		case ColorRGB8:
			s.R = clamp01(col[0][i] / 255.0)
			s.G = clamp01(col[1][i] / 255.0)
			s.B = clamp01(col[2][i] / 255.0)
		}
		if layout.Opacity == OpacityLogit {
			s.Opacity = sigmoid(opacity[i])
		}
		if layout.Scale == ScaleLog {
			s.Scale = (math.Exp(scale[0][i]) + math.Exp(scale[1][i]) + math.Exp(scale[2][i])) / 3
			if math.IsNaN(s.Scale) {
				s.Scale = 0
			}
		}
		out[i] = s
	}
	return out
}

// sigmoid is the logistic function, clamped so a NaN logit maps to 0.
func sigmoid(v float64) float64 {
	return clamp01(1 / (1 + math.Exp(-v)))
}

// Fields lists every input field the decoder may read, so readers can
// skip everything else (such as higher-order SH coefficients).
func Fields() []string {
	out := make([]string, 0, 13)
	for _, g := range [][3]string{positionFields, shFields, rgbFields, scaleFields} {
		out = append(out, g[:]...)
	}
	return append(out, opacityField)
}
