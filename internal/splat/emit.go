package splat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Generator is the tag written on the first header line.
const Generator = "splat2mc"

// Particle size limits of the dust particle, and the factor mapping a
// normalized splat scale onto them.
const (
	particleScaleFactor = 50.0
	minParticleScale    = 0.1
	maxParticleScale    = 4.0
)

// CoordMode selects how particle positions are written.
type CoordMode int

const (
	// CoordsRelative writes ~x ~y ~z, offsets from the executing entity.
	CoordsRelative CoordMode = iota
	// CoordsAbsolute writes world coordinates.
	CoordsAbsolute
)

func (m CoordMode) String() string {
	if m == CoordsAbsolute {
		return "absolute"
	}
	return "relative"
}

// ParseCoordMode maps "relative" and "absolute" to a CoordMode.
func ParseCoordMode(s string) (CoordMode, error) {
	switch s {
	case "relative", "":
		return CoordsRelative, nil
	case "absolute":
		return CoordsAbsolute, nil
	}
	return 0, fmt.Errorf("%w: unknown coordinate mode %q", ErrInvalidParameter, s)
}

// EmitOptions controls command rendering.
type EmitOptions struct {
	// MinOpacity drops splats whose opacity is strictly below it.
	MinOpacity float64
	Coords     CoordMode
}

// EmitStats summarises one Emit call.
type EmitStats struct {
	Lines   int // particle commands written
	Skipped int // splats below MinOpacity
}

// Emit writes the function script for splats to w: a two-line header,
// a blank line, then one particle command per splat that passes the
// opacity threshold, in input order. Lines are separated by '\n' with no
// trailing newline.
func Emit(w io.Writer, splats []Splat, opts EmitOptions) (EmitStats, error) {
	var st EmitStats
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Generated by %s\n# %d Gaussian splats\n", Generator, len(splats))

	buf := make([]byte, 0, 128)
	for _, s := range splats {
		if s.Opacity < opts.MinOpacity {
			st.Skipped++
			continue
		}
		buf = append(buf[:0], '\n')
		buf = AppendCommand(buf, s, opts.Coords)
		if _, err := bw.Write(buf); err != nil {
			return st, fmt.Errorf("write particle command: %w", err)
		}
		st.Lines++
		tracef("emit %s", buf[1:])
	}
	if err := bw.Flush(); err != nil {
		return st, fmt.Errorf("flush function script: %w", err)
	}
	diagf("emit: %d lines, %d below opacity %g", st.Lines, st.Skipped, opts.MinOpacity)
	return st, nil
}

// RenderScale maps a splat scale to the particle size: multiply, then
// clamp to the supported range.
func RenderScale(scale float64) float64 {
	return clamp(scale*particleScaleFactor, minParticleScale, maxParticleScale)
}

// AppendCommand appends the particle command for s to dst, without a
// line terminator.
func AppendCommand(dst []byte, s Splat, coords CoordMode) []byte {
	dst = append(dst, "particle dust{color:["...)
	dst = strconv.AppendFloat(dst, clamp01(s.R), 'f', 3, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, clamp01(s.G), 'f', 3, 64)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, clamp01(s.B), 'f', 3, 64)
	dst = append(dst, "],scale:"...)
	dst = strconv.AppendFloat(dst, RenderScale(s.Scale), 'f', 2, 64)
	dst = append(dst, '}')
	for _, v := range [3]float64{s.X, s.Y, s.Z} {
		dst = append(dst, ' ')
		if coords == CoordsRelative {
			dst = append(dst, '~')
		}
		dst = strconv.AppendFloat(dst, v, 'f', 3, 64)
	}
	return append(dst, " 0 0 0 0 1 force"...)
}
