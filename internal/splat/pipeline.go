package splat

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
)

// Defaults for Options.
const (
	DefaultMaxParticles = 5000
	DefaultTargetSize   = 10.0
	DefaultMinOpacity   = 0.1
)

// Options are the tunables of a pipeline run.
type Options struct {
	MaxParticles int       // particle budget for Select
	TargetSize   float64   // extent of the largest axis after Normalize
	MinOpacity   float64   // Emit threshold, in [0,1]
	Coords       CoordMode // relative or absolute positions
	Center       bool      // recentre on the bounding box midpoint
	Policy       Policy    // selection policy when over budget
	Rand         *rand.Rand
}

// DefaultOptions returns the options the command line uses when nothing
// is overridden.
func DefaultOptions() Options {
	return Options{
		MaxParticles: DefaultMaxParticles,
		TargetSize:   DefaultTargetSize,
		MinOpacity:   DefaultMinOpacity,
		Coords:       CoordsRelative,
		Center:       true,
		Policy:       PolicyByOpacity,
	}
}

// Validate rejects parameters no stage can work with.
func (o Options) Validate() error {
	var errs []error
	if o.MaxParticles <= 0 {
		errs = append(errs, fmt.Errorf("%w: max particles must be positive, got %d", ErrInvalidParameter, o.MaxParticles))
	}
	if !(o.TargetSize > 0) || math.IsInf(o.TargetSize, 1) {
		errs = append(errs, fmt.Errorf("%w: target size must be positive, got %g", ErrInvalidParameter, o.TargetSize))
	}
	if !(o.MinOpacity >= 0 && o.MinOpacity <= 1) {
		errs = append(errs, fmt.Errorf("%w: min opacity must be in [0,1], got %g", ErrInvalidParameter, o.MinOpacity))
	}
	return errors.Join(errs...)
}

// Result reports what a pipeline run did.
type Result struct {
	Layout   Layout
	Decoded  int  // splats read from the table
	Selected int  // splats handed to Emit
	Lines    int  // particle commands written
	Skipped  int  // selected splats below MinOpacity
	Empty    bool // the table decoded to zero splats
	Stats    Stats
	// Scene holds every decoded splat after Normalize, before selection.
	Scene []Splat
}

// Run decodes src, normalizes, selects and writes the function script
// to w. Parameters are validated before any stage runs. An empty table
// is not an error: the script is written with its header only and
// Result.Empty is set.
func Run(src FieldSource, w io.Writer, opts Options) (Result, error) {
	var res Result
	if err := opts.Validate(); err != nil {
		return res, err
	}

	layout, err := DetectLayout(src)
	if err != nil {
		return res, err
	}
	res.Layout = layout
	splats := DecodeWithLayout(src, layout)
	res.Decoded = len(splats)
	res.Stats = Inspect(splats)
	diagf("decoded %d splats (%s)", res.Decoded, layout)
	if len(splats) == 0 {
		res.Empty = true
		opsf("%v: writing header-only script", ErrEmptyInput)
	}

	splats, err = Normalize(splats, opts.TargetSize, opts.Center)
	if err != nil {
		return res, err
	}
	res.Scene = splats
	splats, err = Select(splats, opts.MaxParticles, opts.Policy, opts.Rand)
	if err != nil {
		return res, err
	}
	res.Selected = len(splats)

	st, err := Emit(w, splats, EmitOptions{MinOpacity: opts.MinOpacity, Coords: opts.Coords})
	res.Lines, res.Skipped = st.Lines, st.Skipped
	if err != nil {
		return res, err
	}
	return res, nil
}
