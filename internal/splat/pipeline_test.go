package splat

import (
	"bytes"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logit(p float64) float64 { return math.Log(p / (1 - p)) }

func TestRun_EndToEnd(t *testing.T) {
	cols := xyz([]float64{0, 1}, []float64{0, 1}, []float64{0, 1})
	cols["opacity"] = []float64{logit(0.9), logit(0.05)}

	var buf bytes.Buffer
	res, err := Run(newTable(cols), &buf, DefaultOptions())
	require.NoError(t, err)

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 4, "three header lines plus one particle command")
	assert.Equal(t, "# Generated by splat2mc", lines[0])
	assert.Equal(t, "# 2 Gaussian splats", lines[1])
	assert.Equal(t, "", lines[2])
	assert.Equal(t, "particle dust{color:[1.000,1.000,1.000],scale:4.00} ~-5.000 ~-5.000 ~-5.000 0 0 0 0 1 force", lines[3])

	assert.Equal(t, 2, res.Decoded)
	assert.Equal(t, 2, res.Selected)
	assert.Equal(t, 1, res.Lines)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.Empty)
	assert.Equal(t, Layout{Color: ColorWhite, Opacity: OpacityLogit, Scale: ScaleFixed}, res.Layout)
}

func TestRun_Downsamples(t *testing.T) {
	n := 50
	x := make([]float64, n)
	op := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		op[i] = logit(0.5 + float64(i)/200)
	}
	cols := xyz(x, make([]float64, n), make([]float64, n))
	cols["opacity"] = op

	opts := DefaultOptions()
	opts.MaxParticles = 10
	opts.Policy = PolicyRandom
	opts.Rand = rand.New(rand.NewSource(7))

	var buf bytes.Buffer
	res, err := Run(newTable(cols), &buf, opts)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Decoded)
	assert.Equal(t, 10, res.Selected)
	require.Len(t, res.Scene, 50, "scene keeps every splat before selection")
	assert.InDelta(t, -5.0, res.Scene[0].X, 1e-9)
	assert.InDelta(t, 5.0, res.Scene[49].X, 1e-9)
	assert.Equal(t, 10, res.Lines)
	assert.Equal(t, 50, res.Stats.Count)
}

func TestRun_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	res, err := Run(newTable(xyz(nil, nil, nil)), &buf, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.Equal(t, "# Generated by splat2mc\n# 0 Gaussian splats\n", buf.String())
}

func TestRun_MissingPositionWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(newTable(map[string][]float64{"x": {1}, "y": {1}}), &buf, DefaultOptions())
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.Zero(t, buf.Len())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		ok     bool
	}{
		{"defaults", func(*Options) {}, true},
		{"zero max", func(o *Options) { o.MaxParticles = 0 }, false},
		{"negative extent", func(o *Options) { o.TargetSize = -1 }, false},
		{"nan extent", func(o *Options) { o.TargetSize = math.NaN() }, false},
		{"threshold above one", func(o *Options) { o.MinOpacity = 1.01 }, false},
		{"threshold below zero", func(o *Options) { o.MinOpacity = -0.1 }, false},
		{"threshold bounds", func(o *Options) { o.MinOpacity = 1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidParameter), "err = %v", err)
			}
		})
	}
}

func TestRun_InvalidParameterRejectedFirst(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxParticles = -5
	var buf bytes.Buffer
	// The table is missing positions too; parameter validation wins.
	_, err := Run(newTable(map[string][]float64{}), &buf, opts)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Zero(t, buf.Len())
}
