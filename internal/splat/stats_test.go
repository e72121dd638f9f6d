package splat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspect(t *testing.T) {
	st := Inspect([]Splat{
		{X: -1, Y: 0, Z: 2, Opacity: 0.2, Scale: 0.01},
		{X: 3, Y: 5, Z: 2, Opacity: 0.6, Scale: 0.03},
		{X: 0, Y: -5, Z: 4, Opacity: 1.0, Scale: 0.05},
	})
	assert.Equal(t, 3, st.Count)
	assert.InDelta(t, 0.2, st.Opacity.Min, 1e-12)
	assert.InDelta(t, 1.0, st.Opacity.Max, 1e-12)
	assert.InDelta(t, 0.6, st.Opacity.Mean, 1e-12)
	assert.InDelta(t, 0.01, st.Scale.Min, 1e-12)
	assert.InDelta(t, 0.05, st.Scale.Max, 1e-12)
	assert.InDelta(t, 0.03, st.Scale.Mean, 1e-12)
	assert.Equal(t, [3]float64{-1, -5, 2}, st.Bounds.Min)
	assert.Equal(t, [3]float64{3, 5, 4}, st.Bounds.Max)
}

func TestInspect_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Inspect(nil))
}
