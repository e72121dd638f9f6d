package splat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func opacities(splats []Splat) []float64 {
	out := make([]float64, len(splats))
	for i, s := range splats {
		out[i] = s.Opacity
	}
	return out
}

func TestSelect_WithinBudgetIsIdentity(t *testing.T) {
	in := []Splat{{X: 1, Opacity: 0.2}, {X: 2, Opacity: 0.9}, {X: 3, Opacity: 0.5}}
	for _, policy := range []Policy{PolicyByOpacity, PolicyRandom} {
		for _, n := range []int{3, 10} {
			out, err := Select(in, n, policy, nil)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("%s n=%d changed input (-want +got):\n%s", policy, n, diff)
			}
			if &out[0] != &in[0] {
				t.Errorf("%s n=%d: expected the input slice back", policy, n)
			}
		}
	}
}

func TestSelect_ByOpacity(t *testing.T) {
	in := []Splat{
		{X: 0, Opacity: 0.3},
		{X: 1, Opacity: 0.9},
		{X: 2, Opacity: 0.5},
		{X: 3, Opacity: 0.7},
		{X: 4, Opacity: 0.1},
	}
	out, err := Select(in, 3, PolicyByOpacity, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	want := []Splat{in[1], in[3], in[2]}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Select (-want +got):\n%s", diff)
	}
	if in[0].Opacity != 0.3 || in[4].X != 4 {
		t.Error("input slice was reordered")
	}
}

func TestSelect_ByOpacityTieKeepsInputOrder(t *testing.T) {
	in := []Splat{
		{X: 0, Opacity: 0.4},
		{X: 1, Opacity: 0.8},
		{X: 2, Opacity: 0.4},
		{X: 3, Opacity: 0.8},
		{X: 4, Opacity: 0.4},
	}
	out, err := Select(in, 3, PolicyByOpacity, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	gotX := []float64{out[0].X, out[1].X, out[2].X}
	if diff := cmp.Diff([]float64{1, 3, 0}, gotX); diff != "" {
		t.Errorf("tie order (-want +got):\n%s", diff)
	}
}

func TestSelect_RandomSeeded(t *testing.T) {
	in := make([]Splat, 100)
	for i := range in {
		in[i] = Splat{X: float64(i), Opacity: float64(i) / 100}
	}
	a, err := Select(in, 10, PolicyRandom, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	b, err := Select(in, 10, PolicyRandom, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different subsets:\n%s", diff)
	}
	if len(a) != 10 {
		t.Fatalf("len = %d, want 10", len(a))
	}

	seen := map[float64]bool{}
	for i, s := range a {
		if seen[s.X] {
			t.Errorf("splat %v selected twice", s.X)
		}
		seen[s.X] = true
		if s != in[int(s.X)] {
			t.Errorf("selected splat %+v differs from input", s)
		}
		if i > 0 && a[i-1].X >= s.X {
			t.Errorf("random subset not in input order: %v", opacities(a))
		}
	}
}

func TestSelect_RandomUnseeded(t *testing.T) {
	in := make([]Splat, 20)
	out, err := Select(in, 5, PolicyRandom, nil)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(out) != 5 {
		t.Errorf("len = %d, want 5", len(out))
	}
}

func TestSelect_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := Select([]Splat{{}}, n, PolicyByOpacity, nil); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("max=%d: err = %v, want ErrInvalidParameter", n, err)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := map[string]Policy{"opacity": PolicyByOpacity, "by-opacity": PolicyByOpacity, "": PolicyByOpacity, "random": PolicyRandom}
	for in, want := range tests {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("nearest"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ParsePolicy(nearest) err = %v", err)
	}
}
