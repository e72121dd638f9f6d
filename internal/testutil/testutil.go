// Package testutil provides shared test helpers and PLY fixtures.
package testutil

import (
	"bytes"
	"testing"

	"github.com/banshee-data/splat2mc/internal/fsutil"
	"github.com/banshee-data/splat2mc/internal/ply"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// SplatTable builds an n-row table in the Gaussian splatting layout.
// Points lie on a diagonal from (0,0,0) to (n-1, 2(n-1), 3(n-1)), opacity
// logits rise with the row index so later rows are more opaque, and
// every point has log-scale -4 on each axis.
func SplatTable(t testing.TB, n int) *ply.Table {
	t.Helper()
	cols := map[string][]float64{}
	for _, name := range []string{"x", "y", "z", "f_dc_0", "f_dc_1", "f_dc_2", "opacity", "scale_0", "scale_1", "scale_2"} {
		cols[name] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		f := float64(i)
		cols["x"][i], cols["y"][i], cols["z"][i] = f, 2*f, 3*f
		cols["f_dc_0"][i] = 1
		cols["f_dc_1"][i] = 0
		cols["f_dc_2"][i] = -1
		cols["opacity"][i] = f - float64(n)/2
		cols["scale_0"][i], cols["scale_1"][i], cols["scale_2"][i] = -4, -4, -4
	}
	return Table(t, n, cols, "x", "y", "z", "f_dc_0", "f_dc_1", "f_dc_2", "opacity", "scale_0", "scale_1", "scale_2")
}

// Table builds a table from cols, adding columns in the given order.
func Table(t testing.TB, n int, cols map[string][]float64, order ...string) *ply.Table {
	t.Helper()
	tab := ply.NewTable(n)
	for _, name := range order {
		AssertNoError(t, tab.Set(name, cols[name]))
	}
	return tab
}

// PLYBytes encodes tab as a binary little-endian PLY file.
func PLYBytes(t testing.TB, tab *ply.Table) []byte {
	t.Helper()
	var buf bytes.Buffer
	AssertNoError(t, ply.Write(&buf, tab, ply.WriteOptions{Format: ply.FormatBinaryLittleEndian}))
	return buf.Bytes()
}

// WritePLY stores tab as a PLY file at path on fs.
func WritePLY(t testing.TB, fs fsutil.FileSystem, path string, tab *ply.Table) {
	t.Helper()
	AssertNoError(t, fs.WriteFile(path, PLYBytes(t, tab), 0644))
}
