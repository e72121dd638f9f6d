package splat

// mapTable is a FieldSource backed by named columns.
type mapTable struct {
	n    int
	cols map[string][]float64
}

func newTable(cols map[string][]float64) *mapTable {
	t := &mapTable{cols: cols}
	for _, c := range cols {
		t.n = len(c)
		break
	}
	return t
}

func (t *mapTable) Len() int { return t.n }

func (t *mapTable) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	return c, ok
}

func xyz(x, y, z []float64) map[string][]float64 {
	return map[string][]float64{"x": x, "y": y, "z": z}
}
