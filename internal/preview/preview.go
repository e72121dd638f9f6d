// Package preview renders quick-look charts of a splat scene: histograms
// of opacity and scale as PNG, and a top-down scatter of the particles as
// an interactive HTML page.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/splat2mc/internal/fsutil"
	"github.com/banshee-data/splat2mc/internal/splat"
)

// ErrNoSplats is returned when there is nothing to chart.
var ErrNoSplats = errors.New("no splats to preview")

// MaxScatterPoints caps the points drawn by TopDown; larger scenes are
// strided.
const MaxScatterPoints = 20000

// histogramBins is the bar count of each histogram.
const histogramBins = 40

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// Histograms writes <name>_opacity.png and <name>_scale.png into dir and
// returns their paths.
func Histograms(fs fsutil.FileSystem, dir, name string, splats []splat.Splat) ([]string, error) {
	if len(splats) == 0 {
		return nil, ErrNoSplats
	}
	opacity := make(plotter.Values, len(splats))
	scale := make(plotter.Values, len(splats))
	for i, s := range splats {
		opacity[i] = s.Opacity
		scale[i] = s.Scale
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for _, h := range []struct {
		suffix, title, xLabel string
		values                plotter.Values
	}{
		{"opacity", "Opacity", "opacity", opacity},
		{"scale", "Scale", "scale (scene units)", scale},
	} {
		p, err := histogram(fmt.Sprintf("%s: %s", name, h.title), h.xLabel, h.values)
		if err != nil {
			return paths, fmt.Errorf("%s histogram: %w", h.suffix, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, h.suffix))
		if err := savePlot(fs, p, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func histogram(title, xLabel string, values plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "splats"

	h, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return nil, err
	}
	p.Add(h)
	return p, nil
}

func savePlot(fs fsutil.FileSystem, p *plot.Plot, path string) error {
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// TopDown renders an HTML scatter of the X/Z plane coloured by opacity.
func TopDown(w io.Writer, name string, splats []splat.Splat) error {
	if len(splats) == 0 {
		return ErrNoSplats
	}
	stride := 1
	if len(splats) > MaxScatterPoints {
		stride = (len(splats) + MaxScatterPoints - 1) / MaxScatterPoints
	}

	pad := 0.0
	data := make([]opts.ScatterData, 0, len(splats)/stride+1)
	for i := 0; i < len(splats); i += stride {
		s := splats[i]
		pad = math.Max(pad, math.Max(math.Abs(s.X), math.Abs(s.Z)))
		data = append(data, opts.ScatterData{Value: []interface{}{s.X, s.Z, s.Opacity}})
	}
	pad = math.Ceil(pad*1.05*100) / 100
	if pad == 0 {
		pad = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "splat2mc preview: " + name, Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: name, Subtitle: fmt.Sprintf("top-down X/Z, points=%d stride=%d", len(data), stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (blocks)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Z (blocks)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        1,
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("splats", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	return scatter.Render(w)
}

// WriteTopDown renders TopDown into path on fs.
func WriteTopDown(fs fsutil.FileSystem, path, name string, splats []splat.Splat) error {
	var buf bytes.Buffer
	if err := TopDown(&buf, name, splats); err != nil {
		return err
	}
	return fs.WriteFile(path, buf.Bytes(), 0644)
}
