// Package convert drives the splat pipeline over files: it loads PLY
// input, writes datapacks and previews, and records each run.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/splat2mc/internal/catalog"
	"github.com/banshee-data/splat2mc/internal/config"
	"github.com/banshee-data/splat2mc/internal/datapack"
	"github.com/banshee-data/splat2mc/internal/fsutil"
	"github.com/banshee-data/splat2mc/internal/ply"
	"github.com/banshee-data/splat2mc/internal/preview"
	"github.com/banshee-data/splat2mc/internal/splat"
	"github.com/banshee-data/splat2mc/internal/timeutil"
	"github.com/banshee-data/splat2mc/internal/version"
)

// PreviewFile is written at the bundle root when previews are enabled.
const PreviewFile = "preview.html"

// ErrDuplicateName is returned for a batch file whose datapack directory
// is already claimed by an earlier file in the same batch.
var ErrDuplicateName = errors.New("datapack name already used in this batch")

// RunRecorder stores run history. *catalog.Catalog implements it.
type RunRecorder interface {
	RecordRun(ctx context.Context, r catalog.Run) error
}

// Converter converts PLY files into datapacks.
type Converter struct {
	FS     fsutil.FileSystem
	Clock  timeutil.Clock
	Config *config.ConvertConfig
	// Catalog, when set, receives a record of every attempted run.
	Catalog RunRecorder
	// ValidatePath is passed to the datapack writer.
	ValidatePath func(path, dir string) error
	// NewID returns run identifiers.
	NewID func() string
}

// New returns a Converter on fs with the real clock and random run IDs.
func New(fs fsutil.FileSystem, cfg *config.ConvertConfig) *Converter {
	if cfg == nil {
		cfg = config.DefaultConvertConfig()
	}
	return &Converter{
		FS:     fs,
		Clock:  timeutil.RealClock{},
		Config: cfg,
		NewID:  func() string { return uuid.New().String() },
	}
}

// Outcome is the result of converting one file.
type Outcome struct {
	Source   string
	Name     string
	RunID    string
	Paths    datapack.Paths
	Preview  string
	Result   splat.Result
	Duration time.Duration
	Err      error
}

// Function returns the in-game command that plays the converted scene.
func (o *Outcome) Function() string {
	return "/function " + datapack.FunctionName(o.Name)
}

// SceneName is the file name of path without directory or extension.
func SceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// load reads the vertex fields the decoder uses from path.
func (c *Converter) load(path string) (*ply.File, error) {
	f, err := c.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pf, err := ply.ReadFields(f, splat.Fields())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// ConvertFile converts the PLY file at path into a datapack under outDir.
// The returned Outcome is non-nil even on error so callers can report
// the run ID.
func (c *Converter) ConvertFile(ctx context.Context, path, outDir string) (*Outcome, error) {
	out := &Outcome{Source: path, Name: SceneName(path), RunID: c.NewID()}
	start := c.Clock.Now()
	out.Err = c.convert(ctx, out, outDir)
	out.Duration = c.Clock.Since(start)

	if out.Err != nil {
		opsf("%s: %v", path, out.Err)
	} else {
		diagf("%s: %d lines in %s (%v)", path, out.Result.Lines, out.Paths.Root, out.Duration)
	}
	c.record(ctx, out, outDir, start)
	return out, out.Err
}

func (c *Converter) convert(ctx context.Context, out *Outcome, outDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	opts, err := c.Config.Options()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	pf, err := c.load(out.Source)
	if err != nil {
		return err
	}
	tracef("%s: header %+v", out.Source, pf.Header.Elements)

	var script bytes.Buffer
	res, err := splat.Run(pf.Vertices, &script, opts)
	out.Result = res
	if err != nil {
		return fmt.Errorf("%s: %w", out.Source, err)
	}
	if res.Empty {
		opsf("%s: %v", out.Source, splat.ErrEmptyInput)
	}

	w := &datapack.Writer{FS: c.FS, ValidatePath: c.ValidatePath}
	out.Paths, err = w.Write(outDir, datapack.Bundle{
		Name:       out.Name,
		PackFormat: c.Config.GetPackFormat(),
		Script:     script.Bytes(),
		Manifest:   c.manifest(out, opts),
	})
	if err != nil {
		return err
	}

	if c.Config.GetPreview() && !res.Empty {
		out.Preview = filepath.Join(out.Paths.Root, PreviewFile)
		if err := preview.WriteTopDown(c.FS, out.Preview, out.Name, res.Scene); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
	}
	return nil
}

func (c *Converter) manifest(out *Outcome, opts splat.Options) *datapack.Manifest {
	return &datapack.Manifest{
		RunID:       out.RunID,
		Generator:   splat.Generator,
		Version:     version.Version,
		Source:      out.Source,
		Layout:      out.Result.Layout.String(),
		GeneratedAt: c.Clock.Now().UTC(),
		Options: datapack.ManifestOptions{
			MaxParticles: opts.MaxParticles,
			TargetSize:   opts.TargetSize,
			MinOpacity:   opts.MinOpacity,
			Coordinates:  opts.Coords.String(),
			Center:       opts.Center,
			Selection:    opts.Policy.String(),
			Seed:         c.Config.Seed,
		},
		Counts: datapack.ManifestCounts{
			Decoded:  out.Result.Decoded,
			Selected: out.Result.Selected,
			Lines:    out.Result.Lines,
			Skipped:  out.Result.Skipped,
		},
	}
}

// record stores the run in the catalog. A catalog failure is logged and
// does not fail the conversion.
func (c *Converter) record(ctx context.Context, out *Outcome, outDir string, start time.Time) {
	if c.Catalog == nil {
		return
	}
	r := catalog.Run{
		ID:           out.RunID,
		Source:       out.Source,
		Name:         out.Name,
		OutputDir:    outDir,
		Layout:       out.Result.Layout.String(),
		Status:       catalog.StatusOK,
		Decoded:      out.Result.Decoded,
		Selected:     out.Result.Selected,
		Lines:        out.Result.Lines,
		Skipped:      out.Result.Skipped,
		MaxParticles: c.Config.GetMaxParticles(),
		TargetSize:   c.Config.GetTargetSize(),
		MinOpacity:   c.Config.GetMinOpacity(),
		StartedAt:    start,
		Duration:     out.Duration,
	}
	if out.Err != nil {
		r.Status, r.Error = catalog.StatusFailed, out.Err.Error()
	}
	if err := c.Catalog.RecordRun(context.WithoutCancel(ctx), r); err != nil {
		opsf("catalog: %v", err)
	}
}

// ConvertAll converts paths concurrently, at most Config.GetWorkers() at
// a time. Outcomes are returned in the order of paths; a failing file is
// reported in its Outcome and does not stop the others. Files whose
// datapack directory matches an earlier file's fail with ErrDuplicateName
// and are not converted. The returned error joins every per-file error.
func (c *Converter) ConvertAll(ctx context.Context, paths []string, outDir string) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(paths))
	owners := make(map[string]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Config.GetWorkers())
	for i, path := range paths {
		dir := datapack.DirName(SceneName(path))
		if first, taken := owners[dir]; taken {
			outcomes[i] = c.reject(ctx, path, outDir,
				fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateName, first, path, dir))
			continue
		}
		owners[dir] = path
		g.Go(func() error {
			outcomes[i], _ = c.ConvertFile(gctx, path, outDir)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	diagf("batch: %d files, %d failed", len(paths), len(errs))
	return outcomes, errors.Join(errs...)
}

// reject records a file that fails before conversion starts.
func (c *Converter) reject(ctx context.Context, path, outDir string, err error) *Outcome {
	out := &Outcome{Source: path, Name: SceneName(path), RunID: c.NewID(), Err: err}
	opsf("%s: %v", path, err)
	c.record(ctx, out, outDir, c.Clock.Now())
	return out
}

// FindPLY returns the .ply files directly inside dir, sorted by name.
func (c *Converter) FindPLY(dir string) ([]string, error) {
	return c.FS.Glob(filepath.Join(dir, "*.ply"))
}

// Inspection is what Inspect learned about a file.
type Inspection struct {
	Header *ply.Header
	Layout splat.Layout
	Splats []splat.Splat
	Stats  splat.Stats
}

// Inspect loads and decodes path without converting it.
func (c *Converter) Inspect(path string) (*Inspection, error) {
	pf, err := c.load(path)
	if err != nil {
		return nil, err
	}
	layout, err := splat.DetectLayout(pf.Vertices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	splats := splat.DecodeWithLayout(pf.Vertices, layout)
	return &Inspection{
		Header: pf.Header,
		Layout: layout,
		Splats: splats,
		Stats:  splat.Inspect(splats),
	}, nil
}
