package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/splat2mc/internal/config"
)

// convertFlags are the pipeline flags shared by convert and batch.
type convertFlags struct {
	output       string
	maxParticles int
	size         float64
	minOpacity   float64
	absolute     bool
	noCenter     bool
	random       bool
	seed         int64
	preview      bool
	workers      int
}

// apply copies every flag the user set onto cfg.
func (f *convertFlags) apply(cmd *cobra.Command, cfg *config.ConvertConfig) {
	set := cmd.Flags().Changed
	if set("max-particles") {
		cfg.MaxParticles = &f.maxParticles
	}
	if set("size") {
		cfg.TargetSize = &f.size
	}
	if set("min-opacity") {
		cfg.MinOpacity = &f.minOpacity
	}
	if set("absolute") {
		mode := "relative"
		if f.absolute {
			mode = "absolute"
		}
		cfg.CoordinateMode = &mode
	}
	if set("no-center") {
		center := !f.noCenter
		cfg.Center = &center
	}
	if set("random") {
		sel := "opacity"
		if f.random {
			sel = "random"
		}
		cfg.Selection = &sel
	}
	if set("seed") {
		cfg.Seed = &f.seed
	}
	if set("preview") {
		cfg.Preview = &f.preview
	}
	if set("jobs") {
		cfg.Workers = &f.workers
	}
}

func newConvertCmd(a *app) *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert <ply-file>",
		Short: "Convert a PLY file to a Minecraft datapack",
		Example: "  splat2mc convert scene.ply -o ./datapacks\n" +
			"  splat2mc convert scene.ply -n 20000 -s 30 --random --seed 1",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "./output", "output directory for the datapack")
	fl.IntVarP(&f.maxParticles, "max-particles", "n", 5000, "maximum number of particles")
	fl.Float64VarP(&f.size, "size", "s", 10, "target size in Minecraft blocks")
	fl.Float64Var(&f.minOpacity, "min-opacity", 0.1, "minimum opacity threshold")
	fl.BoolVar(&f.absolute, "absolute", false, "emit absolute world coordinates instead of ~relative")
	fl.BoolVar(&f.noCenter, "no-center", false, "keep the original origin instead of centring the scene")
	fl.BoolVar(&f.random, "random", false, "pick particles at random instead of by opacity")
	fl.Int64Var(&f.seed, "seed", 0, "seed for --random")
	fl.BoolVar(&f.preview, "preview", false, "write preview.html with a top-down scatter")
	fl.StringVar(&a.configPath, "config", "", "JSON conversion config")
	return cmd
}

func (a *app) runConvert(cmd *cobra.Command, f *convertFlags, path string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := a.fs.Stat(path); err != nil {
		return err
	}
	if err := a.fs.MkdirAll(f.output, 0755); err != nil {
		return err
	}

	c, closeFn, err := a.newConverter(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(a.stdout, "Loading %s...\n", path)
	out, err := c.ConvertFile(cmd.Context(), path, f.output)
	if err != nil {
		return err
	}
	if out.Result.Empty {
		fmt.Fprintln(a.stdout, "  No splats found in file; wrote an empty function.")
	}
	fmt.Fprintf(a.stdout, "  Loaded %d splats, kept %d particles (%d below opacity %g)\n",
		out.Result.Decoded, out.Result.Lines, out.Result.Skipped, cfg.GetMinOpacity())
	fmt.Fprintf(a.stdout, "\n✓ Datapack created: %s\n", out.Paths.Root)
	fmt.Fprintln(a.stdout, "  Copy to your world's datapacks/ folder")
	fmt.Fprintf(a.stdout, "  Then: /reload and %s\n", out.Function())
	if out.Preview != "" {
		fmt.Fprintf(a.stdout, "  Preview: %s\n", filepath.Clean(out.Preview))
	}
	return nil
}
