package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newBatchCmd(a *app) *cobra.Command {
	f := &convertFlags{}
	cmd := &cobra.Command{
		Use:     "batch <dir>",
		Short:   "Convert every PLY file in a directory",
		Example: "  splat2mc batch ./splats -o ./datapacks -j 8",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, f, args[0])
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "./output", "output directory for datapacks")
	fl.IntVarP(&f.maxParticles, "max-particles", "n", 5000, "maximum number of particles per file")
	fl.IntVarP(&f.workers, "jobs", "j", 4, "files converted in parallel")
	fl.StringVar(&a.configPath, "config", "", "JSON conversion config")
	return cmd
}

// runBatch converts each file independently. Per-file failures are
// reported and counted but do not fail the command.
func (a *app) runBatch(cmd *cobra.Command, f *convertFlags, dir string) error {
	info, err := a.fs.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, closeFn, err := a.newConverter(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	paths, err := c.FindPLY(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintf(a.stdout, "No PLY files found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(a.stdout, "Found %d PLY files\n", len(paths))
	if err := a.fs.MkdirAll(f.output, 0755); err != nil {
		return err
	}

	outcomes, _ := c.ConvertAll(cmd.Context(), paths, f.output)
	failed := 0
	for _, o := range outcomes {
		fmt.Fprintf(a.stdout, "\nProcessing %s...\n", filepath.Base(o.Source))
		if o.Err != nil {
			failed++
			fmt.Fprintf(a.stderr, "  Error: %v\n", o.Err)
			continue
		}
		fmt.Fprintf(a.stdout, "  %d particles -> %s\n", o.Result.Lines, o.Paths.Root)
	}

	fmt.Fprintf(a.stdout, "\n✓ Done! Datapacks in: %s\n", f.output)
	if failed > 0 {
		fmt.Fprintf(a.stdout, "  %d of %d files failed\n", failed, len(paths))
	}
	return nil
}
