package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/splat2mc/internal/catalog"
	"github.com/banshee-data/splat2mc/internal/config"
	"github.com/banshee-data/splat2mc/internal/convert"
	"github.com/banshee-data/splat2mc/internal/fsutil"
	"github.com/banshee-data/splat2mc/internal/ply"
	"github.com/banshee-data/splat2mc/internal/security"
	"github.com/banshee-data/splat2mc/internal/splat"
	"github.com/banshee-data/splat2mc/internal/version"
)

// app carries what the commands share; tests swap the writers.
type app struct {
	fs     fsutil.FileSystem
	stdout io.Writer
	stderr io.Writer

	configPath  string
	catalogPath string
	verbose     bool
	trace       bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "splat2mc",
		Short:         "Convert 3D Gaussian splats to Minecraft particle datapacks",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setupLogging()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.catalogPath, "catalog", "", "SQLite file recording conversion runs (disabled when empty)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log stage summaries to stderr")
	pf.BoolVar(&a.trace, "trace", false, "log every emitted command to stderr")

	root.AddCommand(
		newConvertCmd(a),
		newInfoCmd(a),
		newBatchCmd(a),
		newHistoryCmd(a),
	)
	return root
}

// execute runs the command line in args and reports a failure on stderr.
func execute(a *app, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return err
}

func (a *app) setupLogging() {
	var diag, trace io.Writer
	if a.verbose || a.trace {
		diag = a.stderr
	}
	if a.trace {
		trace = a.stderr
	}
	splat.SetLogWriters(a.stderr, diag, trace)
	ply.SetLogWriters(a.stderr, diag, trace)
	convert.SetLogWriters(a.stderr, diag, trace)
	catalog.SetLogWriter(diag)
}

// loadConfig reads --config when given, otherwise the built-in defaults.
func (a *app) loadConfig() (*config.ConvertConfig, error) {
	if a.configPath == "" {
		return config.DefaultConvertConfig(), nil
	}
	return config.LoadConvertConfig(a.configPath)
}

// newConverter builds a Converter for cfg with the catalog attached when
// --catalog is set. The returned close func must be called when done.
func (a *app) newConverter(cfg *config.ConvertConfig) (*convert.Converter, func(), error) {
	c := convert.New(a.fs, cfg)
	if _, ok := a.fs.(fsutil.OSFileSystem); ok {
		c.ValidatePath = security.ValidatePathWithinDirectory
	}
	if a.catalogPath == "" {
		return c, func() {}, nil
	}
	cat, err := catalog.Open(a.catalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	c.Catalog = cat
	return c, func() { cat.Close() }, nil
}
