package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/banshee-data/splat2mc/internal/convert"
	"github.com/banshee-data/splat2mc/internal/preview"
	"github.com/banshee-data/splat2mc/internal/security"
)

func newInfoCmd(a *app) *cobra.Command {
	var plotsDir string
	cmd := &cobra.Command{
		Use:     "info <ply-file>",
		Short:   "Show statistics about a PLY file",
		Example: "  splat2mc info scene.ply --plots ./plots",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInfo(args[0], plotsDir)
		},
	}
	cmd.Flags().StringVar(&plotsDir, "plots", "", "write opacity and scale histograms (PNG) to this directory")
	return cmd
}

func (a *app) runInfo(path, plotsDir string) error {
	c := convert.New(a.fs, nil)
	in, err := c.Inspect(path)
	if err != nil {
		return err
	}
	if len(in.Splats) == 0 {
		fmt.Fprintln(a.stdout, "No splats found in file.")
		return nil
	}

	st := in.Stats
	w := a.stdout
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Format: %s %s\n", in.Header.Format, in.Header.Version)
	fmt.Fprintf(w, "Splats: %s\n", humanize.Comma(int64(st.Count)))
	fmt.Fprintf(w, "Encoding: %s\n", in.Layout)
	fmt.Fprintf(w, "Opacity: min=%.3f, max=%.3f, avg=%.3f\n", st.Opacity.Min, st.Opacity.Max, st.Opacity.Mean)
	fmt.Fprintf(w, "Scale: min=%.6f, max=%.6f, avg=%.6f\n", st.Scale.Min, st.Scale.Max, st.Scale.Mean)
	for i, axis := range []string{"X", "Y", "Z"} {
		fmt.Fprintf(w, "Bounds %s: [%.3f, %.3f]\n", axis, st.Bounds.Min[i], st.Bounds.Max[i])
	}

	if plotsDir != "" {
		paths, err := preview.Histograms(a.fs, plotsDir, security.DatapackName(convert.SceneName(path)), in.Splats)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(w, "Plot: %s\n", p)
		}
	}
	return nil
}
