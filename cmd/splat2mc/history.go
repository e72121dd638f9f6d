package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/banshee-data/splat2mc/internal/catalog"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.catalogPath == "" {
				return errors.New("history needs --catalog")
			}
			cat, err := catalog.Open(a.catalogPath)
			if err != nil {
				return err
			}
			defer cat.Close()
			runs, err := cat.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.printRuns(runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", catalog.DefaultListLimit, "maximum runs to list")
	return cmd
}

func (a *app) printRuns(runs []catalog.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSCENE\tSTATUS\tPARTICLES\tDURATION\tRUN ID")
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status += ": " + r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime),
			r.Name,
			status,
			humanize.Comma(int64(r.Lines)),
			r.Duration.Round(time.Millisecond),
			r.ID,
		)
	}
	return tw.Flush()
}
