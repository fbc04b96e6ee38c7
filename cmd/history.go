package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railplan/config"
	"github.com/kilianp07/railplan/core/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		q     history.Query
		since time.Duration
	)
	c := &cobra.Command{
		Use:   "history",
		Short: "List stored work plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := history.Open(cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if since > 0 {
				q.Start = time.Now().Add(-since)
			}
			recs, err := store.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tPLAN\tSTATION\tMODE\tTRAINS\tCHANGES")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
					r.Timestamp.Format(time.RFC3339), r.PlanID, r.Station, r.Mode, len(r.Assignments), r.Changes)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&q.Station, "station", "", "only plans of this station")
	c.Flags().StringVar(&q.Mode, "mode", "", "only plans of this mode (cold, stable, live, manual)")
	c.Flags().StringVar(&q.TrainID, "train", "", "only plans assigning this train")
	c.Flags().DurationVar(&since, "since", 0, "only plans newer than this duration")
	return c
}
