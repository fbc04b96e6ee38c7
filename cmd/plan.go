package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railplan/pkg/interchange"
)

// errPlanMismatch makes validate exit non-zero for a well formed plan that
// cannot be realised.
var errPlanMismatch = errors.New("plan does not match the station")

func newPlanCmd() *cobra.Command {
	var (
		st  stationFlags
		out outputFlags
	)
	c := &cobra.Command{
		Use:   "plan",
		Short: "Compute a work plan from scratch",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.load()
			if err != nil {
				return err
			}
			wp, err := st.planner(cmd).CalculateWorkPlan(cmd.Context(), s)
			if err != nil {
				return err
			}
			return out.write(cmd, wp, s)
		},
	}
	st.register(c)
	out.register(c)
	return c
}

func newReplanCmd() *cobra.Command {
	var (
		st       stationFlags
		out      outputFlags
		previous string
		live     string
	)
	c := &cobra.Command{
		Use:   "replan",
		Short: "Recompute a work plan keeping as many trains as possible on their platform",
		Long: "Recompute a work plan against the current track state. With --live, trains listed in the\n" +
			"positions document are planned from where they were observed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.load()
			if err != nil {
				return err
			}
			prev, err := interchange.LoadPlan(previous, s)
			if err != nil {
				return fmt.Errorf("load previous plan: %w", err)
			}
			pl := st.planner(cmd)
			if live == "" {
				wp, err := pl.RecalculateStationWorkPlan(cmd.Context(), s, prev)
				if err != nil {
					return err
				}
				return out.write(cmd, wp, s)
			}
			positions, err := interchange.LoadLive(live)
			if err != nil {
				return fmt.Errorf("load positions: %w", err)
			}
			wp, err := pl.RecalculateLive(cmd.Context(), s, prev, positions)
			if err != nil {
				return err
			}
			return out.write(cmd, wp, s)
		},
	}
	st.register(c)
	out.register(c)
	c.Flags().StringVarP(&previous, "previous", "p", "", "plan currently in force")
	c.Flags().StringVar(&live, "live", "", "live train positions document")
	_ = c.MarkFlagRequired("previous")
	return c
}

func newValidateCmd() *cobra.Command {
	var (
		st       stationFlags
		planPath string
	)
	c := &cobra.Command{
		Use:   "validate",
		Short: "Check that a work plan is still realisable on the station",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.load()
			if err != nil {
				return err
			}
			wp, err := interchange.LoadPlan(planPath, s)
			if err != nil {
				return fmt.Errorf("load plan: %w", err)
			}
			ok, err := st.planner(cmd).MatchWorkPlanToStation(cmd.Context(), s, wp)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", s.Graph().Name, errPlanMismatch)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plan matches station %s (%d trains)\n", s.Graph().Name, wp.Len())
			return nil
		},
	}
	st.register(c)
	c.Flags().StringVarP(&planPath, "plan", "p", "", "plan document to check")
	_ = c.MarkFlagRequired("plan")
	return c
}
