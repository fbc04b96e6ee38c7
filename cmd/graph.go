package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railplan/core/paths"
	"github.com/kilianp07/railplan/pkg/interchange"
)

func newGraphCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "graph",
		Short: "Inspect a station graph",
	}
	c.AddCommand(&cobra.Command{
		Use:   "dot <graph>",
		Short: "Render the station as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := interchange.LoadGraph(args[0])
			if err != nil {
				return err
			}
			return interchange.WriteDOT(cmd.OutOrStdout(), g)
		},
	})
	c.AddCommand(&cobra.Command{
		Use:   "check <graph>",
		Short: "Validate a station and list its platforms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := interchange.LoadGraph(args[0])
			if err != nil {
				return err
			}
			pc, err := paths.Compute(g)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "station %s: %d vertices, %d edges\n", g.Name, len(g.Vertices()), len(g.Edges()))
			for _, p := range pc.Platforms() {
				e, _ := g.Edge(p.Edge)
				entries := 0
				for _, in := range g.Inputs() {
					if pc.HasPathEntryToPlatform(in.ID, p) {
						entries++
					}
				}
				fmt.Fprintf(w, "platform %d from %d: length %d, %s, reachable from %d inputs, %d exit paths\n",
					p.Edge, p.From, e.Length, e.Type, entries, len(pc.PathsFromPlatform(p)))
			}
			return nil
		},
	})
	return c
}
