package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/core/planner"
	"github.com/kilianp07/railplan/infra/logger"
	"github.com/kilianp07/railplan/pkg/export"
	"github.com/kilianp07/railplan/pkg/interchange"
)

// stationFlags locate the station documents and describe the track state
// to apply before planning.
type stationFlags struct {
	graph    string
	schedule string
	margin   int

	blockEdges    []int
	blockVertices []int
	freeze        []int
	hide          []int
}

func (f *stationFlags) register(c *cobra.Command) {
	fl := c.Flags()
	fl.StringVarP(&f.graph, "graph", "g", "", "station graph document (.json, .yaml)")
	fl.StringVarP(&f.schedule, "schedule", "s", "", "train schedule document (.json, .yaml)")
	fl.IntVarP(&f.margin, "margin", "m", 0, "time inaccuracy added around every occupation")
	fl.IntSliceVar(&f.blockEdges, "block-edge", nil, "edge ids to block")
	fl.IntSliceVar(&f.blockVertices, "block-vertex", nil, "vertex ids to block")
	fl.IntSliceVar(&f.freeze, "freeze-switch", nil, "switch ids to freeze on their current status")
	fl.IntSliceVar(&f.hide, "hide-vertex", nil, "vertex ids whose connections are hidden")
	_ = c.MarkFlagRequired("graph")
	_ = c.MarkFlagRequired("schedule")
}

func (f *stationFlags) load() (*model.TrainSchedule, error) {
	g, err := interchange.LoadGraph(f.graph)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	if err := f.apply(g); err != nil {
		return nil, err
	}
	s, err := interchange.LoadSchedule(f.schedule, g)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	return s, nil
}

func (f *stationFlags) apply(g *graph.Graph) error {
	for _, id := range f.blockEdges {
		if err := g.BlockEdge(graph.EdgeID(id)); err != nil {
			return err
		}
	}
	for _, id := range f.blockVertices {
		if err := g.BlockVertex(graph.VertexID(id)); err != nil {
			return err
		}
	}
	for _, id := range f.freeze {
		if err := g.FreezeSwitch(graph.VertexID(id)); err != nil {
			return err
		}
	}
	for _, id := range f.hide {
		if err := g.SetHidden(graph.VertexID(id), true); err != nil {
			return err
		}
	}
	return nil
}

func (f *stationFlags) planner(c *cobra.Command) *planner.Planner {
	return planner.New(f.margin, logger.NewWriterLogger(c.ErrOrStderr(), "planner"), nil)
}

// outputFlags select where a computed plan goes.
type outputFlags struct {
	out   string
	csv   string
	chart string
}

func (o *outputFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&o.out, "out", "o", "", "write the plan document to this file instead of stdout")
	c.Flags().StringVar(&o.csv, "csv", "", "also write the device command timeline as CSV")
	c.Flags().StringVar(&o.chart, "chart", "", "also write the platform occupancy chart as HTML")
}

func (o *outputFlags) write(c *cobra.Command, wp *plan.StationWorkPlan, s *model.TrainSchedule) error {
	if o.out == "" {
		if err := export.WriteJSON(c.OutOrStdout(), wp, s); err != nil {
			return err
		}
	} else if err := interchange.SavePlan(o.out, wp, s); err != nil {
		return err
	}
	if o.csv != "" {
		if err := writeFile(o.csv, func(w io.Writer) error { return export.WriteCSV(w, wp) }); err != nil {
			return err
		}
	}
	if o.chart != "" {
		return writeFile(o.chart, func(w io.Writer) error { return export.WriteChartHTML(w, wp, s) })
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
