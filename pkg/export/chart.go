package export

import (
	"fmt"
	"io"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
)

// WriteChartHTML renders the platform occupancy of wp as an HTML bar chart:
// one group per train, one series per platform, the bar being the time the
// train is scheduled in the station.
func WriteChartHTML(w io.Writer, wp *plan.StationWorkPlan, s *model.TrainSchedule) error {
	ids := wp.Trains()
	var platforms []graph.EdgeID
	for _, id := range ids {
		a, _ := wp.Platform(id)
		if !slices.Contains(platforms, a.Edge) {
			platforms = append(platforms, a.Edge)
		}
	}
	slices.Sort(platforms)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Platform occupancy",
			Subtitle: fmt.Sprintf("%s, plan %s (%s)", wp.Station, wp.ID, wp.Mode),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Train"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Time in station"}),
	)
	bar.SetXAxis(ids)
	for _, edge := range platforms {
		data := make([]opts.BarData, len(ids))
		for i, id := range ids {
			data[i] = opts.BarData{Value: "-"}
			a, _ := wp.Platform(id)
			if a.Edge != edge || s == nil {
				continue
			}
			if e, ok := s.Get(id); ok {
				data[i] = opts.BarData{Value: e.Schedule.Departure - e.Schedule.Arrival}
			}
		}
		bar.AddSeries(fmt.Sprintf("platform %d", edge), data)
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
