package scenarios

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/railplan/core/events"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/core/planner"
	"github.com/kilianp07/railplan/infra/logger"
	"github.com/kilianp07/railplan/infra/metrics"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	s, err := sc.Schedule()
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	pub := mqtt.NewMockPublisher()
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	pl := planner.New(sc.Margin, logger.NopLogger{}, sink)
	ctx := context.Background()
	var current *plan.StationWorkPlan
	calls := 0

	for i, st := range sc.Steps {
		if err := st.apply(s.Graph()); err != nil {
			t.Fatalf("step %d: apply: %v", i, err)
		}
		if st.Action == "match" {
			ok, err := pl.MatchWorkPlanToStation(ctx, s, current)
			if err != nil {
				t.Fatalf("step %d: match: %v", i, err)
			}
			if ok != st.Expected.Feasible {
				t.Errorf("step %d: expected match %v, got %v", i, st.Expected.Feasible, ok)
			}
			continue
		}

		wp, err := run(ctx, pl, st, s, current)
		if err == nil || errors.Is(err, planner.ErrInfeasible) {
			calls++
		}
		if (err == nil) != st.Expected.Feasible {
			t.Errorf("step %d (%s): expected feasible %v, got err %v", i, st.Action, st.Expected.Feasible, err)
			continue
		}
		if err != nil {
			bus.Publish(events.ReplanFailed{Station: s.Graph().Name, Mode: modes[st.Action], Err: err})
			continue
		}
		current = wp
		if err := pub.PublishPlan(wp, s); err != nil {
			t.Fatalf("step %d: publish: %v", i, err)
		}
		bus.Publish(events.PlanComputed{Plan: wp})
		checkPlan(t, i, st.Expected, wp)
	}

	if got := pub.Published(); got != sc.Published {
		t.Errorf("scenario %s expected %d published plans, got %d", sc.Name, sc.Published, got)
	}
	if got := countEvents(sub); got != len(sc.Steps)-matches(sc) {
		t.Errorf("scenario %s expected an event per planning call, got %d", sc.Name, got)
	}
	if got := plansCounted(t, reg); got != calls {
		t.Errorf("scenario %s expected %d counted planning calls, got %d", sc.Name, calls, got)
	}
}

var modes = map[string]plan.Mode{"plan": plan.ModeCold, "replan": plan.ModeStable, "live": plan.ModeLive}

func run(ctx context.Context, pl *planner.Planner, st Step, s *model.TrainSchedule, current *plan.StationWorkPlan) (*plan.StationWorkPlan, error) {
	switch st.Action {
	case "replan":
		return pl.RecalculateStationWorkPlan(ctx, s, current)
	case "live":
		live := make(map[string]model.LiveState, len(st.Positions))
		for id, p := range st.Positions {
			live[id] = p.ToModel()
		}
		return pl.RecalculateLive(ctx, s, current, live)
	default:
		return pl.CalculateWorkPlan(ctx, s)
	}
}

func checkPlan(t *testing.T, step int, exp Expected, wp *plan.StationWorkPlan) {
	t.Helper()
	if exp.Changes != nil && wp.Changes != *exp.Changes {
		t.Errorf("step %d: expected %d changes, got %d", step, *exp.Changes, wp.Changes)
	}
	for id, edge := range exp.Platforms {
		a, ok := wp.Platform(id)
		if !ok {
			t.Errorf("step %d: train %s unassigned", step, id)
			continue
		}
		if int(a.Edge) != edge {
			t.Errorf("step %d: train %s expected on edge %d, got %d", step, id, edge, a.Edge)
		}
	}
	if !exp.Distinct {
		return
	}
	seen := make(map[int]string)
	for _, id := range wp.Trains() {
		a, _ := wp.Platform(id)
		if other, ok := seen[int(a.Edge)]; ok {
			t.Errorf("step %d: trains %s and %s share edge %d", step, other, id, a.Edge)
		}
		seen[int(a.Edge)] = id
	}
}

func matches(sc *Scenario) int {
	n := 0
	for _, st := range sc.Steps {
		if st.Action == "match" {
			n++
		}
	}
	return n
}

func countEvents(sub <-chan eventbus.Event) int {
	n := 0
	for {
		select {
		case <-sub:
			n++
		default:
			return n
		}
	}
}

func plansCounted(t *testing.T, reg *prometheus.Registry) int {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != "station_plans_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return int(total)
}
