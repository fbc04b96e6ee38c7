package planner

import (
	"context"
	"fmt"

	"github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
)

// CalculateWorkPlan computes a plan from scratch. Any conflict-free
// assignment is accepted.
func (pl *Planner) CalculateWorkPlan(ctx context.Context, s *model.TrainSchedule) (*plan.StationWorkPlan, error) {
	return pl.run(ctx, plan.ModeCold, s, nil, nil)
}

// RecalculateStationWorkPlan computes a plan for the current schedule and
// graph state that moves as few trains as possible away from their platform
// in prev.
func (pl *Planner) RecalculateStationWorkPlan(ctx context.Context, s *model.TrainSchedule, prev *plan.StationWorkPlan) (*plan.StationWorkPlan, error) {
	return pl.run(ctx, plan.ModeStable, s, prev, nil)
}

// RecalculateLive is RecalculateStationWorkPlan for trains already moving
// through the station. Trains that passed their platform keep it and only
// claim their way out; approaching trains are routed from their live
// position, arriving at the observation time.
func (pl *Planner) RecalculateLive(ctx context.Context, s *model.TrainSchedule, prev *plan.StationWorkPlan, live map[string]model.LiveState) (*plan.StationWorkPlan, error) {
	return pl.run(ctx, plan.ModeLive, s, prev, live)
}

func (pl *Planner) run(ctx context.Context, mode plan.Mode, s *model.TrainSchedule, prev *plan.StationWorkPlan, live map[string]model.LiveState) (*plan.StationWorkPlan, error) {
	start := pl.now()
	pr, err := newProblem(s.Graph())
	if err != nil {
		return nil, err
	}
	for id := range live {
		if _, ok := s.Get(id); !ok {
			return nil, fmt.Errorf("live state for %s: %w", id, ErrUnknownTrain)
		}
	}
	for _, e := range s.Entries() {
		sl, err := pl.slotFor(pr, e, prev, live)
		if err != nil {
			return nil, err
		}
		if len(sl.cells) == 0 {
			return nil, fmt.Errorf("train %s (%s, length %d): %w", e.Train.ID, e.Train.Type, e.Train.Length, ErrUnreachableTrain)
		}
		pr.slots = append(pr.slots, sl)
	}
	if prev != nil {
		pl.resolvePrevious(pr, prev)
	}
	pl.log.Debugw("planning problem", map[string]any{
		"mode":      string(mode),
		"station":   pr.g.Name,
		"trains":    len(pr.slots),
		"platforms": len(pr.platforms),
		"cells":     countCells(pr),
	})

	m := newModel()
	enc := encode(m, pr)
	if prev != nil {
		enc.stabilize(pr)
	}
	st, err := m.Solve(ctx)
	ev := metrics.PlanEvent{
		Station:   pr.g.Name,
		Mode:      string(mode),
		Status:    st.String(),
		Trains:    len(pr.slots),
		Platforms: len(pr.platforms),
		Vars:      m.Stats().Vars,
		Clauses:   m.Stats().Clauses,
		Time:      start,
	}
	if err != nil {
		pl.record(ev)
		return nil, fmt.Errorf("solve: %w", err)
	}
	if !st.Solved() {
		pl.record(ev)
		return nil, fmt.Errorf("%w: solver status %s", ErrInfeasible, st)
	}
	wp, err := pl.reconstruct(pr, enc, mode, prev)
	if err != nil {
		pl.record(ev)
		return nil, err
	}
	ev.PlanID = wp.ID
	ev.Changes = wp.Changes
	pl.record(ev)
	pl.recordAssignments(wp, prev)
	pl.log.Infof("%s plan %s for %s: %d trains on %d platforms, %d changes, status %s", mode, wp.ID, pr.g.Name, wp.Len(), len(pr.platforms), wp.Changes, st)
	return wp, nil
}

func (pl *Planner) slotFor(pr *problem, e model.Entry, prev *plan.StationWorkPlan, live map[string]model.LiveState) (*slot, error) {
	ls, ok := live[e.Train.ID]
	if !ok {
		return pl.scheduled(pr, e), nil
	}
	if !ls.PassedPlatform {
		return pl.approaching(pr, e, ls)
	}
	if prev == nil {
		return nil, fmt.Errorf("train %s passed its platform without a previous plan: %w", e.Train.ID, ErrUnassignedTrain)
	}
	a, ok := prev.Platform(e.Train.ID)
	if !ok {
		return nil, fmt.Errorf("train %s passed its platform: %w", e.Train.ID, ErrUnassignedTrain)
	}
	return pl.departed(pr, e, ls, a)
}

// resolvePrevious finds the platform index of every train in prev: the same
// directed platform when it is still feasible, otherwise a feasible cell on
// the same edge. Trains whose old platform left the feasible space are not
// pinned.
func (pl *Planner) resolvePrevious(pr *problem, prev *plan.StationWorkPlan) {
	for _, s := range pr.slots {
		a, ok := prev.Platform(s.train.ID)
		if !ok {
			continue
		}
		if p, err := pr.directed(a); err == nil {
			if i, ok := pr.index[p]; ok && s.cell(i) != nil {
				s.prev = i
				continue
			}
		}
		for _, c := range s.cells {
			if pr.platforms[c.platform].Edge == a.Edge {
				s.prev = c.platform
				break
			}
		}
		if s.prev < 0 {
			pl.log.Debugf("train %s: previous platform %d no longer feasible", s.train.ID, a.Edge)
		}
	}
}

// MatchWorkPlanToStation reports whether wp is still realisable on the
// station of s: every train must have an assigned platform that fits it, and
// the assignment pinned in the boolean model must be feasible. A missing or
// unfit platform is an error; an unreachable platform or conflicting
// assignment yields false.
func (pl *Planner) MatchWorkPlanToStation(ctx context.Context, s *model.TrainSchedule, wp *plan.StationWorkPlan) (bool, error) {
	pr, err := newProblem(s.Graph())
	if err != nil {
		return false, err
	}
	feasible := true
	for _, e := range s.Entries() {
		a, ok := wp.Platform(e.Train.ID)
		if !ok {
			return false, fmt.Errorf("train %s: %w", e.Train.ID, ErrUnassignedTrain)
		}
		p, err := pr.directed(a)
		if err != nil {
			return false, fmt.Errorf("train %s: %w", e.Train.ID, err)
		}
		edge, _ := pr.g.Edge(p.Edge)
		if !e.Train.Fits(edge) {
			return false, fmt.Errorf("train %s (%s, length %d) on edge %d (%s, length %d): %w",
				e.Train.ID, e.Train.Type, e.Train.Length, edge.ID, edge.Type, edge.Length, ErrIncompatiblePlatform)
		}
		sl := pl.scheduled(pr, e)
		if i, ok := pr.index[p]; ok && sl.cell(i) != nil {
			sl.target = i
		} else {
			pl.log.Debugf("train %s: platform %d from %d has no feasible route", e.Train.ID, p.Edge, p.From)
			feasible = false
		}
		pr.slots = append(pr.slots, sl)
	}
	if !feasible {
		return false, nil
	}
	m := newModel()
	enc := encode(m, pr)
	enc.pin(pr)
	st, err := m.Solve(ctx)
	if err != nil {
		return false, fmt.Errorf("solve: %w", err)
	}
	return st.Solved(), nil
}

func countCells(pr *problem) int {
	n := 0
	for _, s := range pr.slots {
		n += len(s.cells)
	}
	return n
}

func (pl *Planner) record(ev metrics.PlanEvent) {
	ev.Duration = pl.now().Sub(ev.Time)
	if err := pl.sink.RecordPlan(ev); err != nil {
		pl.log.Errorf("metrics error: %v", err)
	}
}

func (pl *Planner) recordAssignments(wp *plan.StationWorkPlan, prev *plan.StationWorkPlan) {
	rec, ok := pl.sink.(metrics.AssignmentRecorder)
	if !ok {
		return
	}
	evs := make([]metrics.AssignmentEvent, 0, wp.Len())
	for _, id := range wp.Trains() {
		a, _ := wp.Platform(id)
		changed := false
		if prev != nil {
			if old, ok := prev.Platform(id); ok {
				changed = old.Edge != a.Edge
			}
		}
		evs = append(evs, metrics.AssignmentEvent{
			PlanID:  wp.ID,
			Station: wp.Station,
			TrainID: id,
			EdgeID:  int(a.Edge),
			Changed: changed,
			Time:    wp.CreatedAt,
		})
	}
	if err := rec.RecordAssignments(evs); err != nil {
		pl.log.Errorf("assignment metrics error: %v", err)
	}
}
