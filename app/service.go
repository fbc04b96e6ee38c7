package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/railplan/api/plans"
	"github.com/kilianp07/railplan/config"
	"github.com/kilianp07/railplan/core/events"
	"github.com/kilianp07/railplan/core/graph"
	"github.com/kilianp07/railplan/core/history"
	coremetrics "github.com/kilianp07/railplan/core/metrics"
	"github.com/kilianp07/railplan/core/model"
	"github.com/kilianp07/railplan/core/plan"
	"github.com/kilianp07/railplan/core/planner"
	"github.com/kilianp07/railplan/infra/logger"
	"github.com/kilianp07/railplan/infra/metrics"
	"github.com/kilianp07/railplan/infra/mqtt"
	"github.com/kilianp07/railplan/internal/eventbus"
	"github.com/kilianp07/railplan/pkg/interchange"
)

// PositionSource delivers live train positions of a station.
type PositionSource interface {
	SubscribePositions(station string, h mqtt.PositionHandler) error
}

// Deps are the collaborators of a Service. Publisher and Positions are
// optional.
type Deps struct {
	Schedule  *model.TrainSchedule
	Planner   *planner.Planner
	Store     history.Store
	Publisher mqtt.Publisher
	Positions PositionSource
	Bus       eventbus.EventBus
	Sink      coremetrics.PlanSink
	Log       logger.Logger
}

// Service keeps the work plan of one station up to date: it re-plans
// periodically, stores every new plan and publishes it to the devices.
type Service struct {
	deps     Deps
	replan   config.ReplanConfig
	promAddr string
	api      config.APIConfig
	tracker  *Tracker
	closers  []func() error

	mu      sync.Mutex
	current *plan.StationWorkPlan
	// restored is set while the plan in force comes from history and has
	// no device units yet.
	restored bool
}

// New builds a Service from the configuration: it loads the station
// documents and connects the store, the metrics sinks and MQTT.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	g, err := interchange.LoadGraph(cfg.Station.Graph)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	if cfg.Station.Name != "" {
		g.Name = cfg.Station.Name
	}
	s, err := interchange.LoadSchedule(cfg.Station.Schedule, g)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	store, err := history.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("plan store: %w", err)
	}

	deps := Deps{
		Schedule: s,
		Planner:  planner.New(cfg.Planner.TimeInaccuracy, logger.New("planner"), sink),
		Store:    store,
		Bus:      eventbus.New(),
		Sink:     sink,
		Log:      log,
	}
	closers := []func() error{store.Close}
	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		deps.Publisher = client
		if cfg.Replan.Live {
			deps.Positions = client
		}
		closers = append(closers, func() error { client.Disconnect(); return nil })
	}
	svc := NewWithDeps(deps, cfg.Replan)
	svc.promAddr = cfg.Metrics.PrometheusAddr
	svc.api = cfg.API
	svc.closers = closers
	return svc, nil
}

// NewWithDeps assembles a Service from ready collaborators.
func NewWithDeps(deps Deps, replan config.ReplanConfig) *Service {
	replan.SetDefaults()
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	if deps.Bus == nil {
		deps.Bus = eventbus.New()
	}
	if deps.Sink == nil {
		deps.Sink = coremetrics.NopSink{}
	}
	if deps.Planner == nil {
		deps.Planner = planner.New(0, deps.Log, deps.Sink)
	}
	return &Service{
		deps:    deps,
		replan:  replan,
		tracker: NewTracker(deps.Schedule.Graph().Name, deps.Bus),
	}
}

// Schedule returns the served schedule.
func (s *Service) Schedule() *model.TrainSchedule { return s.deps.Schedule }

// Station returns the name of the served station.
func (s *Service) Station() string { return s.deps.Schedule.Graph().Name }

// Bus returns the event bus carrying plan and position events.
func (s *Service) Bus() eventbus.EventBus { return s.deps.Bus }

// Tracker returns the live position tracker.
func (s *Service) Tracker() *Tracker { return s.tracker }

// Current returns the plan in force, nil before the first plan.
func (s *Service) Current() *plan.StationWorkPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Graph returns the station graph. Callers may block edges or freeze
// switches between two re-planning rounds.
func (s *Service) Graph() *graph.Graph { return s.deps.Schedule.Graph() }

// Run restores the last stored plan, plans once and then re-plans every
// interval until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.deps.Bus, s.deps.Sink)
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.deps.Log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.api.Addr != "" {
		go func() {
			if err := plans.Serve(ctx, s.api.Addr, plans.NewMux(s, s.deps.Store, s.api.Token)); err != nil {
				s.deps.Log.Errorf("api server: %v", err)
			}
		}()
	}
	if s.deps.Positions != nil {
		if err := s.deps.Positions.SubscribePositions(s.Station(), s.tracker.Update); err != nil {
			return fmt.Errorf("positions: %w", err)
		}
	}
	if err := s.restore(ctx); err != nil {
		return err
	}
	if err := s.Step(ctx); err != nil {
		s.deps.Log.Errorf("initial plan: %v", err)
	}

	ticker := time.NewTicker(s.replan.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Step(ctx); err != nil {
				s.deps.Log.Errorf("replan: %v", err)
			}
		}
	}
}

func (s *Service) restore(ctx context.Context) error {
	rec, err := history.Latest(ctx, s.deps.Store, s.Station())
	if errors.Is(err, history.ErrNoRecord) {
		s.deps.Log.Infof("no stored plan for %s", s.Station())
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore plan: %w", err)
	}
	s.mu.Lock()
	s.current = rec.Plan()
	s.restored = true
	s.mu.Unlock()
	s.deps.Log.Infof("restored plan %s from %s", rec.PlanID, rec.Timestamp.Format(time.RFC3339))
	return nil
}

// Step runs one planning round: a cold plan when none is in force, a live
// re-plan when positions are tracked, a stability re-plan otherwise. A
// failed round keeps the current plan and emits ReplanFailed.
func (s *Service) Step(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.replan.Timeout())
	defer cancel()

	s.mu.Lock()
	prev, restored := s.current, s.restored
	s.mu.Unlock()
	sched := s.deps.Schedule
	var (
		wp   *plan.StationWorkPlan
		err  error
		mode plan.Mode
	)
	switch live := s.tracker.Snapshot(sched); {
	case prev == nil:
		mode = plan.ModeCold
		wp, err = s.deps.Planner.CalculateWorkPlan(ctx, sched)
	case s.deps.Positions != nil && len(live) > 0:
		mode = plan.ModeLive
		wp, err = s.deps.Planner.RecalculateLive(ctx, sched, prev, live)
	default:
		mode = plan.ModeStable
		wp, err = s.deps.Planner.RecalculateStationWorkPlan(ctx, sched, prev)
	}
	if err != nil {
		s.deps.Bus.Publish(events.ReplanFailed{Station: s.Station(), Mode: mode, Err: err})
		return err
	}
	if mode == plan.ModeStable && sameAssignments(prev, wp) && !prev.Stale && !restored {
		s.deps.Log.Debugf("plan for %s unchanged", s.Station())
		return nil
	}
	return s.commit(ctx, wp)
}

func (s *Service) commit(ctx context.Context, wp *plan.StationWorkPlan) error {
	if err := s.deps.Store.Append(ctx, history.NewRecord(wp)); err != nil {
		return fmt.Errorf("store plan %s: %w", wp.ID, err)
	}
	s.mu.Lock()
	s.current = wp
	s.restored = false
	s.mu.Unlock()
	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishPlan(wp, s.deps.Schedule); err != nil {
			s.deps.Log.Errorf("publish plan %s: %v", wp.ID, err)
		}
	}
	s.deps.Bus.Publish(events.PlanComputed{Plan: wp})
	return nil
}

func sameAssignments(a, b *plan.StationWorkPlan) bool {
	if a.Len() != b.Len() {
		return false
	}
	for _, id := range a.Trains() {
		x, _ := a.Platform(id)
		y, ok := b.Platform(id)
		if !ok || x != y {
			return false
		}
	}
	return true
}

// Close releases the store and the MQTT connection.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.deps.Bus.Close()
	return errors.Join(errs...)
}
