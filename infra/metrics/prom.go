package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/railplan/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	plans     *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	trains    *prometheus.GaugeVec
	moves     *prometheus.CounterVec
	positions *prometheus.CounterVec
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	plans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_plans_total",
		Help: "Total number of planning calls",
	}, []string{"station", "mode", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "station_plan_solve_seconds",
		Help:    "Duration of a planning call",
		Buckets: prometheus.DefBuckets,
	}, []string{"station", "mode"})
	trains := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "station_plan_trains",
		Help: "Number of trains in the last plan",
	}, []string{"station"})
	moves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_plan_reassignments_total",
		Help: "Trains moved to another platform by a re-plan",
	}, []string{"station", "mode"})
	positions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "station_train_positions_total",
		Help: "Live train observations received",
	}, []string{"station"})

	var err error
	if plans, err = register(reg, plans); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if trains, err = register(reg, trains); err != nil {
		return nil, err
	}
	if moves, err = register(reg, moves); err != nil {
		return nil, err
	}
	if positions, err = register(reg, positions); err != nil {
		return nil, err
	}
	return &PromSink{plans: plans, latency: latency, trains: trains, moves: moves, positions: positions}, nil
}

// register reuses an already registered collector of the same shape, so
// several sinks can share the default registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPlan counts the call and observes its duration. Successful calls
// also update the train gauge and the reassignment counter.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.WithLabelValues(ev.Station, ev.Mode, ev.Status).Inc()
	s.latency.WithLabelValues(ev.Station, ev.Mode).Observe(ev.Duration.Seconds())
	if ev.PlanID == "" {
		return nil
	}
	s.trains.WithLabelValues(ev.Station).Set(float64(ev.Trains))
	s.moves.WithLabelValues(ev.Station, ev.Mode).Add(float64(ev.Changes))
	return nil
}

// RecordPosition counts a live observation.
func (s *PromSink) RecordPosition(ev coremetrics.PositionEvent) error {
	s.positions.WithLabelValues(ev.Station).Inc()
	return nil
}
