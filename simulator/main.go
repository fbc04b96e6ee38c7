package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kilianp07/railplan/pkg/interchange"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := interchange.LoadGraph(cfg.Graph)
	if err != nil {
		log.Fatalf("graph: %v", err)
	}
	s, err := interchange.LoadSchedule(cfg.Schedule, g)
	if err != nil {
		log.Fatalf("schedule: %v", err)
	}

	var sensor Sensor = ReliableSensor{Delay: cfg.Delay}
	if cfg.DropRate > 0 {
		sensor = LossySensor{Delay: cfg.Delay, DropRate: cfg.DropRate}
	}
	st := NewSimulatedStation(s, cfg.TopicPrefix, sensor, cfg.Unit)
	if cfg.Plan != "" {
		wp, err := interchange.LoadPlan(cfg.Plan, s)
		if err != nil {
			log.Fatalf("plan file: %v", err)
		}
		if err := st.Follow(wp); err != nil {
			log.Fatalf("plan file: %v", err)
		}
	}
	if err := st.Run(ctx, cfg.Broker); err != nil {
		log.Fatalf("simulator: %v", err)
	}
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.TopicPrefix, "topic-prefix", "railplan", "MQTT topic prefix")
	flag.StringVar(&cfg.Graph, "graph", "", "station graph document")
	flag.StringVar(&cfg.Schedule, "schedule", "", "train schedule document")
	flag.StringVar(&cfg.Plan, "plan", "", "plan to follow until one is published")
	flag.DurationVar(&cfg.Unit, "unit", time.Second, "wall clock duration of one station time unit")
	flag.DurationVar(&cfg.Delay, "delay", 0, "sensor reporting latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "probability of losing an observation")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}
