package config

import (
	"errors"
	"time"
)

// StationConfig points at the station documents served by the service.
type StationConfig struct {
	// Name overrides the station name found in the graph document.
	Name     string `json:"name"`
	Graph    string `json:"graph"`
	Schedule string `json:"schedule"`
}

// PlannerConfig holds the solver parameters.
type PlannerConfig struct {
	// TimeInaccuracy widens every occupation interval on both sides.
	TimeInaccuracy int `json:"time_inaccuracy"`
}

// Validate checks the solver parameters.
func (c PlannerConfig) Validate() error {
	if c.TimeInaccuracy < 0 {
		return errors.New("time_inaccuracy must not be negative")
	}
	return nil
}

// ReplanConfig drives the periodic re-planning loop of the service.
type ReplanConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
	TimeoutSeconds  int `json:"timeout_seconds"`
	// Live switches the loop from stability re-planning to live re-planning
	// fed by train positions.
	Live bool `json:"live"`
}

// SetDefaults applies sane defaults.
func (c *ReplanConfig) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 30
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks the loop timings.
func (c ReplanConfig) Validate() error {
	if c.IntervalSeconds <= 0 {
		return errors.New("interval_seconds must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("timeout_seconds must be positive")
	}
	return nil
}

func (c ReplanConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c ReplanConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
