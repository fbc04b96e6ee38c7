package main

import (
	"errors"
	"time"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker      string
	TopicPrefix string
	Graph       string
	Schedule    string
	Plan        string
	Unit        time.Duration
	Delay       time.Duration
	DropRate    float64
	Verbose     bool
}

// Validate checks the simulator parameters.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return errors.New("broker is required")
	}
	if c.Graph == "" || c.Schedule == "" {
		return errors.New("graph and schedule are required")
	}
	if c.Unit <= 0 {
		return errors.New("unit must be positive")
	}
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.New("drop-rate must be within [0,1]")
	}
	return nil
}
