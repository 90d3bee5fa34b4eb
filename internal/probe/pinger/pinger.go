// Package pinger measures round-trip time to a single destination with a
// fixed number of echo probes and reduces the samples to min/avg/max.
package pinger

import (
	"context"
	"fmt"
	"time"

	"pathprobe/internal/probe"
)

// Config holds the probe parameters for one sampling run.
type Config struct {
	Count    int           // echo probes to send
	Interval time.Duration // delay between probes
	Timeout  time.Duration // overall wall-clock budget
}

// DefaultConfig returns the sampler defaults used for final-hop correction.
func DefaultConfig() Config {
	return Config{
		Count:    10,
		Interval: 200 * time.Millisecond,
		Timeout:  30 * time.Second,
	}
}

// Strategy defines how echo probes are performed against one destination.
type Strategy interface {
	// Name returns the strategy identifier ("exec" or "icmp").
	Name() string
	// Ping sends cfg.Count probes and returns the reduced statistics.
	// It never retries; any failure (tool missing, timeout, zero samples)
	// surfaces as an error.
	Ping(ctx context.Context, destination string, cfg Config) (probe.PingStats, error)
}

// NewStrategy creates a Strategy by name. Valid names: "exec", "icmp".
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "exec", "":
		return NewExecStrategy(), nil
	case "icmp":
		return &ICMPStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown ping strategy: %s (available: exec, icmp)", name)
	}
}
