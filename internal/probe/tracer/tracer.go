// Package tracer runs the OS path-tracing tool for one destination, parses
// its report, and corrects the final hop with a direct ping measurement.
package tracer

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"pathprobe/internal/probe"
	"pathprobe/internal/probe/parser"
	"pathprobe/internal/probe/pinger"
	pkgerrors "pathprobe/pkg/errors"
)

// Config holds the probe parameters for one trace.
type Config struct {
	MaxHops    int           // TTL ceiling passed to the tool
	HopTimeout time.Duration // per-hop wait passed to the tool
	Timeout    time.Duration // overall wall-clock budget, independent of HopTimeout
	Dialect    parser.Dialect

	// ProbeFunc overrides the external tool invocation; tests inject canned
	// output here. Nil selects the platform command.
	ProbeFunc func(ctx context.Context, destination string) (string, error)
}

// DefaultConfig returns the trace defaults: 30 hops, 1 s per hop, and a
// two-minute ceiling protecting against a hung tool.
func DefaultConfig() Config {
	return Config{
		MaxHops:    30,
		HopTimeout: time.Second,
		Timeout:    2 * time.Minute,
		Dialect:    parser.DialectForOS(runtime.GOOS),
	}
}

// Result is the terminal state of tracing one destination.
type Result struct {
	Destination string
	Outcome     probe.Outcome
	Trace       probe.TraceResult
	// Corrected is true when the final hop's RTT triple was replaced by a
	// direct ping measurement.
	Corrected bool
	Err       error
}

// Tracer orchestrates trace + parse + final-hop correction.
type Tracer struct {
	config  Config
	sampler pinger.Strategy
	pingCfg pinger.Config
}

// New creates a Tracer. sampler may be nil to skip final-hop correction.
func New(cfg Config, sampler pinger.Strategy, pingCfg pinger.Config) *Tracer {
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = 30
	}
	if cfg.HopTimeout <= 0 {
		cfg.HopTimeout = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Tracer{config: cfg, sampler: sampler, pingCfg: pingCfg}
}

// Trace measures one destination. Failures never propagate as errors to the
// batch driver: every path ends in a Result whose Outcome says what happened.
func (t *Tracer) Trace(ctx context.Context, destination string) Result {
	result := Result{Destination: destination}

	raw, err := t.runProbe(ctx, destination)
	if err != nil || raw == "" {
		// Empty output, non-zero exit and timeout all mean "no measurement".
		result.Outcome = probe.OutcomeNoOutput
		if err != nil {
			result.Err = &pkgerrors.ProbeError{Destination: destination, Op: "traceroute", Err: err}
		} else {
			result.Err = &pkgerrors.ProbeError{Destination: destination, Op: "traceroute", Err: pkgerrors.ErrNoOutput}
		}
		return result
	}

	result.Trace = parser.Parse(raw, destination, t.config.Dialect)
	if len(result.Trace.Hops) == 0 {
		result.Outcome = probe.OutcomeNoHops
		result.Err = &pkgerrors.ProbeError{Destination: destination, Op: "traceroute", Err: pkgerrors.ErrNoHops}
		return result
	}

	final := result.Trace.FinalHop()
	if final < 0 {
		result.Outcome = probe.OutcomeNoResponsiveHops
		result.Err = &pkgerrors.ProbeError{Destination: destination, Op: "traceroute", Err: pkgerrors.ErrNoResponsive}
		return result
	}

	// The last traceroute hop often reflects filtered or deprioritized ICMP
	// handling rather than a true end-to-end RTT. Ping the destination
	// itself (assumed, not verified, to be the final responder) and prefer
	// that measurement. Ping failure leaves the parsed values in place.
	if t.sampler != nil {
		if stats, err := t.sampler.Ping(ctx, destination, t.pingCfg); err == nil {
			hop := &result.Trace.Hops[final]
			hop.MinRTT = stats.MinRTT
			hop.MaxRTT = stats.MaxRTT
			hop.AvgRTT = stats.AvgRTT
			result.Corrected = true
		}
	}

	result.Outcome = probe.OutcomeSuccess
	return result
}

// runProbe invokes the external tool with the overall wall-clock budget.
func (t *Tracer) runProbe(ctx context.Context, destination string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	if t.config.ProbeFunc != nil {
		return t.config.ProbeFunc(ctx, destination)
	}

	name, args := t.command(destination)
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", pkgerrors.ErrProbeTimeout
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// command builds the platform invocation matching the configured dialect.
func (t *Tracer) command(destination string) (string, []string) {
	maxHops := strconv.Itoa(t.config.MaxHops)
	if t.config.Dialect == parser.DialectWindows {
		waitMS := strconv.Itoa(int(t.config.HopTimeout.Milliseconds()))
		return "tracert", []string{"-h", maxHops, "-w", waitMS, destination}
	}
	waitS := int(t.config.HopTimeout.Seconds())
	if waitS < 1 {
		waitS = 1
	}
	return "traceroute", []string{"-m", maxHops, "-w", strconv.Itoa(waitS), destination}
}
