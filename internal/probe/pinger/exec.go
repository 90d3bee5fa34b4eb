package pinger

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"

	"pathprobe/internal/probe"
	pkgerrors "pathprobe/pkg/errors"
)

// reEchoTime extracts one round-trip sample per reply line. Both separators
// occur in the wild: "time=10.4 ms" and the Windows sub-millisecond form
// "time<1ms".
var reEchoTime = regexp.MustCompile(`time([=<])([\d.]+)\s*ms`)

// ExecStrategy shells out to the OS ping binary and extracts samples from
// its textual report. No privileges required; this is the default.
type ExecStrategy struct {
	// GOOS selects the argument dialect; tests override it.
	GOOS string
}

// NewExecStrategy creates an ExecStrategy for the current platform.
func NewExecStrategy() *ExecStrategy {
	return &ExecStrategy{GOOS: runtime.GOOS}
}

func (s *ExecStrategy) Name() string { return "exec" }

func (s *ExecStrategy) Ping(ctx context.Context, destination string, cfg Config) (probe.PingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", s.args(destination, cfg)...)
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return probe.PingStats{}, &pkgerrors.ProbeError{
			Destination: destination, Op: "ping", Err: pkgerrors.ErrProbeTimeout,
		}
	}
	if err != nil {
		return probe.PingStats{}, &pkgerrors.ProbeError{Destination: destination, Op: "ping", Err: err}
	}

	stats, ok := probe.Reduce(ParseEchoSamples(string(out)), cfg.Count)
	if !ok {
		return probe.PingStats{}, &pkgerrors.ProbeError{
			Destination: destination, Op: "ping", Err: pkgerrors.ErrNoSamples,
		}
	}
	return stats, nil
}

// args builds the platform argument list for a fixed-count probe run.
func (s *ExecStrategy) args(destination string, cfg Config) []string {
	count := strconv.Itoa(cfg.Count)
	if s.GOOS == "windows" {
		// Windows ping has no interval knob; -w is the per-reply timeout in ms.
		return []string{"-n", count, "-w", strconv.Itoa(int(cfg.Timeout.Milliseconds()) / cfg.Count), destination}
	}
	interval := fmt.Sprintf("%.1f", cfg.Interval.Seconds())
	wait := strconv.Itoa(int(cfg.Timeout.Seconds()))
	return []string{"-c", count, "-i", interval, "-W", wait, destination}
}

// ParseEchoSamples extracts every round-trip sample from a ping report.
// The "time<1ms" form is recorded with the same half-millisecond convention
// the traceroute parser uses.
func ParseEchoSamples(out string) []float64 {
	var samples []float64
	for _, m := range reEchoTime.FindAllStringSubmatch(out, -1) {
		if m[1] == "<" {
			samples = append(samples, 0.5)
			continue
		}
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			samples = append(samples, v)
		}
	}
	return samples
}
