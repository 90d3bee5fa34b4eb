package tracer

import (
	"context"
	"errors"
	"math"
	"testing"

	"pathprobe/internal/probe"
	"pathprobe/internal/probe/parser"
	"pathprobe/internal/probe/pinger"
	pkgerrors "pathprobe/pkg/errors"
)

type stubSampler struct {
	stats probe.PingStats
	err   error
}

func (s stubSampler) Name() string { return "stub" }

func (s stubSampler) Ping(ctx context.Context, destination string, cfg pinger.Config) (probe.PingStats, error) {
	return s.stats, s.err
}

const cannedTrace = "1  10.0.0.1 (10.0.0.1)  1.1 ms  1.3 ms  1.2 ms\n" +
	"2  * * *\n" +
	"3  93.184.216.34 (93.184.216.34)  20.0 ms  20.4 ms  20.2 ms"

func testConfig(output string, err error) Config {
	cfg := DefaultConfig()
	cfg.Dialect = parser.DialectUnix
	cfg.ProbeFunc = func(ctx context.Context, destination string) (string, error) {
		return output, err
	}
	return cfg
}

func TestTraceFinalHopCorrection(t *testing.T) {
	sampler := stubSampler{stats: probe.PingStats{MinRTT: 18.0, MaxRTT: 19.0, AvgRTT: 18.5}}
	tr := New(testConfig(cannedTrace, nil), sampler, pinger.DefaultConfig())

	result := tr.Trace(context.Background(), "93.184.216.34")
	if result.Outcome != probe.OutcomeSuccess {
		t.Fatalf("outcome: %s (%v)", result.Outcome, result.Err)
	}
	if !result.Corrected {
		t.Fatal("final hop should have been corrected")
	}

	hops := result.Trace.Hops
	if len(hops) != 3 {
		t.Fatalf("expected 3 hops, got %d", len(hops))
	}

	final := hops[2]
	if final.MinRTT != 18.0 || final.MaxRTT != 19.0 || final.AvgRTT != 18.5 {
		t.Errorf("final hop must carry the ping figures exactly: %+v", final)
	}
	if math.Abs(hops[0].AvgRTT-1.2) > 1e-9 {
		t.Errorf("hop 1 must be unchanged: %+v", hops[0])
	}
	if hops[1].Responsive || hops[1].AvgRTT != 0 {
		t.Errorf("hop 2 must be unchanged: %+v", hops[1])
	}
}

func TestTracePingFailureKeepsParsedValues(t *testing.T) {
	sampler := stubSampler{err: errors.New("unreachable")}
	tr := New(testConfig(cannedTrace, nil), sampler, pinger.DefaultConfig())

	result := tr.Trace(context.Background(), "93.184.216.34")
	if result.Outcome != probe.OutcomeSuccess {
		t.Fatalf("outcome: %s", result.Outcome)
	}
	if result.Corrected {
		t.Error("ping failure must not mark the trace corrected")
	}
	if avg := result.Trace.Hops[2].AvgRTT; avg != 20.2 {
		t.Errorf("final hop must keep the parsed value, got %v", avg)
	}
}

func TestTraceNilSamplerSkipsCorrection(t *testing.T) {
	tr := New(testConfig(cannedTrace, nil), nil, pinger.Config{})

	result := tr.Trace(context.Background(), "93.184.216.34")
	if result.Outcome != probe.OutcomeSuccess || result.Corrected {
		t.Errorf("outcome %s, corrected %v", result.Outcome, result.Corrected)
	}
}

func TestTraceNoOutput(t *testing.T) {
	tr := New(testConfig("", nil), nil, pinger.Config{})

	result := tr.Trace(context.Background(), "x")
	if result.Outcome != probe.OutcomeNoOutput {
		t.Fatalf("outcome: %s", result.Outcome)
	}
	if !errors.Is(result.Err, pkgerrors.ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", result.Err)
	}
}

func TestTraceProbeError(t *testing.T) {
	probeErr := errors.New("exit status 1")
	tr := New(testConfig("", probeErr), nil, pinger.Config{})

	result := tr.Trace(context.Background(), "x")
	if result.Outcome != probe.OutcomeNoOutput {
		t.Fatalf("outcome: %s", result.Outcome)
	}
	if !errors.Is(result.Err, probeErr) {
		t.Errorf("expected wrapped probe error, got %v", result.Err)
	}
}

func TestTraceNoHops(t *testing.T) {
	tr := New(testConfig("no hop lines in here\nat all\n", nil), nil, pinger.Config{})

	result := tr.Trace(context.Background(), "x")
	if result.Outcome != probe.OutcomeNoHops {
		t.Fatalf("outcome: %s", result.Outcome)
	}
	if !errors.Is(result.Err, pkgerrors.ErrNoHops) {
		t.Errorf("expected ErrNoHops, got %v", result.Err)
	}
}

func TestTraceNoResponsiveHops(t *testing.T) {
	tr := New(testConfig("1  * * *\n2  * * *\n", nil), nil, pinger.Config{})

	result := tr.Trace(context.Background(), "x")
	if result.Outcome != probe.OutcomeNoResponsiveHops {
		t.Fatalf("outcome: %s", result.Outcome)
	}
	if !errors.Is(result.Err, pkgerrors.ErrNoResponsive) {
		t.Errorf("expected ErrNoResponsive, got %v", result.Err)
	}
}
