package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pathprobe/internal/probe"
	"pathprobe/internal/probe/parser"
	"pathprobe/internal/probe/pinger"
)

type stubStrategy struct {
	stats probe.PingStats
	fail  map[string]bool
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Ping(ctx context.Context, destination string, cfg pinger.Config) (probe.PingStats, error) {
	if s.fail[destination] {
		return probe.PingStats{}, errors.New("unreachable")
	}
	return s.stats, nil
}

func writeTargets(t *testing.T, addrs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.txt")
	if err := os.WriteFile(path, []byte(strings.Join(addrs, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunFullExperiment(t *testing.T) {
	outDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.OutputDir = outDir
	cfg.InputFile = writeTargets(t, "192.0.2.1", "192.0.2.2")
	cfg.TraceCount = 2
	cfg.SkipGeo = true
	cfg.SkipPlots = true
	cfg.TraceCfg.Dialect = parser.DialectUnix
	cfg.TraceCfg.ProbeFunc = func(ctx context.Context, destination string) (string, error) {
		return "1  10.0.0.1 (10.0.0.1)  1.1 ms  1.3 ms  1.2 ms\n" +
			"2  " + destination + " (" + destination + ")  20.0 ms  20.4 ms  20.2 ms", nil
	}

	strategy := stubStrategy{stats: probe.PingStats{MinRTT: 18.0, MaxRTT: 19.0, AvgRTT: 18.5}}

	var events []Event
	r := New(cfg, strategy, nil, func(e Event) { events = append(events, e) })

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.TotalAddresses != 2 || stats.PingSuccess != 2 || stats.PingFailed != 0 {
		t.Errorf("ping tally: %+v", stats)
	}
	if stats.TraceTargets != 2 || stats.TraceSuccess != 2 {
		t.Errorf("trace tally: %+v", stats)
	}

	for _, name := range []string{"ping_results.csv", "traceroute_results.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output file %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "traceroute_results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	// Final hop corrected by the stub ping figures.
	if !strings.Contains(string(data), "18.500") {
		t.Errorf("trace CSV missing corrected final-hop RTT:\n%s", data)
	}

	if len(events) == 0 {
		t.Error("expected progress events")
	}
}

func TestRunTalliesPingFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.InputFile = writeTargets(t, "192.0.2.1", "192.0.2.2", "192.0.2.3")
	cfg.SkipGeo = true
	cfg.SkipPlots = true
	cfg.SkipTrace = true

	strategy := stubStrategy{
		stats: probe.PingStats{AvgRTT: 5},
		fail:  map[string]bool{"192.0.2.2": true},
	}
	r := New(cfg, strategy, nil, nil)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.PingSuccess != 2 || stats.PingFailed != 1 {
		t.Errorf("tally: %+v", stats)
	}
}

func TestRunTalliesTraceFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.InputFile = writeTargets(t, "192.0.2.1")
	cfg.SkipGeo = true
	cfg.SkipPlots = true
	cfg.SkipPing = true
	cfg.TraceCfg.ProbeFunc = func(ctx context.Context, destination string) (string, error) {
		return "", nil
	}

	r := New(cfg, stubStrategy{}, nil, nil)

	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.TraceTargets != 1 || stats.TraceFailed != 1 || stats.TraceSuccess != 0 {
		t.Errorf("a NO_OUTPUT trace must count as exactly one failure: %+v", stats)
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "traceroute_results.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(strings.TrimSpace(string(data)), "\n"); lines != 0 {
		t.Errorf("failed trace must contribute no rows:\n%s", data)
	}
}

func TestRunEmptySourceIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.InputFile = filepath.Join(t.TempDir(), "missing.txt")
	cfg.SkipGeo = true
	cfg.SkipPlots = true

	r := New(cfg, stubStrategy{}, nil, nil)
	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected an error for an unreadable address source")
	}
}
