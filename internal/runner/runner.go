// Package runner drives a full experiment: load addresses, ping every
// destination, trace a sampled subset with final-hop correction, then write
// CSV snapshots and charts. Work is sequential per destination; the ping
// batch can be widened explicitly, but defaults to one worker.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"pathprobe/internal/aggregate"
	"pathprobe/internal/geo"
	"pathprobe/internal/plot"
	"pathprobe/internal/probe"
	"pathprobe/internal/probe/pinger"
	"pathprobe/internal/probe/tracer"
	"pathprobe/internal/report"
	"pathprobe/internal/serverlist"
	pkgerrors "pathprobe/pkg/errors"
)

// Config holds one experiment's parameters.
type Config struct {
	OutputDir  string
	InputFile  string // local CSV/text file; empty fetches SourceURL
	SourceURL  string // defaults to the public iperf3 list
	TraceCount int    // destinations sampled for the traceroute part
	Workers    int64  // ping batch width; 1 keeps the run fully sequential
	Resolve    bool   // resolve hostnames to IPv4 before probing

	SkipPing  bool
	SkipTrace bool
	SkipPlots bool
	SkipGeo   bool

	PingCfg  pinger.Config
	TraceCfg tracer.Config
}

// DefaultConfig mirrors the experiment defaults: five traced destinations,
// sequential execution.
func DefaultConfig() Config {
	return Config{
		OutputDir:  ".",
		SourceURL:  serverlist.DefaultURL,
		TraceCount: 5,
		Workers:    1,
		PingCfg:    pinger.DefaultConfig(),
		TraceCfg:   tracer.DefaultConfig(),
	}
}

// Stats tallies one experiment run.
type Stats struct {
	TotalAddresses int
	PingSuccess    int
	PingFailed     int
	TraceTargets   int
	TraceSuccess   int
	TraceFailed    int
	Plots          []string
	Duration       time.Duration
}

// Phase identifies which part of the run an Event belongs to.
type Phase int

const (
	PhaseLoad Phase = iota
	PhasePing
	PhaseTrace
	PhaseWrite
	PhasePlot
)

// Event is one progress notification. Current/Total describe position
// within the phase; Err is set for per-destination failures, which never
// stop the batch.
type Event struct {
	Phase       Phase
	Destination string
	Current     int
	Total       int
	Message     string
	Err         error
}

// ProgressFunc receives progress events; may be nil.
type ProgressFunc func(Event)

// Runner executes experiments.
type Runner struct {
	config   Config
	strategy pinger.Strategy
	tracer   *tracer.Tracer
	fetcher  *serverlist.Fetcher
	geo      *geo.Client // nil disables enrichment
	progress ProgressFunc
}

// New creates a Runner. geoClient may be nil.
func New(cfg Config, strategy pinger.Strategy, geoClient *geo.Client, progress ProgressFunc) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.TraceCount <= 0 {
		cfg.TraceCount = 5
	}
	if cfg.SourceURL == "" {
		cfg.SourceURL = serverlist.DefaultURL
	}
	return &Runner{
		config:   cfg,
		strategy: strategy,
		tracer:   tracer.New(cfg.TraceCfg, strategy, cfg.PingCfg),
		fetcher:  serverlist.NewFetcher(serverlist.DefaultFetcherConfig()),
		geo:      geoClient,
		progress: progress,
	}
}

// Run executes the full experiment. The only fatal conditions are an empty
// address source and context cancellation; per-destination failures are
// tallied and absorbed.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	addrs, err := r.loadAddresses(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalAddresses = len(addrs)
	r.emit(Event{Phase: PhaseLoad, Total: len(addrs), Message: fmt.Sprintf("loaded %d addresses", len(addrs))})

	var pingRows []report.PingRow
	if !r.config.SkipPing {
		pingRows = r.pingAll(ctx, addrs, stats)
		if !r.config.SkipGeo {
			r.enrich(ctx, pingRows)
		}
		path := filepath.Join(r.config.OutputDir, "ping_results.csv")
		if err := report.WritePingCSV(path, pingRows); err != nil {
			return stats, fmt.Errorf("write ping results: %w", err)
		}
		r.emit(Event{Phase: PhaseWrite, Message: path})
	}

	var traces []probe.TraceResult
	if !r.config.SkipTrace {
		traces = r.traceSampled(ctx, addrs, stats)
		path := filepath.Join(r.config.OutputDir, "traceroute_results.csv")
		if err := report.WriteTraceCSV(path, traces); err != nil {
			return stats, fmt.Errorf("write trace results: %w", err)
		}
		r.emit(Event{Phase: PhaseWrite, Message: path})
	}

	if !r.config.SkipPlots {
		r.renderPlots(pingRows, traces, stats)
	}

	stats.Duration = time.Since(start)
	return stats, ctx.Err()
}

// loadAddresses pulls the destination list from the configured source.
func (r *Runner) loadAddresses(ctx context.Context) ([]string, error) {
	var addrs []string
	var err error
	if r.config.InputFile != "" {
		addrs, err = serverlist.LoadFile(r.config.InputFile)
	} else {
		addrs, err = r.fetcher.FetchAddresses(ctx, r.config.SourceURL)
	}
	if err != nil {
		return nil, err
	}
	if r.config.Resolve {
		addrs = serverlist.NewResolver().ResolveAll(addrs)
	}
	if len(addrs) == 0 {
		return nil, pkgerrors.ErrNoAddresses
	}
	return addrs, nil
}

// pingAll measures every address. The semaphore bounds in-flight probes;
// with the default weight of 1 this is plain sequential iteration.
func (r *Runner) pingAll(ctx context.Context, addrs []string, stats *Stats) []report.PingRow {
	rows := make([]report.PingRow, len(addrs))

	sem := semaphore.NewWeighted(r.config.Workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, addr := range addrs {
		wg.Add(1)
		go func(idx int, destination string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				rows[idx] = report.PingRow{Address: destination, Err: err.Error()}
				return
			}
			defer sem.Release(1)

			row := report.PingRow{Address: destination}
			ps, err := r.strategy.Ping(ctx, destination, r.config.PingCfg)
			if err != nil {
				row.Err = err.Error()
			} else {
				row.Stats = &ps
			}
			rows[idx] = row

			mu.Lock()
			completed++
			current := completed
			mu.Unlock()
			r.emit(Event{Phase: PhasePing, Destination: destination, Current: current, Total: len(addrs), Err: err})
		}(i, addr)
	}
	wg.Wait()

	for _, row := range rows {
		if row.Stats != nil {
			stats.PingSuccess++
		} else {
			stats.PingFailed++
		}
	}
	return rows
}

// enrich attaches geolocation and observer distance to successful rows.
// Any geo failure leaves rows untouched; enrichment never blocks output.
func (r *Runner) enrich(ctx context.Context, rows []report.PingRow) {
	if r.geo == nil {
		return
	}
	observer, err := r.geo.Observer(ctx)
	if err != nil {
		return
	}
	addrs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Stats != nil {
			addrs = append(addrs, row.Address)
		}
	}
	located := r.geo.LocateAll(ctx, addrs, observer)
	for i := range rows {
		if res, ok := located[rows[i].Address]; ok {
			d := res.DistanceKM
			rows[i].DistanceKM = &d
			rows[i].Location = fmt.Sprintf("%s, %s", res.City, res.Country)
		}
	}
}

// traceSampled traces a random sample of IP-literal destinations, strictly
// one at a time.
func (r *Runner) traceSampled(ctx context.Context, addrs []string, stats *Stats) []probe.TraceResult {
	targets := serverlist.Sample(serverlist.FilterIPLiterals(addrs), r.config.TraceCount)
	stats.TraceTargets = len(targets)

	var traces []probe.TraceResult
	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		result := r.tracer.Trace(ctx, target)
		if result.Outcome == probe.OutcomeSuccess {
			stats.TraceSuccess++
			traces = append(traces, result.Trace)
		} else {
			stats.TraceFailed++
		}
		r.emit(Event{
			Phase:       PhaseTrace,
			Destination: target,
			Current:     i + 1,
			Total:       len(targets),
			Message:     result.Outcome.String(),
			Err:         result.Err,
		})
	}
	return traces
}

// renderPlots draws every chart its inputs allow. Chart failures are
// reported but never fail the run; the CSVs already exist by now.
func (r *Runner) renderPlots(pingRows []report.PingRow, traces []probe.TraceResult, stats *Stats) {
	charts := []struct {
		name   string
		render func(string) error
	}{
		{"distance_vs_rtt.pdf", func(p string) error { return plot.DistanceVsRTT(pingRows, p) }},
		{"latency_breakdown.pdf", func(p string) error {
			return plot.LatencyBreakdown(aggregate.IncrementalBreakdown(traces), p)
		}},
		{"hopcount_vs_rtt.pdf", func(p string) error {
			return plot.HopCountVsRTT(aggregate.HopCountSummary(traces), p)
		}},
	}
	for _, chart := range charts {
		path := filepath.Join(r.config.OutputDir, chart.name)
		if err := chart.render(path); err != nil {
			r.emit(Event{Phase: PhasePlot, Message: chart.name, Err: err})
			continue
		}
		stats.Plots = append(stats.Plots, path)
		r.emit(Event{Phase: PhasePlot, Message: path})
	}
}

func (r *Runner) emit(e Event) {
	if r.progress != nil {
		r.progress(e)
	}
}
