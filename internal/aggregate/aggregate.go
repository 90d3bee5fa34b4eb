// Package aggregate reduces per-destination hop sequences to the two tables
// the charts are built from: a stacked per-hop latency breakdown and a
// hop-count / end-to-end RTT summary.
package aggregate

import (
	"fmt"
	"math"

	"pathprobe/internal/probe"
)

// Breakdown is a rectangular table of incremental per-hop RTT contributions.
// Rows are destinations, columns are hop positions, and short paths are
// zero-padded on the right so every row has the same width.
type Breakdown struct {
	Destinations []string
	Columns      []string
	Rows         [][]float64
}

// Empty reports whether no destination contributed a row.
func (b Breakdown) Empty() bool { return len(b.Rows) == 0 }

// IncrementalBreakdown computes each hop's latency contribution as the
// clamped delta over the previous hop's average RTT.
//
// Traceroute RTT is not monotone hop-over-hop (route asymmetry, jitter), so
// deltas are clamped at zero: the segments sum to the end-to-end RTT exactly
// when the sequence is non-decreasing, an approximation otherwise. Only responsive
// hops enter the RTT math; a zero-RTT placeholder in the middle would reset
// the running total and inflate the next segment.
func IncrementalBreakdown(results []probe.TraceResult) Breakdown {
	var b Breakdown

	maxHops := 0
	for _, r := range results {
		r.SortHops()
		hops := r.ResponsiveHops()
		if len(hops) == 0 {
			continue
		}

		prev := 0.0
		increments := make([]float64, 0, len(hops))
		for _, h := range hops {
			inc := h.AvgRTT - prev
			if inc < 0 {
				inc = 0
			}
			increments = append(increments, inc)
			prev = h.AvgRTT
		}

		b.Destinations = append(b.Destinations, r.Destination)
		b.Rows = append(b.Rows, increments)
		if len(increments) > maxHops {
			maxHops = len(increments)
		}
	}

	for i, row := range b.Rows {
		for len(row) < maxHops {
			row = append(row, 0)
		}
		b.Rows[i] = row
	}
	for i := 1; i <= maxHops; i++ {
		b.Columns = append(b.Columns, fmt.Sprintf("Hop %d", i))
	}
	return b
}

// SummaryRow is one (destination, path length, end-to-end RTT) data point.
type SummaryRow struct {
	Destination string
	HopCount    int
	EndToEndRTT float64
}

// HopCountSummary produces one row per destination. HopCount counts every
// recorded hop, placeholders included, so gaps in the path still lengthen
// it. EndToEndRTT is the average RTT of the highest-numbered hop, taken
// after an explicit sort so row insertion order cannot leak through.
func HopCountSummary(results []probe.TraceResult) []SummaryRow {
	var rows []SummaryRow
	for _, r := range results {
		if len(r.Hops) == 0 {
			continue
		}
		r.SortHops()
		rows = append(rows, SummaryRow{
			Destination: r.Destination,
			HopCount:    len(r.Hops),
			EndToEndRTT: r.Hops[len(r.Hops)-1].AvgRTT,
		})
	}
	return rows
}

// Correlation returns the Pearson correlation between hop count and
// end-to-end RTT across the summary rows, for the chart annotation.
// Returns 0 when fewer than two points exist or either variance is zero.
func Correlation(rows []SummaryRow) float64 {
	n := float64(len(rows))
	if n < 2 {
		return 0
	}
	var sumX, sumY float64
	for _, r := range rows {
		sumX += float64(r.HopCount)
		sumY += r.EndToEndRTT
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for _, r := range rows {
		dx := float64(r.HopCount) - meanX
		dy := r.EndToEndRTT - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / (math.Sqrt(varX) * math.Sqrt(varY))
}
