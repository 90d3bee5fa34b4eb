// Package plot renders the experiment charts: distance vs RTT, the stacked
// per-hop latency breakdown, and hop count vs RTT. Output format follows the
// file extension (.pdf, .png, .svg).
package plot

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"pathprobe/internal/aggregate"
	"pathprobe/internal/report"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch
)

// DistanceVsRTT draws one point per successfully pinged and geolocated
// destination: x = great-circle distance, y = average RTT.
func DistanceVsRTT(rows []report.PingRow, path string) error {
	var pts plotter.XYs
	for _, row := range rows {
		if row.Stats == nil || row.DistanceKM == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: *row.DistanceKM, Y: row.Stats.AvgRTT})
	}
	if len(pts) == 0 {
		return fmt.Errorf("no geolocated ping results to plot")
	}

	p := plot.New()
	p.Title.Text = "Distance vs Round-Trip Time"
	p.X.Label.Text = "Distance (km)"
	p.Y.Label.Text = "Round-Trip Time (ms)"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Color = plotutil.Color(0)
	p.Add(scatter)

	return p.Save(plotWidth, plotHeight, path)
}

// LatencyBreakdown draws one stacked bar per destination; each segment is
// the incremental latency one hop contributes, so the total bar height is
// the end-to-end RTT.
func LatencyBreakdown(b aggregate.Breakdown, path string) error {
	if b.Empty() {
		return fmt.Errorf("no trace results to plot")
	}

	p := plot.New()
	p.Title.Text = "Breakdown of Latencies to Each Hop by Destination"
	p.X.Label.Text = "Destination"
	p.Y.Label.Text = "Round-Trip Time (ms)"

	var prev *plotter.BarChart
	for hop, name := range b.Columns {
		values := make(plotter.Values, len(b.Rows))
		for i, row := range b.Rows {
			values[i] = row[hop]
		}

		bars, err := plotter.NewBarChart(values, vg.Points(30))
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(hop)
		if prev != nil {
			bars.StackOn(prev)
		}
		p.Add(bars)
		p.Legend.Add(name, bars)
		prev = bars
	}

	p.Legend.Top = true
	p.NominalX(b.Destinations...)
	return p.Save(plotWidth, plotHeight, path)
}

// HopCountVsRTT draws one labeled point per destination with the Pearson
// correlation in the title.
func HopCountVsRTT(rows []aggregate.SummaryRow, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no summary rows to plot")
	}

	pts := make(plotter.XYs, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		pts[i] = plotter.XY{X: float64(row.HopCount), Y: row.EndToEndRTT}
		labels[i] = row.Destination
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Hop Count vs Round-Trip Time (r=%.3f)", aggregate.Correlation(rows))
	p.X.Label.Text = "Hop Count"
	p.Y.Label.Text = "Round-Trip Time (ms)"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(5)
	scatter.GlyphStyle.Color = plotutil.Color(2)
	p.Add(scatter)

	pointLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return err
	}
	p.Add(pointLabels)

	return p.Save(plotWidth, plotHeight, path)
}
