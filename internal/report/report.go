// Package report writes the per-run CSV snapshots and terminal summaries.
// The CSV files are the only durable measurement artifact a run produces.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"pathprobe/internal/aggregate"
	"pathprobe/internal/probe"
)

// PingRow is one destination's ping outcome, optionally geo-enriched.
type PingRow struct {
	Address    string
	Stats      *probe.PingStats // nil when the ping failed
	DistanceKM *float64         // nil when geolocation was unavailable
	Location   string           // "City, Country" display form
	Err        string
}

// WritePingCSV writes ping results in the fixed column layout.
func WritePingCSV(path string, rows []PingRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"addr", "min_rtt", "max_rtt", "avg_rtt", "packet_loss", "geo_distance_km", "error"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.Address, "", "", "", "", "", row.Err}
		if row.Stats != nil {
			record[1] = formatRTT(row.Stats.MinRTT)
			record[2] = formatRTT(row.Stats.MaxRTT)
			record[3] = formatRTT(row.Stats.AvgRTT)
			record[4] = strconv.FormatFloat(row.Stats.PacketLoss, 'f', 3, 64)
		}
		if row.DistanceKM != nil {
			record[5] = strconv.FormatFloat(*row.DistanceKM, 'f', 1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteTraceCSV writes one row per responsive hop. Non-responsive
// placeholders stay in memory for hop counting but are excluded from the
// persisted form.
func WriteTraceCSV(path string, results []probe.TraceResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"destination", "hop_number", "hop_address", "min_rtt", "max_rtt", "avg_rtt"}); err != nil {
		return err
	}
	for _, result := range results {
		result.SortHops()
		for _, hop := range result.Hops {
			if !hop.Responsive {
				continue
			}
			record := []string{
				hop.Destination,
				strconv.Itoa(hop.HopNumber),
				hop.HopAddress,
				formatRTT(hop.MinRTT),
				formatRTT(hop.MaxRTT),
				formatRTT(hop.AvgRTT),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

// PrintPingTable renders ping outcomes as an aligned terminal table.
func PrintPingTable(out io.Writer, rows []PingRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tMIN\tAVG\tMAX\tLOSS\tDISTANCE\tSTATUS")
	fmt.Fprintln(w, "-------\t---\t---\t---\t----\t--------\t------")
	for _, row := range rows {
		if row.Stats == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\tFAIL (%s)\n", row.Address, row.Err)
			continue
		}
		distance := "-"
		if row.DistanceKM != nil {
			distance = fmt.Sprintf("%.0f km", *row.DistanceKM)
		}
		fmt.Fprintf(w, "%s\t%.1f ms\t%.1f ms\t%.1f ms\t%.0f%%\t%s\tOK\n",
			row.Address, row.Stats.MinRTT, row.Stats.AvgRTT, row.Stats.MaxRTT,
			row.Stats.PacketLoss*100, distance)
	}
	w.Flush()
}

// PrintTraceTable renders one trace as a per-hop terminal table.
func PrintTraceTable(out io.Writer, result probe.TraceResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HOP\tADDRESS\tMIN\tAVG\tMAX")
	fmt.Fprintln(w, "---\t-------\t---\t---\t---")
	result.SortHops()
	for _, hop := range result.Hops {
		if !hop.Responsive {
			fmt.Fprintf(w, "%d\t*\t*\t*\t*\n", hop.HopNumber)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%.1f ms\t%.1f ms\t%.1f ms\n",
			hop.HopNumber, hop.HopAddress, hop.MinRTT, hop.AvgRTT, hop.MaxRTT)
	}
	w.Flush()
}

// PrintSummaryTable renders the hop-count summary rows.
func PrintSummaryTable(out io.Writer, rows []aggregate.SummaryRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DESTINATION\tHOPS\tEND-TO-END RTT")
	fmt.Fprintln(w, "-----------\t----\t--------------")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%d\t%.1f ms\n", row.Destination, row.HopCount, row.EndToEndRTT)
	}
	w.Flush()
}

func formatRTT(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
