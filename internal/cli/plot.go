package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"pathprobe/internal/aggregate"
	"pathprobe/internal/plot"
	"pathprobe/internal/report"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Re-render charts from an existing run's CSV results",
	Long: `Re-render charts from an existing run's CSV results.

Reads ping_results.csv and traceroute_results.csv from the input directory
and writes the three charts next to them. Charts whose input file is missing
are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		rendered := 0

		if pingRows, err := report.ReadPingCSV(filepath.Join(dir, "ping_results.csv")); err == nil {
			path := filepath.Join(dir, "distance_vs_rtt.pdf")
			if err := plot.DistanceVsRTT(pingRows, path); err != nil {
				fmt.Fprintf(os.Stderr, "distance chart: %v\n", err)
			} else {
				fmt.Println(path)
				rendered++
			}
		}

		if traces, err := report.ReadTraceCSV(filepath.Join(dir, "traceroute_results.csv")); err == nil {
			path := filepath.Join(dir, "latency_breakdown.pdf")
			if err := plot.LatencyBreakdown(aggregate.IncrementalBreakdown(traces), path); err != nil {
				fmt.Fprintf(os.Stderr, "breakdown chart: %v\n", err)
			} else {
				fmt.Println(path)
				rendered++
			}

			path = filepath.Join(dir, "hopcount_vs_rtt.pdf")
			if err := plot.HopCountVsRTT(aggregate.HopCountSummary(traces), path); err != nil {
				fmt.Fprintf(os.Stderr, "hop-count chart: %v\n", err)
			} else {
				fmt.Println(path)
				rendered++
			}
		}

		if rendered == 0 {
			return fmt.Errorf("no charts rendered; run an experiment first (pathprobe run -o %s)", dir)
		}
		return nil
	},
}

func init() {
	plotCmd.Flags().StringP("dir", "d", ".", "directory holding the CSV results")

	rootCmd.AddCommand(plotCmd)
}
