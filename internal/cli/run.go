package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"pathprobe/internal/geo"
	"pathprobe/internal/probe/pinger"
	"pathprobe/internal/runner"
	"pathprobe/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full measurement experiment",
	Long: `Run a full measurement experiment.

Loads a destination list (remote iperf3 server list by default), pings every
address, traces the route to a random sample of IP-literal destinations with
final-hop correction, then writes CSV results and charts to the output
directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg := runner.DefaultConfig()
		cfg.InputFile, _ = cmd.Flags().GetString("input-file")
		cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
		cfg.SourceURL, _ = cmd.Flags().GetString("url")
		cfg.TraceCount, _ = cmd.Flags().GetInt("trace-count")
		cfg.Workers, _ = cmd.Flags().GetInt64("workers")
		cfg.Resolve, _ = cmd.Flags().GetBool("resolve")
		cfg.SkipPing, _ = cmd.Flags().GetBool("skip-ping")
		cfg.SkipTrace, _ = cmd.Flags().GetBool("skip-traceroute")
		cfg.SkipPlots, _ = cmd.Flags().GetBool("skip-plots")
		cfg.SkipGeo, _ = cmd.Flags().GetBool("skip-geo")
		cfg.PingCfg.Count, _ = cmd.Flags().GetInt("count")
		useTUI, _ := cmd.Flags().GetBool("tui")
		strategyName, _ := cmd.Flags().GetString("strategy")

		// Load defaults from DB settings if not overridden
		if !cmd.Flags().Changed("count") {
			if val, err := appInstance.Storage.GetSetting(ctx, "ping_count"); err == nil {
				if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
					cfg.PingCfg.Count = parsed
				}
			}
		}
		if !cmd.Flags().Changed("trace-count") {
			if val, err := appInstance.Storage.GetSetting(ctx, "trace_destinations"); err == nil {
				if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
					cfg.TraceCount = parsed
				}
			}
		}

		strategy, err := pinger.NewStrategy(strategyName)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		var geoClient *geo.Client
		if !cfg.SkipGeo {
			geoClient = geo.NewClient(appInstance.Storage)
		}

		if useTUI {
			return runWithTUI(ctx, cfg, strategy, geoClient)
		}
		return runPlain(ctx, cfg, strategy, geoClient)
	},
}

// runPlain executes the experiment with line-based progress output.
func runPlain(ctx context.Context, cfg runner.Config, strategy pinger.Strategy, geoClient *geo.Client) error {
	progress := func(e runner.Event) {
		switch {
		case e.Err != nil && e.Destination != "":
			fmt.Printf("  [%d/%d] %-40s FAILED (%v)\n", e.Current, e.Total, e.Destination, e.Err)
		case e.Destination != "" && e.Message != "":
			fmt.Printf("  [%d/%d] %-40s %s\n", e.Current, e.Total, e.Destination, e.Message)
		case e.Destination != "":
			fmt.Printf("  [%d/%d] %s\n", e.Current, e.Total, e.Destination)
		case e.Err != nil:
			fmt.Printf("  %s FAILED (%v)\n", e.Message, e.Err)
		case e.Message != "":
			fmt.Printf("  %s\n", e.Message)
		}
	}

	r := runner.New(cfg, strategy, geoClient, progress)
	stats, err := r.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nSummary: %d addresses, %d pinged (%d failed), %d/%d traces succeeded, %d charts (%.1fs)\n",
		stats.TotalAddresses, stats.PingSuccess, stats.PingFailed,
		stats.TraceSuccess, stats.TraceTargets, len(stats.Plots),
		stats.Duration.Seconds())
	return nil
}

// runWithTUI executes the experiment behind the full-screen progress view.
func runWithTUI(ctx context.Context, cfg runner.Config, strategy pinger.Strategy, geoClient *geo.Client) error {
	p := tea.NewProgram(tui.NewModel())

	r := runner.New(cfg, strategy, geoClient, func(e runner.Event) {
		p.Send(tui.EventMsg(e))
	})

	go func() {
		stats, err := r.Run(ctx)
		p.Send(tui.DoneMsg{Stats: stats, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func init() {
	runCmd.Flags().StringP("input-file", "i", "", "local CSV or text destination list")
	runCmd.Flags().StringP("output-dir", "o", ".", "directory for CSV results and charts")
	runCmd.Flags().String("url", "", "server list URL (default: public iperf3 list)")
	runCmd.Flags().IntP("count", "c", 10, "echo requests per destination")
	runCmd.Flags().Int("trace-count", 5, "destinations sampled for traceroute")
	runCmd.Flags().Int64P("workers", "w", 1, "concurrent ping workers")
	runCmd.Flags().StringP("strategy", "s", "exec", "ping strategy (exec, icmp)")
	runCmd.Flags().Bool("resolve", false, "resolve hostnames to IPv4 first")
	runCmd.Flags().Bool("skip-ping", false, "skip the ping phase")
	runCmd.Flags().Bool("skip-traceroute", false, "skip the traceroute phase")
	runCmd.Flags().Bool("skip-plots", false, "skip chart rendering")
	runCmd.Flags().Bool("skip-geo", false, "skip geolocation enrichment")
	runCmd.Flags().Bool("tui", false, "show the full-screen progress view")

	rootCmd.AddCommand(runCmd)
}
