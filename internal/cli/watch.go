package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"pathprobe/internal/geo"
	"pathprobe/internal/probe/pinger"
	"pathprobe/internal/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Repeat the experiment at a fixed interval",
	Long: `Repeat the full measurement experiment at a fixed interval.

An initial run starts immediately; subsequent runs fire on the interval.
Results overwrite the previous run's files in the output directory. Stop
with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		intervalMin, _ := cmd.Flags().GetInt("interval")

		cfg := runner.DefaultConfig()
		cfg.InputFile, _ = cmd.Flags().GetString("input-file")
		cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
		cfg.TraceCount, _ = cmd.Flags().GetInt("trace-count")
		cfg.SkipGeo, _ = cmd.Flags().GetBool("skip-geo")
		strategyName, _ := cmd.Flags().GetString("strategy")

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

		r := runner.New(cfg, strategy, geoClient, nil)
		scheduler, err := runner.NewScheduler(r)
		if err != nil {
			return err
		}

		interval := time.Duration(intervalMin) * time.Minute
		if err := scheduler.Start(ctx, interval); err != nil {
			return err
		}
		fmt.Printf("Watching: experiment every %s, output in %s (Ctrl+C to stop)\n",
			interval, cfg.OutputDir)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		cancel()
		return scheduler.Stop()
	},
}

func init() {
	watchCmd.Flags().Int("interval", 60, "minutes between runs")
	watchCmd.Flags().StringP("input-file", "i", "", "local CSV or text destination list")
	watchCmd.Flags().StringP("output-dir", "o", ".", "directory for CSV results and charts")
	watchCmd.Flags().Int("trace-count", 5, "destinations sampled for traceroute")
	watchCmd.Flags().StringP("strategy", "s", "exec", "ping strategy (exec, icmp)")
	watchCmd.Flags().Bool("skip-geo", false, "skip geolocation enrichment")

	rootCmd.AddCommand(watchCmd)
}
