package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"pathprobe/internal/aggregate"
	"pathprobe/internal/probe"
	"pathprobe/internal/probe/pinger"
	"pathprobe/internal/probe/tracer"
	"pathprobe/internal/report"
)

var traceCmd = &cobra.Command{
	Use:   "trace <destination>...",
	Short: "Trace the route to one or more destinations",
	Long: `Trace the route to one or more destinations.

Runs the system traceroute (tracert on Windows), parses the per-hop RTTs and
replaces the final hop's figures with a direct ping to the destination, which
is more accurate than the traceroute timing. Use --no-correct to keep the raw
traceroute figures.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		maxHops, _ := cmd.Flags().GetInt("max-hops")
		hopWaitMS, _ := cmd.Flags().GetInt64("hop-wait")
		timeoutS, _ := cmd.Flags().GetInt64("timeout")
		noCorrect, _ := cmd.Flags().GetBool("no-correct")
		strategyName, _ := cmd.Flags().GetString("strategy")

		cfg := tracer.DefaultConfig()
		cfg.MaxHops = maxHops
		cfg.HopTimeout = time.Duration(hopWaitMS) * time.Millisecond
		cfg.Timeout = time.Duration(timeoutS) * time.Second

		var sampler pinger.Strategy
		if !noCorrect {
			var err error
			sampler, err = pinger.NewStrategy(strategyName)
			if err != nil {
				return err
			}
		}

		t := tracer.New(cfg, sampler, pinger.DefaultConfig())

		var traces []probe.TraceResult
		for _, destination := range args {
			fmt.Printf("Tracing route to %s...\n", destination)
			result := t.Trace(ctx, destination)

			if result.Outcome != probe.OutcomeSuccess {
				fmt.Printf("  %s", result.Outcome)
				if result.Err != nil {
					fmt.Printf(" (%v)", result.Err)
				}
				fmt.Println()
				continue
			}

			fmt.Println()
			report.PrintTraceTable(os.Stdout, result.Trace)
			if result.Corrected {
				fmt.Println("final hop corrected by direct ping")
			}
			fmt.Println()
			traces = append(traces, result.Trace)
		}

		if len(traces) > 1 {
			fmt.Println("Summary:")
			report.PrintSummaryTable(os.Stdout, aggregate.HopCountSummary(traces))
		}
		return nil
	},
}

func init() {
	traceCmd.Flags().IntP("max-hops", "m", 30, "maximum hops to probe")
	traceCmd.Flags().Int64("hop-wait", 1000, "per-hop reply wait in milliseconds")
	traceCmd.Flags().Int64P("timeout", "t", 120, "overall traceroute timeout in seconds")
	traceCmd.Flags().Bool("no-correct", false, "keep raw final-hop RTTs")
	traceCmd.Flags().StringP("strategy", "s", "exec", "correction ping strategy (exec, icmp)")

	rootCmd.AddCommand(traceCmd)
}
