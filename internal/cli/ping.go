package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"pathprobe/internal/geo"
	"pathprobe/internal/probe/pinger"
	"pathprobe/internal/report"
)

var pingCmd = &cobra.Command{
	Use:   "ping <destination>...",
	Short: "Sample round-trip time to one or more destinations",
	Long: `Sample round-trip time to one or more destinations.

Each destination is probed with a burst of echo requests and the min, max,
average RTT and packet loss are reported. Default strategy shells out to the
system ping; use --strategy icmp for raw ICMP sockets (needs privileges).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		strategyName, _ := cmd.Flags().GetString("strategy")
		count, _ := cmd.Flags().GetInt("count")
		intervalMS, _ := cmd.Flags().GetInt64("interval")
		timeoutMS, _ := cmd.Flags().GetInt64("timeout")
		withGeo, _ := cmd.Flags().GetBool("geo")

		// Load defaults from DB settings if not overridden
		if !cmd.Flags().Changed("count") {
			if val, err := appInstance.Storage.GetSetting(ctx, "ping_count"); err == nil {
				if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
					count = parsed
				}
			}
		}

		strategy, err := pinger.NewStrategy(strategyName)
		if err != nil {
			return err
		}

		cfg := pinger.Config{
			Count:    count,
			Interval: time.Duration(intervalMS) * time.Millisecond,
			Timeout:  time.Duration(timeoutMS) * time.Millisecond,
		}

		rows := make([]report.PingRow, 0, len(args))
		for _, destination := range args {
			fmt.Printf("Pinging %s... ", destination)
			row := report.PingRow{Address: destination}
			ps, err := strategy.Ping(ctx, destination, cfg)
			if err != nil {
				row.Err = err.Error()
				fmt.Println("FAILED")
			} else {
				row.Stats = &ps
				fmt.Printf("%.3f ms avg\n", ps.AvgRTT)
			}
			rows = append(rows, row)
		}

		if withGeo {
			enrichPingRows(ctx, rows)
		}

		fmt.Println()
		report.PrintPingTable(os.Stdout, rows)
		return nil
	},
}

// enrichPingRows attaches location and observer distance to successful rows.
func enrichPingRows(ctx context.Context, rows []report.PingRow) {
	client := geo.NewClient(appInstance.Storage)
	observer, err := client.Observer(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "geolocation unavailable: %v\n", err)
		return
	}
	addrs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Stats != nil {
			addrs = append(addrs, row.Address)
		}
	}
	located := client.LocateAll(ctx, addrs, observer)
	for i := range rows {
		if res, ok := located[rows[i].Address]; ok {
			d := res.DistanceKM
			rows[i].DistanceKM = &d
			rows[i].Location = fmt.Sprintf("%s, %s", res.City, res.Country)
		}
	}
}

func init() {
	pingCmd.Flags().IntP("count", "c", 10, "echo requests per destination")
	pingCmd.Flags().Int64("interval", 200, "delay between echoes in milliseconds")
	pingCmd.Flags().Int64P("timeout", "t", 30000, "per-destination timeout in milliseconds")
	pingCmd.Flags().StringP("strategy", "s", "exec", "probe strategy (exec, icmp)")
	pingCmd.Flags().Bool("geo", false, "attach geolocation and observer distance")

	pingCmd.RegisterFlagCompletionFunc("strategy", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"exec", "icmp"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(pingCmd)
}
