package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"pathprobe/internal/app"
)

var (
	appInstance *app.App
	version     = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pathprobe",
	Short: "📡 Pathprobe - a network path measurement toolkit",
	Long: `📡 Pathprobe - a network path measurement toolkit

  Ping and traceroute batches of destinations, correct final-hop latency,
  and chart where on the path the time goes.

  Quick start:
    pathprobe servers fetch
    pathprobe ping 1.1.1.1
    pathprobe trace 8.8.8.8
    pathprobe run -o results/

  Core features:
    • Batch RTT sampling via the system ping or raw ICMP
    • Two-dialect traceroute parsing (Windows tracert and Unix traceroute)
    • Final-hop RTT correction by direct ping
    • Geolocation enrichment with persistent caching
    • Distance/RTT, latency-breakdown, and hop-count charts`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		var err error
		appInstance, err = app.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance != nil {
			return appInstance.Close()
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db", "", "database path")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("📡 Pathprobe %s\n", version)
	},
}
