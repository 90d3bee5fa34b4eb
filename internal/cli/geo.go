package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"pathprobe/internal/geo"
)

var geoCmd = &cobra.Command{
	Use:   "geo [address]",
	Short: "Geolocate an address",
	Long: `Geolocate an address via ip-api.com.

Without an argument, locates this machine's public IP. Lookups are cached in
the local database; remote requests are rate limited.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client := geo.NewClient(appInstance.Storage)

		observer, err := client.Observer(ctx)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Printf("Observer: %s\n", observer.Address)
			fmt.Printf("  %s, %s, %s (%.4f, %.4f)\n",
				observer.City, observer.Region, observer.Country, observer.Lat, observer.Lon)
			return nil
		}

		loc, err := client.Locate(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", loc.Address)
		fmt.Printf("  %s, %s, %s (%.4f, %.4f)\n", loc.City, loc.Region, loc.Country, loc.Lat, loc.Lon)
		fmt.Printf("  %.1f km from observer\n",
			geo.Haversine(observer.Lat, observer.Lon, loc.Lat, loc.Lon))
		return nil
	},
}

var geoPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale cached locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		days, _ := cmd.Flags().GetInt("older-than")

		n, err := appInstance.Storage.PruneLocations(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d cached locations older than %d days\n", n, days)
		return nil
	},
}

func init() {
	geoPruneCmd.Flags().Int("older-than", 30, "age threshold in days")

	geoCmd.AddCommand(geoPruneCmd)
	rootCmd.AddCommand(geoCmd)
}
