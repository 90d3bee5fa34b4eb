package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"pathprobe/internal/serverlist"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Fetch and list measurement destinations",
	Long: `Fetch and list measurement destinations.

Without flags, downloads the public iperf3 server list and prints the
addresses. Use --file to read a local CSV or plain-text list instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		file, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")
		limit, _ := cmd.Flags().GetInt("limit")
		ipsOnly, _ := cmd.Flags().GetBool("ips-only")
		resolve, _ := cmd.Flags().GetBool("resolve")

		var addrs []string
		var err error
		if file != "" {
			addrs, err = serverlist.LoadFile(file)
		} else {
			fetcher := serverlist.NewFetcher(serverlist.DefaultFetcherConfig())
			addrs, err = fetcher.FetchAddresses(ctx, url)
		}
		if err != nil {
			return err
		}

		if resolve {
			addrs = serverlist.NewResolver().ResolveAll(addrs)
		}
		if ipsOnly {
			addrs = serverlist.FilterIPLiterals(addrs)
		}

		total := len(addrs)
		if limit > 0 && limit < len(addrs) {
			addrs = addrs[:limit]
		}

		for _, addr := range addrs {
			fmt.Println(addr)
		}
		if len(addrs) < total {
			fmt.Printf("... and %d more (%d total)\n", total-len(addrs), total)
		}
		return nil
	},
}

func init() {
	serversCmd.Flags().StringP("file", "f", "", "local CSV or text file instead of the remote list")
	serversCmd.Flags().String("url", serverlist.DefaultURL, "server list URL")
	serversCmd.Flags().IntP("limit", "n", 0, "print at most this many addresses (0 = all)")
	serversCmd.Flags().Bool("ips-only", false, "keep only IP-literal addresses")
	serversCmd.Flags().Bool("resolve", false, "resolve hostnames to IPv4 first")

	rootCmd.AddCommand(serversCmd)
}
