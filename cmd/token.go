package cmd

import (
	"fmt"

	"jamjar/core/share"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <host_id> <playlist_id>",
	Short: "Print the share token for a host/playlist pair",
	Long:  `Computes the deterministic share token a registration of this host/playlist pair would produce. Useful for finding an existing share link.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(share.Fingerprint(args[0], args[1]))
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
