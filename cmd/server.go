package cmd

import (
	"jamjar/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the jamjar HTTP server",
	Long:  `Start the HTTP server that handles host authorization, session registration and contributor track appends.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
