package cmd

import (
	"fmt"
	"log"
	"os"

	"jamjar/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jamjar",
	Short: "jamjar lets anyone with a share link add tracks to a host's playlist.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting jamjar server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
