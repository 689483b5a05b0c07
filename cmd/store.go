package cmd

import (
	"context"
	"fmt"
	"time"

	"jamjar/config"
	"jamjar/db"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Check connectivity to the session store backends",
	Long:  `Connects to MySQL and Redis with the configured credentials and reports whether both are reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			return fmt.Errorf("database check failed: %w", err)
		}
		defer db.DB.Close()
		fmt.Println("MySQL: ok")

		if err := db.ConnectRedis(cfg); err != nil {
			return fmt.Errorf("redis check failed: %w", err)
		}
		defer db.CloseRedis()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingRedis(ctx); err != nil {
			return fmt.Errorf("redis check failed: %w", err)
		}
		fmt.Println("Redis: ok")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
