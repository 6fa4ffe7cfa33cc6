package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "gestor",
	Short:        "Project management API: projects, tasks, time logs, KPIs and notifications",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (embeds the worker when Redis is configured)",
	RunE:  runServe,
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the standalone notification worker",
	RunE:  runWorker,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

var seedNotificationCmd = &cobra.Command{
	Use:   "seed-notification <id_usuario>",
	Short: "Create a test notification for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeedNotification,
}

var watchCmd = &cobra.Command{
	Use:   "watch-notifications",
	Short: "Log notification events from the Redis stream as they arrive",
	RunE:  runWatch,
}

func init() {
	migrateCmd.Flags().Bool("seed", false, "Insert development data after migrating")
	seedNotificationCmd.Flags().String("mensaje", "Notificación de prueba", "Notification body")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedNotificationCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
