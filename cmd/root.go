package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "eventapi",
		Short: "Event management REST API",
		Long: `eventapi serves the event management API: user accounts, events,
participants with their confirmation status, and geocoded locations.`,
		SilenceUsage: true,
		// serve is the default command
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute runs the root command; called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "", "listen address, overrides SERVER_ADDR")

	rootCmd.AddCommand(serveCmd)
}
