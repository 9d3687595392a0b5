package habitdash

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	apiURL     string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "habitdash",
	Short: "habitdash tracks habits, meals, water and body stats from your terminal",
	Long:  "habitdash is a terminal client for the habit and nutrition tracking API, with a local cache of every resource and a built-in mock backend.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite state database")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
