package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/app"
	"github.com/ternarybob/stockdash/internal/common"
)

var (
	// Command-line flags
	configFiles []string // later files override earlier ones

	// Global state
	config *common.Config
	logger arbor.ILogger
)

var rootCmd = &cobra.Command{
	Use:           "stockdash",
	Short:         "A-share financial dashboard backend",
	Long:          `Serves stock snapshots, the watchlist and LLM-backed analysis over HTTP, or runs the same operations from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfig(cmd.Name() == "serve")
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")

	rootCmd.AddCommand(serveCmd, versionCmd, stockCmd, watchlistCmd, analyzeCmd, cacheCmd)
}

func main() {
	common.LoadVersionFromFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig runs the startup sequence:
// defaults -> file1 -> file2 -> ... -> env, then the logger.
// Only the server runs scheduled jobs.
func loadConfig(server bool) error {
	if len(configFiles) == 0 {
		if _, err := os.Stat("stockdash.toml"); err == nil {
			configFiles = append(configFiles, "stockdash.toml")
		} else if _, err := os.Stat("deployments/local/stockdash.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/stockdash.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration %v: %w", configFiles, err)
	}

	if !server {
		config.Scheduler.Enabled = false
	}

	logger = common.InitLogger(config)
	return nil
}

// openApp builds the application for one-shot commands. The caller closes it.
func openApp() (*app.App, error) {
	application, err := app.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}
