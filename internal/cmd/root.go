package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/point-forecast/internal/config"
	"github.com/i474232898/point-forecast/internal/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   filepath.Base(os.Args[0]),
	Short: "SMHI point forecasts: fetch, normalize and aggregate",
	Long: `Fetches SMHI point and fire-risk forecasts for a coordinate and
aggregates them into hourly, daily or twice-daily views.

Use the subcommands to query once or to serve the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// bootstrap loads configuration and the logger shared by every subcommand.
func bootstrap() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.EnvFileLoaded {
		logger.Debug("no .env file found, using environment only")
	}
	return cfg, logger, nil
}
