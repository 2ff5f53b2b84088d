package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datapilot-io/datapilot/pkg/config"
	"github.com/datapilot-io/datapilot/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	quiet      bool

	// version is kept for tracer service metadata.
	version string
)

// Execute runs the root command
func Execute(ctx context.Context, ver, commit, buildDate string) error {
	version = ver
	rootCmd := newRootCommand(ver, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(ver, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "datapilot",
		Short: "Datapilot - offline classification-modeling agent",
		Long: `Datapilot automates a classification-modeling workflow over tabular data:
profile the dataset, plan, train candidate models, evaluate, reflect, and
optionally replan and retry within a bounded budget.

Each run writes its artifacts (profile, plan, metrics, reflection, report,
confusion matrix) into its own output directory and records the best outcome
in a fingerprint-keyed memory store consulted by future runs.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", ver, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress logs")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newMemoryCommand())

	return rootCmd
}

// loadConfig loads the process config and applies the --quiet override.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if quiet {
		cfg.Logging.Level = "error"
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.Config) (*telemetry.Logger, error) {
	return telemetry.NewLogger(cfg.Logging)
}
