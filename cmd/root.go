package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodianhq/custos/internal/app"
	"github.com/custodianhq/custos/internal/config"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:   "custos",
		Short: "Scheduled backup runner with tiered retention",
		Long: `custos periodically runs external backup programs, deduplicates
unchanged backups against the previous run, and keeps a bounded,
tiered history of backup artifacts per job.`,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configFile, "config", "c", "configs/config.yaml", "path to YAML config file")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(pruneCmd)
}

func newApp() (*app.App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	application, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize app: %w", err)
	}
	return application, nil
}
