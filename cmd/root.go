// Package cmd defines and implements the CLI commands for the notice-scraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/notice-scraper/internal/config"
	"github.com/JakeFAU/notice-scraper/internal/logging"
)

// newRootCmd creates and configures the root command. Running it without a
// subcommand performs a scrape.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "notice-scraper",
		Short: "Scrapes the notice board into a JSON migration file.",
		Long: `notice-scraper walks the paginated notice board, extracts every post,
downloads embedded images and attachments into one directory per notice and
writes all records to a single JSON document for migration.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); defaults cover the production board")
	cmd.AddCommand(newScrapeCmd(&cfgFile))

	return cmd
}

// loadRuntime reads configuration and builds the logger.
func loadRuntime(cfgFile string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("logger init: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		logger, lerr := logging.New(false, "")
		if lerr != nil {
			fmt.Fprintf(os.Stderr, "command execution failed: %v\n", err)
			os.Exit(1)
		}
		logger.Fatal("Command execution failed", zap.Error(err))
	}
}
