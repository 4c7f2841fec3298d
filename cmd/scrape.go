package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/notice-scraper/internal/app"
)

// newScrapeCmd creates the 'scrape' subcommand.
func newScrapeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the board once and write the notices JSON",
		Long: `Fetches up to scrape.max_pages listing pages, processes every new notice
in discovery order and writes the result to output.json_path. A listing
failure or an interrupt ends the walk early; whatever was gathered is still
written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, *cfgFile)
		},
	}
}

func runScrape(cmd *cobra.Command, cfgFile string) error {
	cfg, logger, err := loadRuntime(cfgFile)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scraper: %w", err)
	}
	defer a.Close()

	result, err := a.Run(ctx)
	if err != nil {
		return fmt.Errorf("run scraper: %w", err)
	}
	cmd.Printf("Saved %d notices to %s\n", result.Records, result.Output)
	return nil
}
