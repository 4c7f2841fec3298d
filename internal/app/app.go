// Package app wires configuration into the scraping pipeline and runs it once.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/JakeFAU/notice-scraper/internal/board"
	"github.com/JakeFAU/notice-scraper/internal/clock/system"
	"github.com/JakeFAU/notice-scraper/internal/config"
	"github.com/JakeFAU/notice-scraper/internal/download"
	collyfetcher "github.com/JakeFAU/notice-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/notice-scraper/internal/id/uuid"
	"github.com/JakeFAU/notice-scraper/internal/logging"
	"github.com/JakeFAU/notice-scraper/internal/metrics"
	"github.com/JakeFAU/notice-scraper/internal/output"
	"github.com/JakeFAU/notice-scraper/internal/storage/gcs"
	"github.com/JakeFAU/notice-scraper/internal/storage/local"
)

// Option customizes App construction.
type Option func(*options)

type options struct {
	clock      download.Clock
	pauser     board.Pauser
	gcsOptions []option.ClientOption
}

// WithClock overrides the clock used for generated filenames.
func WithClock(c download.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithPauser overrides the inter-notice pause.
func WithPauser(p board.Pauser) Option {
	return func(o *options) { o.pauser = p }
}

// WithGCSClientOptions passes extra options to the storage client used by
// the mirror.
func WithGCSClientOptions(opts ...option.ClientOption) Option {
	return func(o *options) { o.gcsOptions = append(o.gcsOptions, opts...) }
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Summary  board.Summary
	Records  int
	Output   string
	Duration time.Duration
}

// App holds the services for a single scrape run.
type App struct {
	cfg        config.Config
	runID      string
	logger     *zap.Logger
	metrics    *metrics.Metrics
	aggregator *output.Aggregator
	scraper    *board.Scraper
	gcsClient  *storage.Client
}

// New builds every component from cfg. It fails fast on anything that would
// prevent the run from producing output.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{clock: system.New()}
	for _, opt := range opts {
		opt(&o)
	}

	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	logger = logging.ForRun(logger, runID)

	assets, err := local.New(local.Config{BaseDir: cfg.Output.AssetDir})
	if err != nil {
		return nil, fmt.Errorf("init asset store: %w", err)
	}

	m := metrics.New()
	resolver := board.NewResolver(cfg.Board.Origin, cfg.Board.ListPath, cfg.Board.BoardPath)
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	})
	downloader := download.New(download.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.DownloadTimeout,
	}, assets, o.clock, m, logger.Named("download"))

	a := &App{
		cfg:        cfg,
		runID:      runID,
		logger:     logger,
		metrics:    m,
		aggregator: output.NewAggregator(),
	}

	var mirror board.Mirror
	if cfg.Storage.GCSBucket != "" {
		client, err := storage.NewClient(ctx, o.gcsOptions...)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Storage.GCSBucket, Prefix: cfg.Storage.GCSPrefix})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init gcs mirror: %w", err)
		}
		a.gcsClient = client
		mirror = store
		logger.Info("Mirroring assets to GCS", zap.String("bucket", cfg.Storage.GCSBucket))
	}

	walker := board.NewWalker(board.WalkerConfig{
		ListURLTemplate: cfg.Board.ListURLTemplate,
		MaxPages:        cfg.Scrape.MaxPages,
	}, fetcher, resolver, m, logger.Named("walker"))

	extractor := board.NewExtractor(board.ExtractorConfig{
		DefaultAuthor: cfg.Notice.DefaultAuthor,
		DefaultDate:   cfg.Notice.DefaultDate,
	})

	a.scraper = board.NewScraper(board.ScraperConfig{NoticeDelay: cfg.Scrape.NoticeDelay}, board.Deps{
		Walker:     walker,
		Fetcher:    fetcher,
		Extractor:  extractor,
		Resolver:   resolver,
		Downloader: downloader,
		Dirs:       assets,
		Mirror:     mirror,
		Sink:       a.aggregator,
		Pauser:     o.pauser,
		Metrics:    m,
	}, logger.Named("scraper"))

	return a, nil
}

// RunID identifies this run in logs.
func (a *App) RunID() string {
	return a.runID
}

// Run scrapes the board and always attempts to write the JSON document. Only
// a failure to write it is returned; a cut-short walk is reported in the
// Result.
func (a *App) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	a.logger.Info("Starting notice scrape",
		zap.String("list_url_template", a.cfg.Board.ListURLTemplate),
		zap.String("asset_dir", a.cfg.Output.AssetDir),
	)

	summary := a.scraper.Run(ctx)
	if summary.WalkErr != nil && errors.Is(summary.WalkErr, context.Canceled) {
		a.logger.Warn("Scrape interrupted, writing partial results")
	}

	result := Result{
		RunID:   a.runID,
		Summary: summary,
		Records: a.aggregator.Len(),
		Output:  a.cfg.Output.JSONPath,
	}
	if err := a.aggregator.WriteJSON(a.cfg.Output.JSONPath); err != nil {
		return result, fmt.Errorf("write notices: %w", err)
	}
	a.logger.Info("Saved notices", zap.Int("count", result.Records), zap.String("path", result.Output))

	if a.cfg.Metrics.Textfile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warn("Failed to write metrics textfile", zap.String("path", a.cfg.Metrics.Textfile), zap.Error(err))
		}
	}

	result.Duration = time.Since(start)
	a.logger.Info("Scrape finished",
		zap.Int("scraped", summary.Scraped),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("walk_aborted", summary.WalkErr != nil),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// Records exposes the aggregated notices.
func (a *App) Records() []board.Notice {
	return a.aggregator.Records()
}

// Close releases the storage client and flushes the logger.
func (a *App) Close() {
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("Error closing storage client", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
