package board

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/notice-scraper/internal/metrics"
)

// ErrNoContent is returned when a detail page has no usable content region.
var ErrNoContent = errors.New("no content region found")

// ScraperConfig controls the control loop.
type ScraperConfig struct {
	NoticeDelay time.Duration
}

// Summary reports the outcome of a run.
type Summary struct {
	Scraped int
	Skipped int
	// WalkErr is the error that ended the listing walk early, if any.
	WalkErr error
}

// Scraper drives the walk and builds one Notice per listing entry, one page
// and one notice at a time.
type Scraper struct {
	cfg        ScraperConfig
	walker     *Walker
	fetcher    Fetcher
	extractor  *Extractor
	resolver   *Resolver
	downloader Downloader
	dirs       DirMaker
	mirror     Mirror
	sink       RecordSink
	pauser     Pauser
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// Deps bundles the collaborators of a Scraper. Mirror, Pauser and Metrics
// are optional.
type Deps struct {
	Walker     *Walker
	Fetcher    Fetcher
	Extractor  *Extractor
	Resolver   *Resolver
	Downloader Downloader
	Dirs       DirMaker
	Mirror     Mirror
	Sink       RecordSink
	Pauser     Pauser
	Metrics    *metrics.Metrics
}

// NewScraper constructs a Scraper.
func NewScraper(cfg ScraperConfig, deps Deps, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	pauser := deps.Pauser
	if pauser == nil {
		pauser = TimerPauser{}
	}
	return &Scraper{
		cfg:        cfg,
		walker:     deps.Walker,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		resolver:   deps.Resolver,
		downloader: deps.Downloader,
		dirs:       deps.Dirs,
		mirror:     deps.Mirror,
		sink:       deps.Sink,
		pauser:     pauser,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Run walks the listing and feeds every successfully extracted notice to the
// sink. A listing failure ends the walk but is not returned: it is reported
// in the Summary so the caller can still serialize what was gathered.
func (s *Scraper) Run(ctx context.Context) Summary {
	var summary Summary
	err := s.walker.Walk(ctx, func(entry ListingEntry) error {
		s.logger.Info("Fetching notice",
			zap.String("notice_id", entry.ID),
			zap.String("url", entry.URL),
			zap.Bool("pinned", entry.Pinned),
		)
		notice, err := s.processNotice(ctx, entry)
		if err != nil {
			s.logger.Error("Error processing notice", zap.String("notice_id", entry.ID), zap.Error(err))
			s.metrics.NoticeSkipped()
			summary.Skipped++
		} else {
			s.sink.Add(notice)
			s.metrics.NoticeScraped()
			summary.Scraped++
		}
		s.pauser.Pause(ctx, s.cfg.NoticeDelay)
		return nil
	})
	if err != nil {
		s.logger.Error("Listing walk aborted", zap.Error(err))
		summary.WalkErr = err
	}
	return summary
}

// processNotice builds the record for one entry. Any failure, including a
// panic in the parsing code, drops the whole notice.
func (s *Scraper) processNotice(ctx context.Context, entry ListingEntry) (notice Notice, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing notice %s: %v", entry.ID, r)
		}
	}()

	page, err := s.fetcher.Fetch(ctx, FetchRequest{URL: entry.URL, Referer: entry.Referer})
	if err != nil {
		return Notice{}, fmt.Errorf("fetch detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return Notice{}, fmt.Errorf("parse detail: %w", err)
	}
	detail := s.extractor.Extract(doc, entry.FallbackTitle)

	if _, err := s.dirs.EnsureDir(ctx, entry.ID); err != nil {
		return Notice{}, fmt.Errorf("prepare asset dir: %w", err)
	}

	content := ""
	if detail.Content != nil {
		RewriteImages(detail.Content, func(src string) (Asset, bool) {
			return s.saveAsset(ctx, entry.ID, src, entry.URL, metrics.KindImage)
		})
		content, err = goquery.OuterHtml(detail.Content)
		if err != nil {
			return Notice{}, fmt.Errorf("render content: %w", err)
		}
	} else {
		s.logger.Warn("Notice has no content region", zap.String("notice_id", entry.ID), zap.Error(ErrNoContent))
	}

	attachments := make([]Attachment, 0, len(detail.Attachments))
	for _, link := range detail.Attachments {
		asset, ok := s.saveAsset(ctx, entry.ID, link.Href, entry.URL, metrics.KindAttachment)
		if !ok {
			continue
		}
		attachments = append(attachments, Attachment{
			OriginalName: link.Name,
			Filename:     asset.Filename,
			LocalPath:    asset.LocalPath,
		})
	}

	return Notice{
		ID:          entry.ID,
		Title:       detail.Title,
		Content:     content,
		Author:      detail.Author,
		CreatedAt:   detail.CreatedAt,
		ViewCount:   detail.ViewCount,
		IsPinned:    entry.Pinned,
		Attachments: attachments,
	}, nil
}

// saveAsset downloads one referenced resource; false means the asset is
// unavailable and the caller keeps going without it.
func (s *Scraper) saveAsset(ctx context.Context, noticeID, ref, referer, kind string) (Asset, bool) {
	assetURL := s.resolver.AssetURL(ref)
	asset, err := s.downloader.Download(ctx, AssetRequest{URL: assetURL, Referer: referer, Dir: noticeID})
	if err != nil {
		s.logger.Warn("Failed to download asset",
			zap.String("notice_id", noticeID),
			zap.String("kind", kind),
			zap.String("url", assetURL),
			zap.Error(err),
		)
		s.metrics.AssetFailed(kind)
		return Asset{}, false
	}
	s.metrics.AssetSaved(kind)
	s.logger.Info("Downloaded asset", zap.String("notice_id", noticeID), zap.String("filename", asset.Filename))

	if s.mirror != nil {
		objectName := path.Join(noticeID, asset.Filename)
		if uri, err := s.mirror.Mirror(ctx, objectName, asset.LocalPath); err != nil {
			s.logger.Warn("Failed to mirror asset", zap.String("object", objectName), zap.Error(err))
			s.metrics.MirrorFailed()
		} else {
			s.logger.Debug("Mirrored asset", zap.String("uri", uri))
		}
	}
	return asset, true
}
