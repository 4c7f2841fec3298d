package board

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/notice-scraper/internal/metrics"
)

// DefaultMaxPages bounds the walk if the stop condition never fires.
const DefaultMaxPages = 10

const (
	viewLinkSelector = "a[href*='action=view']"
	pinImageSelector = "img[src*='notice']"
	pinMarkerText    = "공지"
	pagePlaceholder  = "{page}"
)

var seqPattern = regexp.MustCompile(`seq=(\d+)`)

// WalkerConfig controls the listing walk.
type WalkerConfig struct {
	// ListURLTemplate contains "{page}" where the 1-based page number goes.
	ListURLTemplate string
	MaxPages        int
}

// Walker pages through the listing and yields each notice link once.
type Walker struct {
	cfg      WalkerConfig
	fetcher  Fetcher
	resolver *Resolver
	metrics  *metrics.Metrics
	logger   *zap.Logger
	seen     map[string]struct{}
}

// NewWalker constructs a Walker. The seen-set lives for the Walker's lifetime.
func NewWalker(cfg WalkerConfig, fetcher Fetcher, resolver *Resolver, m *metrics.Metrics, logger *zap.Logger) *Walker {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: resolver,
		metrics:  m,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// ListURL renders the listing URL for page.
func (w *Walker) ListURL(page int) string {
	return strings.ReplaceAll(w.cfg.ListURLTemplate, pagePlaceholder, strconv.Itoa(page))
}

// Walk fetches listing pages in order and calls fn for every newly seen
// notice. It stops when a page after the first yields nothing new, after
// MaxPages pages, or on the first listing fetch error or fn error.
func (w *Walker) Walk(ctx context.Context, fn func(ListingEntry) error) error {
	referer := w.ListURL(1)
	for page := 1; page <= w.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("walk canceled: %w", err)
		}
		listURL := w.ListURL(page)
		w.logger.Info("Scraping listing page", zap.Int("page", page), zap.String("url", listURL))

		resp, err := w.fetcher.Fetch(ctx, FetchRequest{URL: listURL, Referer: referer})
		if err != nil {
			return fmt.Errorf("fetch listing page %d: %w", page, err)
		}
		w.metrics.ListingPage()
		referer = listURL

		entries, err := w.parseListing(resp.Body, page, listURL)
		if err != nil {
			return fmt.Errorf("parse listing page %d: %w", page, err)
		}
		for _, entry := range entries {
			if err := fn(entry); err != nil {
				return err
			}
		}
		if len(entries) == 0 && page > 1 {
			w.logger.Info("No new notices found, stopping", zap.Int("page", page))
			return nil
		}
	}
	w.logger.Info("Reached listing page ceiling", zap.Int("max_pages", w.cfg.MaxPages))
	return nil
}

// parseListing returns the not-yet-seen entries on a listing page and marks
// them seen.
func (w *Walker) parseListing(body []byte, page int, listURL string) ([]ListingEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var entries []ListingEntry
	doc.Find(viewLinkSelector).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		w.logger.Debug("Listing href", zap.String("href", href))
		id := noticeID(href)
		if id == "" {
			return
		}
		if _, dup := w.seen[id]; dup {
			return
		}
		w.seen[id] = struct{}{}
		entries = append(entries, ListingEntry{
			ID:            id,
			Href:          href,
			URL:           w.resolver.Resolve(href),
			Pinned:        isPinnedRow(link),
			FallbackTitle: strings.TrimSpace(link.Text()),
			Page:          page,
			Referer:       listURL,
		})
	})
	return entries, nil
}

func noticeID(href string) string {
	m := seqPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

func isPinnedRow(link *goquery.Selection) bool {
	row := link.Closest("tr")
	if row.Length() == 0 {
		return false
	}
	if strings.Contains(row.Text(), pinMarkerText) {
		return true
	}
	return row.Find(pinImageSelector).Length() > 0
}
