// Package download fetches board assets (inline images and attachments) and
// streams them into the asset store.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/notice-scraper/internal/board"
	"github.com/JakeFAU/notice-scraper/internal/metrics"
)

// ErrStatus is returned when the server answers with anything but 200.
var ErrStatus = errors.New("unexpected download status")

// Store persists an object and returns where it landed.
type Store interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Config controls the HTTP client used for assets.
type Config struct {
	UserAgent string
	// Timeout bounds a whole download, body included. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration
}

// Downloader implements board.Downloader with a resty client.
type Downloader struct {
	client  *resty.Client
	store   Store
	clock   Clock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds a Downloader writing into store.
func New(cfg Config, store Store, clock Clock, m *metrics.Metrics, logger *zap.Logger) *Downloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New()
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &Downloader{
		client:  client,
		store:   store,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

// Download performs a single GET and streams the body into the notice
// directory. Any failure yields an error and nothing usable.
func (d *Downloader) Download(ctx context.Context, request board.AssetRequest) (board.Asset, error) {
	req := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if request.Referer != "" {
		req.SetHeader("Referer", request.Referer)
	}
	resp, err := req.Get(request.URL)
	if resp != nil && resp.RawBody() != nil {
		defer func() {
			if cerr := resp.RawBody().Close(); cerr != nil {
				d.logger.Debug("Failed to close download body", zap.Error(cerr))
			}
		}()
	}
	if err != nil {
		return board.Asset{}, fmt.Errorf("get %s: %w", request.URL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return board.Asset{}, fmt.Errorf("%w: %d for %s", ErrStatus, resp.StatusCode(), request.URL)
	}

	filename := DeriveFilename(resp.Header().Get("Content-Disposition"), request.URL, d.clock.Now())
	body := &countingReader{r: resp.RawBody()}
	localPath, err := d.store.PutObject(
		ctx,
		path.Join(request.Dir, filename),
		resp.Header().Get("Content-Type"),
		body,
	)
	if err != nil {
		return board.Asset{}, fmt.Errorf("save %s: %w", filename, err)
	}
	d.metrics.BytesWritten(body.n)
	return board.Asset{Filename: filename, LocalPath: localPath}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
