// Package metrics exposes Prometheus collectors for a scrape run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Asset kinds used as the "kind" label.
const (
	KindImage      = "image"
	KindAttachment = "attachment"
)

// Metrics groups the counters recorded during one run. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	listingPages    prometheus.Counter
	noticesScraped  prometheus.Counter
	noticesSkipped  prometheus.Counter
	assetsSaved     *prometheus.CounterVec
	assetsFailed    *prometheus.CounterVec
	mirrorFailures  prometheus.Counter
	downloadedBytes prometheus.Counter
}

// New registers the run collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		listingPages: factory.NewCounter(prometheus.CounterOpts{
			Name: "notices_listing_pages_total",
			Help: "Listing pages fetched.",
		}),
		noticesScraped: factory.NewCounter(prometheus.CounterOpts{
			Name: "notices_scraped_total",
			Help: "Notices extracted and added to the aggregate.",
		}),
		noticesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "notices_skipped_total",
			Help: "Notices dropped after a detail fetch or parse failure.",
		}),
		assetsSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notices_assets_downloaded_total",
			Help: "Assets written to local storage, labeled by kind.",
		}, []string{"kind"}),
		assetsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notices_asset_failures_total",
			Help: "Assets that could not be downloaded, labeled by kind.",
		}, []string{"kind"}),
		mirrorFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "notices_mirror_failures_total",
			Help: "Assets that could not be copied to the object storage mirror.",
		}),
		downloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "notices_downloaded_bytes_total",
			Help: "Bytes written to local asset storage.",
		}),
	}
}

// ListingPage records one fetched listing page.
func (m *Metrics) ListingPage() {
	if m == nil {
		return
	}
	m.listingPages.Inc()
}

// NoticeScraped records a notice added to the aggregate.
func (m *Metrics) NoticeScraped() {
	if m == nil {
		return
	}
	m.noticesScraped.Inc()
}

// NoticeSkipped records a notice dropped on error.
func (m *Metrics) NoticeSkipped() {
	if m == nil {
		return
	}
	m.noticesSkipped.Inc()
}

// AssetSaved records a persisted asset of the given kind.
func (m *Metrics) AssetSaved(kind string) {
	if m == nil {
		return
	}
	m.assetsSaved.WithLabelValues(kind).Inc()
}

// AssetFailed records a failed asset download of the given kind.
func (m *Metrics) AssetFailed(kind string) {
	if m == nil {
		return
	}
	m.assetsFailed.WithLabelValues(kind).Inc()
}

// MirrorFailed records a failed mirror upload.
func (m *Metrics) MirrorFailed() {
	if m == nil {
		return
	}
	m.mirrorFailures.Inc()
}

// BytesWritten adds n to the downloaded byte counter.
func (m *Metrics) BytesWritten(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.downloadedBytes.Add(float64(n))
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile dumps every collector in Prometheus text format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
