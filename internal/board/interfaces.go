package board

import (
	"context"
	"time"
)

// Fetcher retrieves listing and detail pages.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (Page, error)
}

// Downloader persists a single asset under a notice directory.
type Downloader interface {
	Download(ctx context.Context, request AssetRequest) (Asset, error)
}

// DirMaker creates the per-notice asset directory.
type DirMaker interface {
	EnsureDir(ctx context.Context, dir string) (string, error)
}

// Mirror copies a persisted asset to secondary storage.
type Mirror interface {
	Mirror(ctx context.Context, objectName string, localPath string) (string, error)
}

// RecordSink receives finished notices in discovery order.
type RecordSink interface {
	Add(notice Notice)
}

// Pauser waits between notices.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}
