package board

import (
	"net/http"
)

// Attachment describes one downloaded file linked from a notice.
type Attachment struct {
	OriginalName string `json:"original_name"`
	Filename     string `json:"filename"`
	LocalPath    string `json:"local_path"`
}

// Notice is the record emitted for one bulletin post.
type Notice struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Author      string       `json:"author"`
	CreatedAt   string       `json:"created_at"`
	ViewCount   int          `json:"view_count"`
	IsPinned    bool         `json:"is_pinned"`
	Attachments []Attachment `json:"attachments"`
}

// ListingEntry is yielded by the Walker for each newly seen notice link.
type ListingEntry struct {
	ID            string
	Href          string
	URL           string
	Pinned        bool
	FallbackTitle string
	Page          int
	// Referer is the listing page the link was found on.
	Referer string
}

// FetchRequest captures everything needed to fetch a board page.
type FetchRequest struct {
	URL     string
	Referer string
}

// Page is the result returned by a Fetcher implementation.
type Page struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// AssetRequest asks the downloader to persist one remote resource.
type AssetRequest struct {
	URL     string
	Referer string
	// Dir is the notice directory, relative to the asset root.
	Dir string
}

// Asset is a successfully persisted resource.
type Asset struct {
	Filename  string
	LocalPath string
}
