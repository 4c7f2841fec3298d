package board

import (
	"net/url"
	"strings"
)

// Resolver turns hrefs found on the board into fully-qualified URLs.
type Resolver struct {
	origin    string
	listPath  string
	boardPath string
}

// NewResolver builds a Resolver anchored at origin. listPath is the listing
// endpoint ("/board/index.html") and boardPath the board directory ("/board/").
func NewResolver(origin, listPath, boardPath string) *Resolver {
	if !strings.HasSuffix(boardPath, "/") {
		boardPath += "/"
	}
	return &Resolver{
		origin:    strings.TrimRight(origin, "/"),
		listPath:  "/" + strings.TrimLeft(listPath, "/"),
		boardPath: "/" + strings.TrimLeft(boardPath, "/"),
	}
}

// Origin returns the scheme and host every relative href is resolved against.
func (r *Resolver) Origin() string {
	return r.origin
}

// Resolve applies the board's href rules in order; the first match wins.
func (r *Resolver) Resolve(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case hasScheme(href):
		return href
	case strings.HasPrefix(href, "?"):
		return r.origin + r.listPath + href
	case strings.HasPrefix(href, "index.html"):
		return r.origin + r.boardPath + href
	case strings.HasPrefix(href, "/"):
		return r.origin + href
	default:
		return r.origin + r.boardPath + href
	}
}

// AssetURL resolves an image src or attachment href. Unlike Resolve, bare
// relative references are anchored at the origin root.
func (r *Resolver) AssetURL(src string) string {
	src = strings.TrimSpace(src)
	switch {
	case hasScheme(src):
		return src
	case strings.HasPrefix(src, "//"):
		return r.scheme() + ":" + src
	case strings.HasPrefix(src, "/"):
		return r.origin + src
	default:
		return r.origin + "/" + src
	}
}

func (r *Resolver) scheme() string {
	if u, err := url.Parse(r.origin); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "https"
}

func hasScheme(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != ""
}
