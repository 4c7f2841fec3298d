package board

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Defaults applied when the detail page omits a field.
const (
	DefaultAuthor = "팜러닝"
	DefaultDate   = "2025-01-01"
)

const (
	titleSelector      = ".view-title"
	metaRowSelector    = ".list-group-item.small .row"
	authorSelector     = ".col-sm-9"
	dateSelector       = ".col-sm-2 .num-webfont"
	viewCountSelector  = ".col-sm-1 .num-webfont"
	attachmentSelector = "a[href*='download.html']"
	attachmentFallback = "attachment"
)

var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ContentStrategy picks the main content region of a detail page, returning
// nil or an empty selection when it does not apply.
type ContentStrategy func(doc *goquery.Document) *goquery.Selection

// selectorStrategy matches the first element for a fixed CSS selector.
func selectorStrategy(selector string) ContentStrategy {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(selector).First()
	}
}

// DensestBlock picks the div with the most descendant <br> and <p>
// elements. It is best-effort: on unfamiliar markup it can land on a footer
// or sidebar.
func DensestBlock(doc *goquery.Document) *goquery.Selection {
	var (
		best      *goquery.Selection
		bestScore = -1
	)
	doc.Find("div").Each(func(_ int, div *goquery.Selection) {
		score := div.Find("br").Length() + div.Find("p").Length()
		if score > bestScore {
			best, bestScore = div, score
		}
	})
	return best
}

// DefaultContentStrategies lists the content selectors in priority order,
// ending with the density heuristic.
var DefaultContentStrategies = []ContentStrategy{
	selectorStrategy("#content_viewer"),
	selectorStrategy(".bbs_memo"),
	selectorStrategy(".board_view_content"),
	selectorStrategy(".view_content"),
	DensestBlock,
}

// attachmentAreas are the file-list containers searched before the whole page.
var attachmentAreas = []string{".board_view_file", ".view_file"}

// ExtractorConfig sets the fallbacks used for missing metadata.
type ExtractorConfig struct {
	DefaultAuthor string
	DefaultDate   string
	Strategies    []ContentStrategy
}

// AttachmentLink is an attachment anchor found on a detail page.
type AttachmentLink struct {
	Href string
	Name string
}

// Detail holds the fields parsed from one detail page.
type Detail struct {
	Title       string
	Author      string
	CreatedAt   string
	ViewCount   int
	Content     *goquery.Selection
	Attachments []AttachmentLink
}

// Extractor parses detail pages.
type Extractor struct {
	cfg ExtractorConfig
}

// NewExtractor constructs an Extractor, filling unset fallbacks.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.DefaultAuthor == "" {
		cfg.DefaultAuthor = DefaultAuthor
	}
	if cfg.DefaultDate == "" {
		cfg.DefaultDate = DefaultDate
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultContentStrategies
	}
	return &Extractor{cfg: cfg}
}

// Extract reads every field from doc. fallbackTitle is the listing anchor text.
func (e *Extractor) Extract(doc *goquery.Document, fallbackTitle string) Detail {
	d := Detail{
		Title:     fallbackTitle,
		Author:    e.cfg.DefaultAuthor,
		CreatedAt: e.cfg.DefaultDate,
	}
	if title := strings.TrimSpace(doc.Find(titleSelector).First().Text()); title != "" {
		d.Title = title
	}

	if row := doc.Find(metaRowSelector).First(); row.Length() > 0 {
		if author := textOf(row, authorSelector); author != "" {
			d.Author = author
		}
		if date := textOf(row, dateSelector); date != "" {
			d.CreatedAt = date
		}
		if views := row.Find(viewCountSelector).First(); views.Length() > 0 {
			d.ViewCount = ParseViewCount(views.Text())
		}
	}

	// The structured date is unreliable; any date in the page text wins.
	if date := datePattern.FindString(doc.Text()); date != "" {
		d.CreatedAt = date
	}

	d.Content = e.content(doc)
	d.Attachments = attachmentLinks(doc, d.Content)
	return d
}

func (e *Extractor) content(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range e.cfg.Strategies {
		if sel := strategy(doc); sel != nil && sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func attachmentLinks(doc *goquery.Document, content *goquery.Selection) []AttachmentLink {
	links := doc.Find(attachmentSelector)
	for _, area := range attachmentAreas {
		if box := doc.Find(area).First(); box.Length() > 0 {
			links = box.Find(attachmentSelector)
			break
		}
	}
	var out []AttachmentLink
	links.Each(func(_ int, a *goquery.Selection) {
		if content != nil && content.Find("a").IndexOfNode(a.Get(0)) >= 0 {
			return
		}
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" {
			name = attachmentFallback
		}
		out = append(out, AttachmentLink{Href: href, Name: name})
	})
	return out
}

// ParseViewCount parses a view counter such as "1,234", returning 0 when the
// text is not a non-negative integer.
func ParseViewCount(raw string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func textOf(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}
