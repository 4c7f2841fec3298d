package download

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

// genericPageName is the board's download endpoint; it never names a file.
const genericPageName = "download.html"

var (
	illegalFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)
	dispositionParam     = regexp.MustCompile(`filename\*?=([^;]+)`)
)

// SanitizeFilename strips characters that are illegal in file paths.
func SanitizeFilename(name string) string {
	return illegalFilenameChars.ReplaceAllString(name, "")
}

// DeriveFilename picks the local name for a download: the Content-Disposition
// filename, then the text after the URL's last "=" when the header carries
// no usable name, then the URL path basename. Empty or generic names fall
// back to a timestamped name. The result is always sanitized.
func DeriveFilename(disposition, rawURL string, now time.Time) string {
	var name string
	if strings.Contains(disposition, "filename") {
		name = dispositionFilename(disposition)
		if name == "" {
			name = afterLastEquals(rawURL)
		}
	} else {
		name = urlBasename(rawURL)
	}

	name = SanitizeFilename(strings.TrimSpace(name))
	if name == "" || name == genericPageName {
		name = fmt.Sprintf("file_%d", now.UnixMilli())
	}
	return name
}

func dispositionFilename(disposition string) string {
	var name string
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if m := dispositionParam.FindStringSubmatch(disposition); m != nil {
			name = m[1]
			if i := strings.Index(name, "''"); i >= 0 {
				name = name[i+2:]
			}
		}
	}
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}

func afterLastEquals(rawURL string) string {
	if i := strings.LastIndex(rawURL, "="); i >= 0 {
		return rawURL[i+1:]
	}
	return ""
}

func urlBasename(rawURL string) string {
	p := strings.SplitN(rawURL, "?", 2)[0]
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	if p == "" || strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}
