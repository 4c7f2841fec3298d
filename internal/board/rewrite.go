package board

import (
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

const responsiveImageStyle = "max-width: 100%;"

var placeholderPattern = regexp.MustCompile(`\[\[IMG:(.+?)\]\]`)

// Placeholder returns the token that stands in for a locally saved image.
func Placeholder(filename string) string {
	return fmt.Sprintf("[[IMG:%s]]", filename)
}

// Placeholders lists the filenames referenced by placeholder tokens in content.
func Placeholders(content string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		names = append(names, m[1])
	}
	return names
}

// RewriteImages points every img in content at its saved asset. save is
// called with the raw src; when it reports false the src is left as is so
// the image keeps pointing at the remote copy. It returns the number of
// images rewritten.
func RewriteImages(content *goquery.Selection, save func(src string) (Asset, bool)) int {
	if content == nil {
		return 0
	}
	rewritten := 0
	content.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		asset, ok := save(src)
		if !ok {
			return
		}
		img.SetAttr("src", Placeholder(asset.Filename))
		img.SetAttr("style", responsiveImageStyle)
		rewritten++
	})
	return rewritten
}
