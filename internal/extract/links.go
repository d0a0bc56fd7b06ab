package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/campus-notice-collector/internal/models"
)

var (
	// Commas are excluded because links are stored comma-joined.
	bareURLPattern = regexp.MustCompile(`https?://[-A-Za-z0-9._~:/?#@!$&*+;=%]+`)
	hrefPattern    = regexp.MustCompile(`<a\s+(?:[^>]*?\s+)?href="([^"]*)"`)
)

// ExtractLinks returns the distinct hyperlinks in text: bare URLs and
// anchor href values. HTML entities are decoded and image references are
// removed before scanning, so image URLs never appear as links.
func ExtractLinks(text string) []string {
	text = StripImages(html.UnescapeString(text))

	var links []string
	for _, u := range bareURLPattern.FindAllString(text, -1) {
		links = append(links, strings.TrimRight(u, ".;:!?"))
	}
	for _, m := range hrefPattern.FindAllStringSubmatch(text, -1) {
		links = append(links, strings.TrimSpace(m[1]))
	}

	return models.UniqueStrings(links)
}
