package gateway

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// whitespaceRe matches runs of whitespace.
var whitespaceRe = regexp.MustCompile(`\s+`)

// stripHTML extracts the text content of a fragment and collapses whitespace.
// News API descriptions sometimes arrive with embedded markup; the display
// layer and the summarize prompt both want plain text.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	text := doc.Text()
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
