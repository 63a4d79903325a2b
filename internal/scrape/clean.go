package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanHTML strips chrome elements and, when a main content region can be
// identified, keeps only that region. The output is capped to maxLen runes
// so it fits in a model prompt.
func CleanHTML(doc *goquery.Document, maxLen int) string {
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, nav, header, footer, noscript, iframe, svg").Remove()

	content := clone.Selection
	for _, sel := range []string{"main", "article", "div.content", "div.main", "div.store", "div.shop", "div.list"} {
		if s := clone.Find(sel); s.Length() > 0 {
			content = s.First()
			break
		}
	}

	html, err := goquery.OuterHtml(content)
	if err != nil {
		html, _ = clone.Html()
	}
	html = strings.TrimSpace(html)
	if r := []rune(html); len(r) > maxLen {
		html = string(r[:maxLen])
	}
	return html
}
