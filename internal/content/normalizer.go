// Package content turns raw product-page markup into model-ready text and
// locates a best-effort product image candidate. It is pure: no network or
// storage access, deterministic for deterministic input.
package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"wishcdp/internal/domain"
)

// EmptyContentSentinel is returned when markup parses but carries no text.
const EmptyContentSentinel = "No content found"

var strippedSelectors = []string{"script", "style", "nav", "header", "footer", "aside", "noscript"}

// Normalize cleans rawMarkup, caps the resulting text at textCap runes, and
// attaches a product image candidate resolved against baseURL when one is
// found. Truncation is silent; extraction quality may degrade on long pages.
func Normalize(rawMarkup, baseURL string, textCap int) domain.NormalizedContent {
	return domain.NormalizedContent{
		Text:     Truncate(CleanText(rawMarkup), textCap),
		ImageURL: FindProductImage(rawMarkup, baseURL),
	}
}

// CleanText strips non-content structural elements and extracts text from the
// most content-dense container available, falling back progressively to the
// whole document. Degenerate input yields the sentinel, never an error.
func CleanText(rawMarkup string) string {
	if strings.TrimSpace(rawMarkup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return EmptyContentSentinel
	}

	for _, selector := range strippedSelectors {
		doc.Find(selector).Remove()
	}

	region := contentRegion(doc)
	var parts []string
	for _, node := range region.Nodes {
		collectText(node, &parts)
	}
	text := strings.Join(parts, " ")
	if text == "" {
		return EmptyContentSentinel
	}
	return text
}

// collectText gathers the trimmed text nodes under n in document order.
// Joining per node keeps words in adjacent elements from fusing, which
// Selection.Text would do since it concatenates nodes with no separator.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if fields := strings.Fields(n.Data); len(fields) > 0 {
			*parts = append(*parts, strings.Join(fields, " "))
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// Truncate caps text at limit runes. A non-positive limit disables the cap.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// contentRegion picks the main content area of the page: an explicit main or
// article element, then a div whose class hints at page content, then the
// body, then the whole document.
func contentRegion(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("main").First(); sel.Length() > 0 {
		return sel
	}
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}
	if sel := firstDivWithClassHint(doc, "content"); sel != nil {
		return sel
	}
	if sel := doc.Find("body").First(); sel.Length() > 0 {
		return sel
	}
	return doc.Selection
}

func firstDivWithClassHint(doc *goquery.Document, hints ...string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("div[class]").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		class := strings.ToLower(div.AttrOr("class", ""))
		for _, hint := range hints {
			if strings.Contains(class, hint) {
				found = div
				return false
			}
		}
		return true
	})
	return found
}
