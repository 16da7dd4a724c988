package content

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FindProductImage scans the main content areas of rawMarkup for an image
// element, preferring ones whose class or alt attributes suggest product
// semantics over a bare first-image fallback. Data URIs and obvious
// placeholder images are rejected. Relative URLs are resolved against baseURL
// when given. Returns the empty string when no qualifying candidate exists.
func FindProductImage(rawMarkup, baseURL string) string {
	if strings.TrimSpace(rawMarkup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawMarkup))
	if err != nil {
		return ""
	}

	for _, area := range imageSearchAreas(doc) {
		if area == nil || area.Length() == 0 {
			continue
		}
		if candidate := bestImageIn(area, baseURL); candidate != "" {
			return candidate
		}
	}
	return ""
}

// imageSearchAreas mirrors the content fallback chain used for text: product
// and item containers are searched before the page at large.
func imageSearchAreas(doc *goquery.Document) []*goquery.Selection {
	areas := []*goquery.Selection{
		doc.Find("main").First(),
		doc.Find("article").First(),
	}
	if div := firstDivWithClassHint(doc, "product", "item", "content"); div != nil {
		areas = append(areas, div)
	}
	areas = append(areas, doc.Find("body").First(), doc.Selection)
	return areas
}

func bestImageIn(area *goquery.Selection, baseURL string) string {
	matchers := []func(*goquery.Selection) bool{
		func(img *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(img.AttrOr("class", "")), "product")
		},
		func(img *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(img.AttrOr("class", "")), "item")
		},
		func(img *goquery.Selection) bool {
			return strings.Contains(strings.ToLower(img.AttrOr("alt", "")), "product")
		},
		func(*goquery.Selection) bool { return true },
	}

	imgs := area.Find("img[src]")
	for _, matches := range matchers {
		var found string
		imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
			if !matches(img) {
				return true
			}
			src := strings.TrimSpace(img.AttrOr("src", ""))
			if !usableImageURL(src) {
				return true
			}
			found = resolveAgainst(baseURL, src)
			return false
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// usableImageURL rejects data URIs and URLs carrying placeholder or loading
// markers, which point at transient assets rather than the product shot.
func usableImageURL(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "data:") {
		return false
	}
	if strings.Contains(lower, "placeholder") || strings.Contains(lower, "loading") {
		return false
	}
	return true
}

func resolveAgainst(baseURL, src string) string {
	if baseURL == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
