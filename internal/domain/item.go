package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
)

// WorkItem is one submitted page awaiting processing. ItemID is assigned by
// the caller and doubles as the idempotency key for the whole pipeline.
type WorkItem struct {
	ItemID    string
	RawMarkup string
	SourceURL string
}

// NormalizedContent is the model-ready view of a page: cleaned text plus a
// best-effort, unvalidated image candidate.
type NormalizedContent struct {
	Text     string
	ImageURL string
}

// Classification carries the confidence that a page is an ecommerce product.
type Classification struct {
	Probability float64
}

// Category enumerates the closed set of product categories.
type Category string

const (
	CategoryFootwear    Category = "Footwear"
	CategoryApparel     Category = "Apparel"
	CategoryAccessories Category = "Accessories"
	CategoryElectronics Category = "Electronics"
	CategoryHome        Category = "Home"
	CategoryBeauty      Category = "Beauty"
	CategorySports      Category = "Sports"
	CategoryToys        Category = "Toys"
	CategoryOther       Category = "Other"
)

var categories = map[Category]struct{}{
	CategoryFootwear:    {},
	CategoryApparel:     {},
	CategoryAccessories: {},
	CategoryElectronics: {},
	CategoryHome:        {},
	CategoryBeauty:      {},
	CategorySports:      {},
	CategoryToys:        {},
	CategoryOther:       {},
}

// ParseCategory matches s against the closed category set, ignoring case.
func ParseCategory(s string) (Category, error) {
	trimmed := strings.TrimSpace(s)
	if _, ok := categories[Category(trimmed)]; ok {
		return Category(trimmed), nil
	}
	for c := range categories {
		if strings.EqualFold(string(c), trimmed) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: category %q", ErrInvalidExtraction, s)
}

// ExtractedProduct is the candidate record produced by the extraction
// capability. It becomes durable only once the persistence stage succeeds.
type ExtractedProduct struct {
	Title       string   `json:"title"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency,omitempty"`
	Description string   `json:"description,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// Validate enforces the closed extraction schema: title and a known category
// are required, the currency (when present) must be a valid ISO 4217 code.
func (p *ExtractedProduct) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidExtraction)
	}
	cat, err := ParseCategory(string(p.Category))
	if err != nil {
		return err
	}
	p.Category = cat
	if p.Currency != "" {
		unit, err := currency.ParseISO(p.Currency)
		if err != nil {
			return fmt.Errorf("%w: currency %q", ErrInvalidExtraction, p.Currency)
		}
		p.Currency = unit.String()
	}
	return nil
}

// HasPrice reports whether the candidate carries a usable price value.
func (p *ExtractedProduct) HasPrice() bool {
	return p.Price > 0
}
