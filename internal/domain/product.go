package domain

import "time"

// Product is the durable record keyed by the caller-supplied item ID. A row
// exists if and only if a pipeline attempt for that ID reached the
// persistence stage and concluded without a later terminal failure.
type Product struct {
	ID          string
	Title       string
	Category    Category
	Description string
	Brand       string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceRecord is one append-only price observation for a product. Rows are
// never updated in place and are cascade-deleted with their product.
type PriceRecord struct {
	ProductID  string
	Amount     float64
	Currency   string
	CapturedAt time.Time
}

// DetailedProduct attaches the enrichment stage's second extraction pass to
// an existing product. Its absence never implies the product's absence.
type DetailedProduct struct {
	ProductID string
	Details   []byte
	UpdatedAt time.Time
}
