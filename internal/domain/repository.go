package domain

import "context"

// ProductRepository is the durable store contract consumed by the pipeline.
// Upsert has create-or-replace semantics keyed on the item ID; Delete cascades
// the product's price history.
type ProductRepository interface {
	UpsertProduct(ctx context.Context, itemID string, candidate ExtractedProduct, imageURL string) error
	InsertPrice(ctx context.Context, record PriceRecord) error
	DeleteProduct(ctx context.Context, itemID string) error
	UpsertDetails(ctx context.Context, itemID string, details []byte) error
	GetProduct(ctx context.Context, itemID string) (*Product, error)
}

// JobRepository defines persistence for queued background work.
type JobRepository interface {
	Enqueue(ctx context.Context, job *Job) error
	Claim(ctx context.Context) (*Job, error)
	Complete(ctx context.Context, jobID string, status JobStatus, resultJSON []byte) error
	Requeue(ctx context.Context, jobID string, resultJSON []byte) error
}
