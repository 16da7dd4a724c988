package pipeline

// Status is the terminal outcome of one pipeline attempt.
type Status string

const (
	// StatusSuccess means the product is durable.
	StatusSuccess Status = "success"
	// StatusRejected means classification decided the page is not a product.
	// Semantic, not an error; never retried.
	StatusRejected Status = "rejected"
	// StatusError covers capability, persistence and unexpected failures.
	// Eligible for retry by the dispatch layer.
	StatusError Status = "error"
)

// Result is the structured outcome reported to the task-dispatch boundary.
// It is returned, never thrown: the pipeline maps every fault to one of these.
type Result struct {
	Status      Status   `json:"status"`
	ItemID      string   `json:"item_id"`
	Probability *float64 `json:"probability,omitempty"`
	HasImage    *bool    `json:"has_image,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Details     string   `json:"details,omitempty"`
}

// Retryable reports whether the dispatch layer may re-attempt the work item.
func (r Result) Retryable() bool {
	return r.Status == StatusError
}

func successResult(itemID string, probability float64, hasImage bool) Result {
	return Result{
		Status:      StatusSuccess,
		ItemID:      itemID,
		Probability: &probability,
		HasImage:    &hasImage,
	}
}

func rejectedResult(itemID string, probability float64) Result {
	return Result{
		Status:      StatusRejected,
		ItemID:      itemID,
		Probability: &probability,
		Reason:      "Low classification probability",
	}
}

func errorResult(itemID, reason, details string) Result {
	return Result{
		Status:  StatusError,
		ItemID:  itemID,
		Reason:  reason,
		Details: details,
	}
}
