package domain

import "time"

// JobType enumerates the background tasks the worker executes.
type JobType string

const (
	JobTypeProcessItem JobType = "PROCESS_ITEM"
	JobTypeDeleteItem  JobType = "DELETE_ITEM"
)

// JobStatus enumerates job lifecycle states. Rejected is terminal and never
// retried; failed is terminal only once the attempt budget is spent.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusRejected  JobStatus = "REJECTED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Job is one unit of asynchronous work claimed from the queue table.
type Job struct {
	ID         string
	Type       JobType
	Status     JobStatus
	ItemID     string
	Payload    []byte
	Attempts   int
	RunAt      time.Time
	ResultJSON []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProcessPayload is the JSON body of a PROCESS_ITEM job.
type ProcessPayload struct {
	ItemID    string `json:"item_id"`
	RawMarkup string `json:"page_html"`
	SourceURL string `json:"source_url,omitempty"`
}
