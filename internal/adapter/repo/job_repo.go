package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"wishcdp/internal/domain"
	"wishcdp/internal/infra"
	"wishcdp/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository on the wishlist_jobs table.
// The table is the task-dispatch boundary: enqueue is an insert, retry is a
// re-queue with a future run_at, and claiming uses FOR UPDATE SKIP LOCKED so
// concurrent workers never process the same job twice.
type JobRepositoryPG struct {
	sql        infra.SQLExecutor
	retryDelay int
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)

// NewJobRepository creates a job repository. retryDelaySeconds is the fixed
// delay applied when a failed attempt is re-queued.
func NewJobRepository(sql infra.SQLExecutor, retryDelaySeconds int) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql, retryDelay: retryDelaySeconds}
}

// Enqueue inserts a queued job ready to run immediately.
func (r *JobRepositoryPG) Enqueue(ctx context.Context, job *domain.Job) error {
	payload := job.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QEnqueueJob, job.ID, string(job.Type), job.ItemID, payload); err != nil {
		return fmt.Errorf("enqueue job %s: %w", job.ID, err)
	}
	return nil
}

// Claim atomically picks the oldest runnable queued job, marks it RUNNING and
// increments its attempt counter. Returns domain.ErrNoJobAvailable when the
// queue is empty.
func (r *JobRepositoryPG) Claim(ctx context.Context) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QClaimJob)

	var j domain.Job
	var taskType string
	var payload json.RawMessage
	if err := row.Scan(&j.ID, &taskType, &j.ItemID, &payload, &j.Attempts); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNoJobAvailable
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	j.Type = domain.JobType(taskType)
	j.Status = domain.JobStatusRunning
	// Ensure payload bytes are not aliased.
	j.Payload = append([]byte(nil), payload...)
	return &j, nil
}

// Complete records the terminal status and the pipeline's result payload.
func (r *JobRepositoryPG) Complete(ctx context.Context, jobID string, status domain.JobStatus, resultJSON []byte) error {
	if len(resultJSON) == 0 {
		resultJSON = []byte("{}")
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QCompleteJob, jobID, string(status), resultJSON); err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	return nil
}

// Requeue puts a failed job back in the queue after the fixed retry delay.
func (r *JobRepositoryPG) Requeue(ctx context.Context, jobID string, resultJSON []byte) error {
	if len(resultJSON) == 0 {
		resultJSON = []byte("{}")
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QRequeueJob, jobID, r.retryDelay, resultJSON); err != nil {
		return fmt.Errorf("requeue job %s: %w", jobID, err)
	}
	return nil
}
