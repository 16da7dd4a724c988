package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wishcdp/internal/domain"
	"wishcdp/internal/pipeline"

	"github.com/rs/zerolog"
)

// Processor runs one pipeline attempt for a work item.
type Processor interface {
	Process(ctx context.Context, item domain.WorkItem) pipeline.Result
}

// Options configures a Worker.
type Options struct {
	Jobs         domain.JobRepository
	Products     domain.ProductRepository
	Processor    Processor
	MaxAttempts  int
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// Worker polls the job queue and dispatches claimed jobs. An errored
// processing attempt is re-queued until the attempt budget is spent; a
// rejected item is terminal on the first attempt.
type Worker struct {
	jobs         domain.JobRepository
	products     domain.ProductRepository
	processor    Processor
	maxAttempts  int
	pollInterval time.Duration
	logger       zerolog.Logger
}

func New(opts Options) *Worker {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		jobs:         opts.Jobs,
		products:     opts.Products,
		processor:    opts.Processor,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		logger:       opts.Logger,
	}
}

// Run claims and handles jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, err := w.jobs.Claim(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrNoJobAvailable) {
				w.sleep(ctx)
				continue
			}
			w.logger.Error().Err(err).Msg("worker: claim failed")
			w.sleep(ctx)
			continue
		}

		w.Handle(ctx, job)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.pollInterval):
	}
}

// Handle executes one claimed job through to a terminal status or a re-queue.
func (w *Worker) Handle(ctx context.Context, job *domain.Job) {
	w.logger.Info().Str("job_id", job.ID).Str("task_type", string(job.Type)).
		Int("attempt", job.Attempts).Msg("worker: picked job")

	switch job.Type {
	case domain.JobTypeProcessItem:
		w.handleProcess(ctx, job)
	case domain.JobTypeDeleteItem:
		w.handleDelete(ctx, job)
	default:
		w.complete(ctx, job.ID, domain.JobStatusFailed,
			failureJSON(job.ItemID, fmt.Sprintf("unsupported job type %q", job.Type)))
	}
}

func (w *Worker) handleProcess(ctx context.Context, job *domain.Job) {
	var payload domain.ProcessPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		// A malformed payload can never succeed; no retry.
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: decode payload failed")
		w.complete(ctx, job.ID, domain.JobStatusFailed,
			failureJSON(job.ItemID, "malformed job payload"))
		return
	}

	result := w.processor.Process(ctx, domain.WorkItem{
		ItemID:    payload.ItemID,
		RawMarkup: payload.RawMarkup,
		SourceURL: payload.SourceURL,
	})
	resultJSON, err := json.Marshal(result)
	if err != nil {
		resultJSON = failureJSON(job.ItemID, "unencodable result")
	}

	switch {
	case result.Status == pipeline.StatusSuccess:
		w.complete(ctx, job.ID, domain.JobStatusSucceeded, resultJSON)
	case result.Status == pipeline.StatusRejected:
		w.complete(ctx, job.ID, domain.JobStatusRejected, resultJSON)
	case result.Retryable() && job.Attempts < w.maxAttempts:
		w.logger.Warn().Str("job_id", job.ID).Int("attempt", job.Attempts).
			Str("reason", result.Reason).Msg("worker: re-queueing failed attempt")
		if err := w.jobs.Requeue(ctx, job.ID, resultJSON); err != nil {
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: requeue failed")
		}
	default:
		w.complete(ctx, job.ID, domain.JobStatusFailed, resultJSON)
	}
}

func (w *Worker) handleDelete(ctx context.Context, job *domain.Job) {
	if err := w.products.DeleteProduct(ctx, job.ItemID); err != nil {
		w.logger.Error().Err(err).Str("item_id", job.ItemID).Msg("worker: delete failed")
		resultJSON := failureJSON(job.ItemID, err.Error())
		if job.Attempts < w.maxAttempts {
			if requeueErr := w.jobs.Requeue(ctx, job.ID, resultJSON); requeueErr != nil {
				w.logger.Error().Err(requeueErr).Str("job_id", job.ID).Msg("worker: requeue failed")
			}
			return
		}
		w.complete(ctx, job.ID, domain.JobStatusFailed, resultJSON)
		return
	}

	w.complete(ctx, job.ID, domain.JobStatusSucceeded,
		[]byte(fmt.Sprintf(`{"status":"success","item_id":%q}`, job.ItemID)))
}

func (w *Worker) complete(ctx context.Context, jobID string, status domain.JobStatus, resultJSON []byte) {
	if err := w.jobs.Complete(ctx, jobID, status, resultJSON); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: update status failed")
	}
}

func failureJSON(itemID, details string) []byte {
	out, err := json.Marshal(pipeline.Result{
		Status:  pipeline.StatusError,
		ItemID:  itemID,
		Reason:  "Dispatch failed",
		Details: details,
	})
	if err != nil {
		return []byte(`{"status":"error"}`)
	}
	return out
}
