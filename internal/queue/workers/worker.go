// Package workers executes queued translation and transcription jobs.
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/linguagateway/internal/webhook"
)

// JobRecorder records job progress; *jobs.Store implements it.
type JobRecorder interface {
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, result interface{}) error
	Fail(ctx context.Context, id string, cause error) error
}

// Notifier delivers job outcomes to callback URLs; *webhook.Dispatcher
// implements it.
type Notifier interface {
	Deliver(ctx context.Context, target, event string, payload interface{}) error
}

type Option func(*base)

// WithNotifier enables callbacks for jobs that carry a callback URL.
func WithNotifier(n Notifier) Option {
	return func(b *base) {
		b.notifier = n
	}
}

type base struct {
	jobs     JobRecorder
	notifier Notifier
}

func newBase(jobs JobRecorder, opts []Option) base {
	b := base{jobs: jobs}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type notification struct {
	JobID  string      `json:"job_id"`
	Kind   string      `json:"kind"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// finish records the outcome of a job run. Permanent failures skip asynq
// retries; transient ones are returned so the task is retried. The callback
// fires once the outcome is final.
func (b base) finish(ctx context.Context, t *asynq.Task, id, callback string, result interface{}, err error, permanent func(error) bool) error {
	if err == nil {
		if cerr := b.jobs.Complete(ctx, id, result); cerr != nil {
			return fmt.Errorf("record result: %w", cerr)
		}
		b.notify(ctx, callback, webhook.EventJobSucceeded, notification{JobID: id, Kind: t.Type(), Status: "succeeded", Result: result})
		return nil
	}

	if ferr := b.jobs.Fail(ctx, id, err); ferr != nil {
		slog.Error("failed to record job failure", "job_id", id, "error", ferr)
	}

	final := permanent(err) || lastAttempt(ctx)
	if final {
		b.notify(ctx, callback, webhook.EventJobFailed, notification{JobID: id, Kind: t.Type(), Status: "failed", Error: err.Error()})
	}
	if permanent(err) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

func (b base) notify(ctx context.Context, callback, event string, n notification) {
	if callback == "" || b.notifier == nil {
		return
	}
	if err := b.notifier.Deliver(ctx, callback, event, n); err != nil {
		slog.Warn("job callback failed", "job_id", n.JobID, "event", event, "error", err)
	}
}

// lastAttempt reports whether asynq will not retry the running task.
func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}

func never(error) bool { return false }
