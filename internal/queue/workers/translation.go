package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

type TranslationWorker struct {
	base
	handler translation.Handler
}

func NewTranslationWorker(handler translation.Handler, jobs JobRecorder, opts ...Option) *TranslationWorker {
	return &TranslationWorker{base: newBase(jobs, opts), handler: handler}
}

func (w *TranslationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.TranslationBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %v", asynq.SkipRetry, err)
	}

	slog.Info("running batch translation", "job_id", payload.JobID, "texts", len(payload.Texts), "target", payload.Target)

	if err := w.jobs.MarkRunning(ctx, payload.JobID); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	results, err := w.handler.BatchTranslate(ctx, payload.Texts, payload.Target, payload.Source)
	return w.finish(ctx, t, payload.JobID, payload.CallbackURL, results, err, translation.IsClientError)
}
