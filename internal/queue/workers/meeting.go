package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
)

type MeetingWorker struct {
	base
	meetings *speech.MeetingTranscriber
}

func NewMeetingWorker(meetings *speech.MeetingTranscriber, jobs JobRecorder, opts ...Option) *MeetingWorker {
	return &MeetingWorker{base: newBase(jobs, opts), meetings: meetings}
}

func (w *MeetingWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SpeechMeetingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %v", asynq.SkipRetry, err)
	}

	slog.Info("running meeting transcription", "job_id", payload.JobID, "bytes", len(payload.Audio), "language", payload.Language)

	if err := w.jobs.MarkRunning(ctx, payload.JobID); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	audio := speech.AudioInput{Reader: bytes.NewReader(payload.Audio), Filename: payload.Filename}
	transcript, err := w.meetings.TranscribeMeeting(ctx, audio, payload.NumSpeakers, payload.Language)
	return w.finish(ctx, t, payload.JobID, payload.CallbackURL, transcript, err, never)
}
