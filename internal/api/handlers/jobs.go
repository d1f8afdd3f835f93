package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/linguagateway/internal/jobs"
	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/webhook"
)

// Enqueuer is implemented by *queue.Client.
type Enqueuer interface {
	EnqueueTranslationBatch(payload queue.TranslationBatchPayload) error
	EnqueueSpeechMeeting(payload queue.SpeechMeetingPayload) error
}

// JobStore is implemented by *jobs.Store.
type JobStore interface {
	Create(ctx context.Context, kind string) (*jobs.Job, error)
	Get(ctx context.Context, id string) (*jobs.Job, error)
	Fail(ctx context.Context, id string, cause error) error
}

type JobHandler struct {
	queue Enqueuer
	store JobStore
}

func NewJobHandler(q Enqueuer, store JobStore) *JobHandler {
	return &JobHandler{queue: q, store: store}
}

// EnqueueBatch queues a batch translation and returns the job to poll.
func (h *JobHandler) EnqueueBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateBatch(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if !validCallback(w, req.CallbackURL) {
		return
	}

	h.submit(w, r, queue.TypeTranslationBatch, func(id string) error {
		return h.queue.EnqueueTranslationBatch(queue.TranslationBatchPayload{
			JobID:  id,
			Texts:  req.Texts,
			Target: req.Target,
			Source: req.Source,

			CallbackURL: req.CallbackURL,
		})
	})
}

// EnqueueMeeting queues a meeting recording for transcription.
func (h *JobHandler) EnqueueMeeting(w http.ResponseWriter, r *http.Request) {
	audio, cleanup, ok := audioUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	speakers, err := numSpeakers(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	callback := formValue(r, "callback_url")
	if !validCallback(w, callback) {
		return
	}

	data, err := io.ReadAll(audio.Reader)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "file is empty")
		return
	}

	h.submit(w, r, queue.TypeSpeechMeeting, func(id string) error {
		return h.queue.EnqueueSpeechMeeting(queue.SpeechMeetingPayload{
			JobID:       id,
			Audio:       data,
			Filename:    audio.Filename,
			Language:    formValue(r, "language"),
			NumSpeakers: speakers,
			CallbackURL: callback,
		})
	})
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) submit(w http.ResponseWriter, r *http.Request, kind string, enqueue func(id string) error) {
	job, err := h.store.Create(r.Context(), kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := enqueue(job.ID); err != nil {
		if ferr := h.store.Fail(r.Context(), job.ID, err); ferr != nil {
			slog.Error("failed to record job failure", "job_id", job.ID, "error", ferr)
		}
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

func validCallback(w http.ResponseWriter, raw string) bool {
	if raw == "" {
		return true
	}
	if err := webhook.ValidateURL(raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
