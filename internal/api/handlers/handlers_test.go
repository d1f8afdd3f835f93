package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/linguagateway/internal/jobs"
	"github.com/nikhilbhutani/linguagateway/internal/queue"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

type fakeTranslator struct {
	err error

	lastTarget, lastSource string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target, source string) (translation.TranslationOutcome, error) {
	f.lastTarget, f.lastSource = target, source
	if f.err != nil {
		return translation.TranslationOutcome{}, f.err
	}
	if strings.TrimSpace(text) == "" {
		return translation.TranslationOutcome{}, translation.ErrEmptyText
	}
	if source == "" {
		source = "en"
	}
	return translation.TranslationOutcome{TranslatedText: strings.ToUpper(text), DetectedLanguage: source, Confidence: 0.95}, nil
}

func (f *fakeTranslator) BatchTranslate(ctx context.Context, texts []string, target, source string) ([]translation.TranslationOutcome, error) {
	out := make([]translation.TranslationOutcome, 0, len(texts))
	for _, t := range texts {
		r, err := f.Translate(ctx, t, target, source)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeTranslator) DetectLanguage(ctx context.Context, text string) (translation.DetectionOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return translation.DetectionOutcome{}, translation.ErrEmptyText
	}
	return translation.DetectionOutcome{DetectedLanguage: "fr", Confidence: 0.9}, nil
}

type fakeCatalog struct{}

func (fakeCatalog) LoadedPairs() []translation.LanguagePair {
	return []translation.LanguagePair{{Source: "en", Target: "es"}}
}

func (fakeCatalog) SupportedPairs() []translation.LanguagePair {
	return []translation.LanguagePair{{Source: "en", Target: "es"}, {Source: "en", Target: "fr"}}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestTranslate(t *testing.T) {
	h := NewTranslationHandler(&fakeTranslator{}, fakeCatalog{}, "edge")

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"text":"hello","target_language":"es"}`, http.StatusOK},
		{"missing target", `{"text":"hello"}`, http.StatusBadRequest},
		{"empty text", `{"text":"  ","target_language":"es"}`, http.StatusBadRequest},
		{"malformed", `{"text":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Translate(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body)
			}
		})
	}
}

func TestTranslate_Response(t *testing.T) {
	h := NewTranslationHandler(&fakeTranslator{}, fakeCatalog{}, "edge")
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"hello","target_language":"es","source_language":"en"}`))
	rec := httptest.NewRecorder()
	h.Translate(rec, req)

	var got translation.TranslationOutcome
	decode(t, rec, &got)
	if got.TranslatedText != "HELLO" || got.DetectedLanguage != "en" || got.Confidence != 0.95 {
		t.Errorf("unexpected outcome %+v", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestTranslate_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unsupported pair", &translation.UnsupportedLanguagePairError{Source: "en", Target: "xx"}, http.StatusBadRequest},
		{"execution failure", &translation.TranslationExecutionError{Cause: errors.New("oom")}, http.StatusInternalServerError},
		{"detection failure", &translation.LanguageDetectionError{Cause: errors.New("down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTranslationHandler(&fakeTranslator{err: tt.err}, fakeCatalog{}, "cloud")
			req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"hi","target_language":"xx"}`))
			rec := httptest.NewRecorder()
			h.Translate(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestTranslate_TrimsLanguageCodes(t *testing.T) {
	fake := &fakeTranslator{}
	h := NewTranslationHandler(fake, fakeCatalog{}, "edge")

	req := httptest.NewRequest(http.MethodPost, "/translate",
		strings.NewReader(`{"text":"hi","target_language":" es ","source_language":"\ten "}`))
	rec := httptest.NewRecorder()
	h.Translate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if fake.lastTarget != "es" || fake.lastSource != "en" {
		t.Errorf("codes not trimmed: target %q source %q", fake.lastTarget, fake.lastSource)
	}

	req = httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(`{"text":"hi","target_language":"   "}`))
	rec = httptest.NewRecorder()
	h.Translate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank target: expected 400, got %d", rec.Code)
	}
}

func TestBatch_TrimsLanguageCodes(t *testing.T) {
	fake := &fakeTranslator{}
	h := NewTranslationHandler(fake, fakeCatalog{}, "edge")

	req := httptest.NewRequest(http.MethodPost, "/translate/batch",
		strings.NewReader(`{"texts":["a","b"],"target_language":"fr ","source_language":" en"}`))
	rec := httptest.NewRecorder()
	h.Batch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if fake.lastTarget != "fr" || fake.lastSource != "en" {
		t.Errorf("codes not trimmed: target %q source %q", fake.lastTarget, fake.lastSource)
	}
}

func TestBatch(t *testing.T) {
	h := NewTranslationHandler(&fakeTranslator{}, fakeCatalog{}, "edge")
	req := httptest.NewRequest(http.MethodPost, "/translate/batch", strings.NewReader(`{"texts":["a","b"],"target_language":"es"}`))
	rec := httptest.NewRecorder()
	h.Batch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Translations []translation.TranslationOutcome `json:"translations"`
	}
	decode(t, rec, &got)
	if len(got.Translations) != 2 || got.Translations[1].TranslatedText != "B" {
		t.Errorf("unexpected translations %+v", got.Translations)
	}

	req = httptest.NewRequest(http.MethodPost, "/translate/batch", strings.NewReader(`{"texts":[],"target_language":"es"}`))
	rec = httptest.NewRecorder()
	h.Batch(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", rec.Code)
	}
}

func TestDetect(t *testing.T) {
	h := NewTranslationHandler(&fakeTranslator{}, fakeCatalog{}, "edge")

	req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader("Bonjour le monde"))
	rec := httptest.NewRecorder()
	h.Detect(rec, req)

	var got translation.DetectionOutcome
	decode(t, rec, &got)
	if rec.Code != http.StatusOK || got.DetectedLanguage != "fr" {
		t.Errorf("unexpected detection %d %+v", rec.Code, got)
	}

	req = httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(""))
	rec = httptest.NewRecorder()
	h.Detect(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: expected 400, got %d", rec.Code)
	}
}

func TestModels(t *testing.T) {
	h := NewTranslationHandler(&fakeTranslator{}, fakeCatalog{}, "edge")
	rec := httptest.NewRecorder()
	h.Models(rec, httptest.NewRequest(http.MethodGet, "/models", nil))

	var got struct {
		Mode      string   `json:"deployment_mode"`
		Loaded    []string `json:"loaded"`
		Supported []string `json:"supported"`
	}
	decode(t, rec, &got)
	if got.Mode != "edge" || len(got.Loaded) != 1 || got.Loaded[0] != "en->es" || len(got.Supported) != 2 {
		t.Errorf("unexpected models response %+v", got)
	}
}

type fakeQueue struct {
	batches  []queue.TranslationBatchPayload
	meetings []queue.SpeechMeetingPayload
	err      error
}

func (f *fakeQueue) EnqueueTranslationBatch(p queue.TranslationBatchPayload) error {
	f.batches = append(f.batches, p)
	return f.err
}

func (f *fakeQueue) EnqueueSpeechMeeting(p queue.SpeechMeetingPayload) error {
	f.meetings = append(f.meetings, p)
	return f.err
}

type fakeJobs struct {
	jobs    map[string]*jobs.Job
	failed  map[string]error
	failErr error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[string]*jobs.Job{}, failed: map[string]error{}}
}

func (f *fakeJobs) Create(ctx context.Context, kind string) (*jobs.Job, error) {
	j := &jobs.Job{ID: "job-1", Kind: kind, Status: jobs.StatusQueued}
	f.jobs[j.ID] = j
	return j, nil
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*jobs.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}
	return j, nil
}

func (f *fakeJobs) Fail(ctx context.Context, id string, cause error) error {
	f.failed[id] = cause
	return f.failErr
}

func TestJobs_EnqueueBatch(t *testing.T) {
	q := &fakeQueue{}
	store := newFakeJobs()
	h := NewJobHandler(q, store)

	req := httptest.NewRequest(http.MethodPost, "/jobs/translate", strings.NewReader(`{"texts":["a"],"target_language":"de"}`))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "/jobs/job-1" {
		t.Errorf("unexpected location %q", loc)
	}
	if len(q.batches) != 1 || q.batches[0].JobID != "job-1" || q.batches[0].Target != "de" {
		t.Errorf("unexpected payloads %+v", q.batches)
	}
}

func TestJobs_EnqueueFailureMarksJob(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	store := newFakeJobs()
	h := NewJobHandler(q, store)

	req := httptest.NewRequest(http.MethodPost, "/jobs/translate", strings.NewReader(`{"texts":["a"],"target_language":"de"}`))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if store.failed["job-1"] == nil {
		t.Error("job should be marked failed")
	}
}

func TestJobs_EnqueueFailureLogsRecordError(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	q := &fakeQueue{err: errors.New("redis down")}
	store := newFakeJobs()
	store.failErr = errors.New("job store unavailable")
	h := NewJobHandler(q, store)

	req := httptest.NewRequest(http.MethodPost, "/jobs/translate", strings.NewReader(`{"texts":["a"],"target_language":" de "}`))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if len(q.batches) != 1 || q.batches[0].Target != "de" {
		t.Errorf("unexpected payloads %+v", q.batches)
	}
	out := logs.String()
	if !strings.Contains(out, "failed to record job failure") || !strings.Contains(out, "job store unavailable") {
		t.Errorf("record error not logged: %s", out)
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(content)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestJobs_EnqueueMeeting(t *testing.T) {
	q := &fakeQueue{}
	h := NewJobHandler(q, newFakeJobs())

	body, ct := multipartBody(t, map[string]string{"num_speakers": "2", "language": "fr"}, "standup.wav", []byte("RIFF"))
	req := httptest.NewRequest(http.MethodPost, "/jobs/meeting", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.EnqueueMeeting(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}
	p := q.meetings[0]
	if p.Filename != "standup.wav" || p.NumSpeakers != 2 || p.Language != "fr" || string(p.Audio) != "RIFF" {
		t.Errorf("unexpected payload %+v", p)
	}

	body, ct = multipartBody(t, map[string]string{"num_speakers": "many"}, "standup.wav", []byte("RIFF"))
	req = httptest.NewRequest(http.MethodPost, "/jobs/meeting", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	h.EnqueueMeeting(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad num_speakers: expected 400, got %d", rec.Code)
	}
}

func TestJobs_Get(t *testing.T) {
	store := newFakeJobs()
	store.jobs["job-1"] = &jobs.Job{ID: "job-1", Status: jobs.StatusSucceeded, Result: json.RawMessage(`["Hola"]`)}
	h := NewJobHandler(&fakeQueue{}, store)

	r := chi.NewRouter()
	r.Get("/jobs/{id}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil))
	var got jobs.Job
	decode(t, rec, &got)
	if rec.Code != http.StatusOK || got.Status != jobs.StatusSucceeded {
		t.Errorf("unexpected job %d %+v", rec.Code, got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyz(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"redis":    pingerFunc(func(context.Context) error { return nil }),
		"postgres": nil,
	})
	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	h = NewHealthHandler(map[string]Pinger{
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})
	rec = httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestJobs_CallbackURL(t *testing.T) {
	q := &fakeQueue{}
	h := NewJobHandler(q, newFakeJobs())

	req := httptest.NewRequest(http.MethodPost, "/translate/batch/async",
		strings.NewReader(`{"texts":["a"],"target_language":"de","callback_url":"https://hooks.example.com/x"}`))
	rec := httptest.NewRecorder()
	h.EnqueueBatch(rec, req)
	if rec.Code != http.StatusAccepted || q.batches[0].CallbackURL != "https://hooks.example.com/x" {
		t.Errorf("unexpected %d %+v", rec.Code, q.batches)
	}

	req = httptest.NewRequest(http.MethodPost, "/translate/batch/async",
		strings.NewReader(`{"texts":["a"],"target_language":"de","callback_url":"file:///etc/passwd"}`))
	rec = httptest.NewRecorder()
	h.EnqueueBatch(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad callback, got %d", rec.Code)
	}
}
