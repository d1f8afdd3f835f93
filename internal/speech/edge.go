package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EdgeLanguages are the languages the bundled edge models cover.
var EdgeLanguages = []string{"en", "es", "fr", "de"}

// EdgeConfig holds configuration for the whisper.cpp backend.
type EdgeConfig struct {
	BaseURL   string // default: "http://localhost:8178"
	ModelPath string // model the server was started with, for logs
}

// EdgeTranscriber transcribes audio on a local whisper.cpp server.
// Start the server with: ./server -m models/ggml-base.bin --port 8178
type EdgeTranscriber struct {
	cfg        EdgeConfig
	httpClient *http.Client
}

func NewEdgeTranscriber(cfg EdgeConfig) *EdgeTranscriber {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8178"
	}
	slog.Info("edge speech-to-text configured", "server", cfg.BaseURL, "model_path", cfg.ModelPath)
	return &EdgeTranscriber{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 300 * time.Second,
		},
	}
}

func (e *EdgeTranscriber) Name() string { return "edge-whisper" }

func (e *EdgeTranscriber) SupportedLanguages() []string { return EdgeLanguages }

// resolveLanguage falls back to English when the edge models lack lang.
func (e *EdgeTranscriber) resolveLanguage(lang string) string {
	if lang == "" {
		return DefaultLanguage
	}
	if !supports(EdgeLanguages, lang) {
		slog.Warn("language not supported in edge mode, falling back to English", "language", lang)
		return DefaultLanguage
	}
	return lang
}

func (e *EdgeTranscriber) TranscribeAudio(ctx context.Context, audio AudioInput, language string) (*Transcription, error) {
	r, name, closeFn, err := openAudio(audio)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return e.transcribe(ctx, r, name, e.resolveLanguage(language))
}

func (e *EdgeTranscriber) TranscribeStream(ctx context.Context, stream io.Reader, language string) (*Transcription, error) {
	return e.transcribe(ctx, stream, "stream.wav", e.resolveLanguage(language))
}

// transcribe sends the audio to the server using a multipart upload.
func (e *EdgeTranscriber) transcribe(ctx context.Context, audio io.Reader, filename, language string) (*Transcription, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("response_format", "verbose_json")
	_ = mw.WriteField("language", language)

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", e.cfg.BaseURL+"/inference", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
		Segments []struct {
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Text       string  `json:"text"`
			AvgLogprob float64 `json:"avg_logprob"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	out := &Transcription{
		Text:     strings.TrimSpace(apiResp.Text),
		Language: apiResp.Language,
		Duration: apiResp.Duration,
	}
	if out.Language == "" {
		out.Language = language
	}
	for _, s := range apiResp.Segments {
		out.Segments = append(out.Segments, Segment{
			Text:       strings.TrimSpace(s.Text),
			Start:      s.Start,
			End:        s.End,
			Confidence: confidenceFromLogprob(s.AvgLogprob),
		})
	}
	return out, nil
}

// openAudio returns a reader and file name for audio. The caller must call
// the returned close function.
func openAudio(audio AudioInput) (io.Reader, string, func(), error) {
	if audio.Reader != nil {
		name := audio.Filename
		if name == "" {
			name = "audio.wav"
		}
		return audio.Reader, name, func() {}, nil
	}
	if audio.FilePath == "" {
		return nil, "", nil, fmt.Errorf("audio input requires a file path or reader")
	}

	f, err := os.Open(audio.FilePath)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open audio file: %w", err)
	}
	return f, filepath.Base(audio.FilePath), func() { f.Close() }, nil
}

var _ Transcriber = (*EdgeTranscriber)(nil)
