package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CloudLanguages are the languages offered by the hosted API.
var CloudLanguages = []string{"en", "es", "fr", "de", "zh", "ja", "ko", "ru", "ar", "hi"}

// CloudConfig holds configuration for the hosted Whisper API.
type CloudConfig struct {
	APIKey   string
	BaseURL  string // default: SDK default
	Model    string // default: "whisper-1"
	Provider string // label for logs, default: "generic"
}

// CloudTranscriber transcribes audio with an OpenAI-compatible Whisper API.
type CloudTranscriber struct {
	client   *openai.Client
	model    string
	provider string
}

func NewCloudTranscriber(cfg CloudConfig) *CloudTranscriber {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "generic"
	}
	return &CloudTranscriber{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		provider: provider,
	}
}

func (c *CloudTranscriber) Name() string { return "cloud-" + c.provider }

func (c *CloudTranscriber) SupportedLanguages() []string { return CloudLanguages }

func (c *CloudTranscriber) TranscribeAudio(ctx context.Context, audio AudioInput, language string) (*Transcription, error) {
	r, name, closeFn, err := openAudio(audio)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return c.transcribe(ctx, r, name, language)
}

func (c *CloudTranscriber) TranscribeStream(ctx context.Context, stream io.Reader, language string) (*Transcription, error) {
	return c.transcribe(ctx, stream, "stream.wav", language)
}

func (c *CloudTranscriber) transcribe(ctx context.Context, r io.Reader, name, language string) (*Transcription, error) {
	if language == "" {
		language = DefaultLanguage
	}
	slog.Debug("cloud transcription", "provider", c.provider, "language", language)

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: name,
		Reader:   r,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("%s transcription: %w", c.provider, err)
	}

	out := &Transcription{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Duration: resp.Duration,
	}
	if out.Language == "" {
		out.Language = language
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, Segment{
			Text:       strings.TrimSpace(s.Text),
			Start:      s.Start,
			End:        s.End,
			Confidence: confidenceFromLogprob(s.AvgLogprob),
		})
	}
	return out, nil
}

var _ Transcriber = (*CloudTranscriber)(nil)
