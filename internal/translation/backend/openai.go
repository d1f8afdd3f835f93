package backend

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

// OpenAIConfig holds configuration for the OpenAI-compatible cloud backend.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string // default: SDK default
	Model          string // default: "gpt-4o-mini"
	SupportedPairs []translation.LanguagePair
}

func newOpenAIClient(cfg OpenAIConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config)
}

// OpenAIRepository serves every configured pair through a chat completion
// model. Loading a pair binds the client; no remote call is made.
type OpenAIRepository struct {
	client    *openai.Client
	model     string
	supported map[translation.LanguagePair]bool
}

func NewOpenAIRepository(cfg OpenAIConfig) *OpenAIRepository {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIRepository{
		client:    newOpenAIClient(cfg),
		model:     model,
		supported: pairSet(cfg.SupportedPairs),
	}
}

func (r *OpenAIRepository) Load(_ context.Context, pair translation.LanguagePair) (translation.Model, error) {
	if !allowed(r.supported, pair) {
		return nil, &translation.UnsupportedLanguagePairError{Source: pair.Source, Target: pair.Target}
	}
	return &openAIModel{
		client: r.client,
		model:  r.model,
		system: translationPrompt(pair, true),
	}, nil
}

type openAIModel struct {
	client *openai.Client
	model  string
	system string
}

func (m *openAIModel) Generate(ctx context.Context, text string) (translation.Generation, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return translation.Generation{}, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return translation.Generation{}, fmt.Errorf("openai chat: no choices returned")
	}

	out, err := parseTranslation(resp.Choices[0].Message.Content)
	if err != nil {
		return translation.Generation{}, err
	}
	return translation.Generation{Text: out}, nil
}

// OpenAIDetector asks a chat model to identify the language of a text.
type OpenAIDetector struct {
	client *openai.Client
	model  string
}

func NewOpenAIDetector(cfg OpenAIConfig) *OpenAIDetector {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIDetector{client: newOpenAIClient(cfg), model: model}
}

func (d *OpenAIDetector) Detect(ctx context.Context, text string) (translation.DetectionOutcome, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: detectionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return translation.DetectionOutcome{}, fmt.Errorf("openai detect: %w", err)
	}
	if len(resp.Choices) == 0 {
		return translation.DetectionOutcome{}, fmt.Errorf("openai detect: no choices returned")
	}
	return parseDetection(resp.Choices[0].Message.Content)
}

var (
	_ translation.ModelRepository = (*OpenAIRepository)(nil)
	_ translation.Detector        = (*OpenAIDetector)(nil)
)
