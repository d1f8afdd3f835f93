package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

// AnthropicConfig holds configuration for the Anthropic cloud backend.
type AnthropicConfig struct {
	APIKey         string
	BaseURL        string
	Model          string // default: "claude-3-5-haiku-latest"
	SupportedPairs []translation.LanguagePair
}

// AnthropicRepository serves configured pairs through the Messages API.
type AnthropicRepository struct {
	client    anthropic.Client
	model     string
	supported map[translation.LanguagePair]bool
}

func NewAnthropicRepository(cfg AnthropicConfig) *AnthropicRepository {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &AnthropicRepository{
		client:    anthropic.NewClient(opts...),
		model:     model,
		supported: pairSet(cfg.SupportedPairs),
	}
}

func (r *AnthropicRepository) Load(_ context.Context, pair translation.LanguagePair) (translation.Model, error) {
	if !allowed(r.supported, pair) {
		return nil, &translation.UnsupportedLanguagePairError{Source: pair.Source, Target: pair.Target}
	}
	return &anthropicModel{
		client: r.client,
		model:  r.model,
		system: translationPrompt(pair, false),
	}, nil
}

type anthropicModel struct {
	client anthropic.Client
	model  string
	system string
}

func (m *anthropicModel) Generate(ctx context.Context, text string) (translation.Generation, error) {
	out, err := complete(ctx, m.client, m.model, m.system, text, 4096)
	if err != nil {
		return translation.Generation{}, err
	}
	return translation.Generation{Text: out}, nil
}

// AnthropicDetector identifies languages with the Messages API.
type AnthropicDetector struct {
	client anthropic.Client
	model  string
}

func NewAnthropicDetector(cfg AnthropicConfig) *AnthropicDetector {
	r := NewAnthropicRepository(cfg)
	return &AnthropicDetector{client: r.client, model: r.model}
}

func (d *AnthropicDetector) Detect(ctx context.Context, text string) (translation.DetectionOutcome, error) {
	out, err := complete(ctx, d.client, d.model, detectionPrompt, text, 64)
	if err != nil {
		return translation.DetectionOutcome{}, err
	}
	return parseDetection(out)
}

func complete(ctx context.Context, client anthropic.Client, model, system, text string, maxTokens int64) (string, error) {
	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: empty response")
	}
	return strings.TrimSpace(sb.String()), nil
}

var (
	_ translation.ModelRepository = (*AnthropicRepository)(nil)
	_ translation.Detector        = (*AnthropicDetector)(nil)
)
