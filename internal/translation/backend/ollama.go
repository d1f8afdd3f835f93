package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

// DefaultModelTemplate names one model per pair, after the opus-mt family.
const DefaultModelTemplate = "opus-mt-{source}-{target}"

// OllamaConfig holds configuration for the edge model server.
type OllamaConfig struct {
	BaseURL        string // default: "http://localhost:11434"
	ModelPath      string // substituted for {model_path} in the template
	ModelTemplate  string // default: DefaultModelTemplate
	SupportedPairs []translation.LanguagePair
}

// OllamaRepository materializes per-pair models hosted on a local
// Ollama-compatible server.
type OllamaRepository struct {
	baseURL    string
	modelPath  string
	template   string
	supported  map[translation.LanguagePair]bool
	httpClient *http.Client
}

func NewOllamaRepository(cfg OllamaConfig) *OllamaRepository {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	tmpl := cfg.ModelTemplate
	if tmpl == "" {
		tmpl = DefaultModelTemplate
	}
	return &OllamaRepository{
		baseURL:   baseURL,
		modelPath: cfg.ModelPath,
		template:  tmpl,
		supported: pairSet(cfg.SupportedPairs),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// ModelName returns the model name used for pair.
func (r *OllamaRepository) ModelName(pair translation.LanguagePair) string {
	return strings.NewReplacer(
		"{model_path}", r.modelPath,
		"{source}", pair.Source,
		"{target}", pair.Target,
	).Replace(r.template)
}

// Load checks that the server hosts the pair's model.
func (r *OllamaRepository) Load(ctx context.Context, pair translation.LanguagePair) (translation.Model, error) {
	if !allowed(r.supported, pair) {
		return nil, &translation.UnsupportedLanguagePairError{Source: pair.Source, Target: pair.Target}
	}

	name := r.ModelName(pair)
	body, _ := json.Marshal(map[string]string{"model": name})
	httpReq, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/api/show", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama show request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama show: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &translation.UnsupportedLanguagePairError{
			Source: pair.Source,
			Target: pair.Target,
			Cause:  fmt.Errorf("model %q not found", name),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("ollama show %s: status %d", name, resp.StatusCode)
	}

	return &ollamaModel{
		baseURL:    r.baseURL,
		name:       name,
		httpClient: r.httpClient,
	}, nil
}

type ollamaModel struct {
	baseURL    string
	name       string
	httpClient *http.Client
}

type ollamaGenerateReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResp struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func (m *ollamaModel) Generate(ctx context.Context, text string) (translation.Generation, error) {
	body, _ := json.Marshal(ollamaGenerateReq{Model: m.name, Prompt: text})
	httpReq, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return translation.Generation{}, fmt.Errorf("ollama generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return translation.Generation{}, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	var oResp ollamaGenerateResp
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return translation.Generation{}, fmt.Errorf("ollama decode: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return translation.Generation{}, fmt.Errorf("ollama generate failed (status %d): %s", resp.StatusCode, oResp.Error)
	}

	return translation.Generation{Text: strings.TrimSpace(oResp.Response)}, nil
}

var _ translation.ModelRepository = (*OllamaRepository)(nil)
