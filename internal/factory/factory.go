// Package factory builds translation and speech handlers for the configured
// deployment mode.
package factory

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
	"github.com/nikhilbhutani/linguagateway/internal/translation/backend"
)

// Translator is the assembled translation stack. Handler is what callers
// use; Router exposes the model cache for introspection.
type Translator struct {
	Handler translation.Handler
	Router  *translation.Router
}

type options struct {
	store    translation.ResultStore
	ttl      time.Duration
	wrappers []func(translation.Handler) translation.Handler
}

type Option func(*options)

// WithResultCache caches translation results in store for ttl.
func WithResultCache(store translation.ResultStore, ttl time.Duration) Option {
	return func(o *options) {
		o.store = store
		o.ttl = ttl
	}
}

// WithWrapper decorates the handler. Wrappers apply in order, outermost last.
func WithWrapper(w func(translation.Handler) translation.Handler) Option {
	return func(o *options) {
		o.wrappers = append(o.wrappers, w)
	}
}

// NewTranslator builds the translation handler for cfg. Edge mode serves
// per-pair models from a local Ollama server and detects languages locally;
// any other mode uses a hosted model.
func NewTranslator(cfg config.DeploymentConfig, opts ...Option) (*Translator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tc := cfg.Translation
	pairs := toPairs(tc.SupportedPairs)

	var (
		detector translation.Detector
		repo     translation.ModelRepository
	)

	if cfg.IsEdge() {
		slog.Info("initializing edge translation", "model_path", tc.ModelPath, "pairs", len(pairs))
		detector = backend.NewWhatlangDetector()
		repo = backend.NewOllamaRepository(backend.OllamaConfig{
			BaseURL:        tc.Endpoint,
			ModelPath:      tc.ModelPath,
			ModelTemplate:  tc.ModelTemplate,
			SupportedPairs: pairs,
		})
	} else {
		provider := strings.ToLower(tc.Provider)
		slog.Info("initializing cloud translation", "provider", provider, "endpoint", tc.ReportedEndpoint())

		switch provider {
		case "anthropic":
			ac := anthropicConfig(tc, pairs)
			detector = backend.NewAnthropicDetector(ac)
			repo = backend.NewAnthropicRepository(ac)
		case "openai", "":
			oc := openAIConfig(tc, pairs)
			detector = backend.NewOpenAIDetector(oc)
			repo = backend.NewOpenAIRepository(oc)
		default:
			return nil, fmt.Errorf("unknown translation provider %q", tc.Provider)
		}
	}

	router, err := translation.NewRouter(detector, repo, translation.WithSupportedPairs(pairs))
	if err != nil {
		return nil, err
	}

	var h translation.Handler = router
	if o.store != nil && o.ttl > 0 {
		h = translation.NewCachingHandler(h, o.store, o.ttl)
	}
	for _, w := range o.wrappers {
		h = w(h)
	}

	return &Translator{Handler: h, Router: router}, nil
}

// NewTranscriber builds the speech-to-text handler for cfg.
func NewTranscriber(cfg config.DeploymentConfig) speech.Transcriber {
	sc := cfg.Speech
	if cfg.IsEdge() {
		slog.Info("initializing edge speech-to-text", "model_path", sc.ModelPath)
		return speech.NewEdgeTranscriber(speech.EdgeConfig{
			BaseURL:   sc.Endpoint,
			ModelPath: sc.ModelPath,
		})
	}

	slog.Info("initializing cloud speech-to-text", "provider", sc.Provider, "endpoint", sc.ReportedEndpoint())
	return speech.NewCloudTranscriber(cloudSpeechConfig(sc))
}

// An empty Endpoint keeps the SDK's own base URL.
func openAIConfig(tc config.TranslationBackend, pairs []translation.LanguagePair) backend.OpenAIConfig {
	return backend.OpenAIConfig{
		APIKey:         tc.APIKey,
		BaseURL:        tc.Endpoint,
		Model:          tc.Model,
		SupportedPairs: pairs,
	}
}

func anthropicConfig(tc config.TranslationBackend, pairs []translation.LanguagePair) backend.AnthropicConfig {
	return backend.AnthropicConfig{
		APIKey:         tc.APIKey,
		BaseURL:        tc.Endpoint,
		Model:          tc.Model,
		SupportedPairs: pairs,
	}
}

func cloudSpeechConfig(sc config.SpeechBackend) speech.CloudConfig {
	return speech.CloudConfig{
		APIKey:   sc.APIKey,
		BaseURL:  sc.Endpoint,
		Model:    sc.Model,
		Provider: sc.Provider,
	}
}

func toPairs(in []config.LanguagePair) []translation.LanguagePair {
	if len(in) == 0 {
		return nil
	}
	out := make([]translation.LanguagePair, len(in))
	for i, p := range in {
		out[i] = translation.LanguagePair{Source: p.Source, Target: p.Target}
	}
	return out
}
