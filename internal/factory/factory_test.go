package factory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/cache"
	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

func ollamaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/show":
			w.Write([]byte(`{"modelfile": ""}`))
		case "/api/generate":
			w.Write([]byte(`{"response": "Bonjour le monde", "done": true}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func edgeConfig(endpoint string, pairs ...config.LanguagePair) config.DeploymentConfig {
	return config.DeploymentConfig{
		Mode: config.ModeEdge,
		Translation: config.TranslationBackend{
			Endpoint:       endpoint,
			ModelPath:      "models/translation",
			SupportedPairs: pairs,
		},
	}
}

func TestNewTranslator_Edge(t *testing.T) {
	srv := ollamaServer(t)
	defer srv.Close()

	tr, err := NewTranslator(edgeConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	out, err := tr.Handler.Translate(context.Background(), "Hello world", "fr", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out.TranslatedText != "Bonjour le monde" || out.DetectedLanguage != "en" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if out.Confidence != translation.PlaceholderConfidence {
		t.Errorf("expected placeholder confidence, got %v", out.Confidence)
	}

	loaded := tr.Router.LoadedPairs()
	if len(loaded) != 1 || loaded[0] != (translation.LanguagePair{Source: "en", Target: "fr"}) {
		t.Errorf("unexpected loaded pairs %v", loaded)
	}
}

func TestNewTranslator_EdgeDetectsSource(t *testing.T) {
	srv := ollamaServer(t)
	defer srv.Close()

	tr, err := NewTranslator(edgeConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	out, err := tr.Handler.Translate(context.Background(),
		"The weather is lovely today and we are going for a long walk in the park.", "fr", "")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out.DetectedLanguage != "en" {
		t.Errorf("expected en to be detected, got %q", out.DetectedLanguage)
	}
}

func TestNewTranslator_SupportedPairs(t *testing.T) {
	srv := ollamaServer(t)
	defer srv.Close()

	tr, err := NewTranslator(edgeConfig(srv.URL, config.LanguagePair{Source: "en", Target: "fr"}))
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}

	_, err = tr.Handler.Translate(context.Background(), "Hello", "ja", "en")
	var unsupported *translation.UnsupportedLanguagePairError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedLanguagePairError, got %v", err)
	}
	if len(tr.Router.SupportedPairs()) != 1 {
		t.Errorf("expected one supported pair, got %v", tr.Router.SupportedPairs())
	}
}

func TestNewTranslator_UnknownProvider(t *testing.T) {
	cfg := config.DeploymentConfig{
		Mode:        config.ModeCloud,
		Translation: config.TranslationBackend{Provider: "babelfish"},
	}
	if _, err := NewTranslator(cfg); err == nil || !strings.Contains(err.Error(), "babelfish") {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestNewTranslator_CloudProviders(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "OpenAI", ""} {
		cfg := config.DeploymentConfig{
			Mode:        config.ModeCloud,
			Translation: config.TranslationBackend{Provider: provider, APIKey: "demo-key"},
		}
		tr, err := NewTranslator(cfg)
		if err != nil {
			t.Errorf("provider %q: %v", provider, err)
			continue
		}
		if len(tr.Router.LoadedPairs()) != 0 {
			t.Errorf("provider %q: cache should start empty", provider)
		}
	}
}

func TestCloudDefaultsKeepSDKBaseURL(t *testing.T) {
	t.Setenv("TRANSLATION_ENDPOINT", "")
	t.Setenv("SPEECH_TO_TEXT_ENDPOINT", "")

	cfg, _ := config.LoadDeployment(filepath.Join(t.TempDir(), "missing.json"))
	if cfg.IsEdge() {
		t.Fatal("expected cloud defaults")
	}

	if got := openAIConfig(cfg.Translation, nil).BaseURL; got != "" {
		t.Errorf("openai base URL should be unset, got %q", got)
	}
	if got := anthropicConfig(cfg.Translation, nil).BaseURL; got != "" {
		t.Errorf("anthropic base URL should be unset, got %q", got)
	}
	if got := cloudSpeechConfig(cfg.Speech).BaseURL; got != "" {
		t.Errorf("speech base URL should be unset, got %q", got)
	}
}

func TestCloudEndpointOverride(t *testing.T) {
	t.Setenv("TRANSLATION_ENDPOINT", "https://llm.internal/v1")
	t.Setenv("SPEECH_TO_TEXT_ENDPOINT", "https://stt.internal/v1")

	cfg, _ := config.LoadDeployment(filepath.Join(t.TempDir(), "missing.json"))
	if got := openAIConfig(cfg.Translation, nil).BaseURL; got != "https://llm.internal/v1" {
		t.Errorf("unexpected translation base URL %q", got)
	}
	if got := cloudSpeechConfig(cfg.Speech).BaseURL; got != "https://stt.internal/v1" {
		t.Errorf("unexpected speech base URL %q", got)
	}
}

type mapStore struct {
	mu   sync.Mutex
	data map[string]translation.TranslationOutcome
}

func (s *mapStore) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return cache.ErrMiss
	}
	*dest.(*translation.TranslationOutcome) = v
	return nil
}

func (s *mapStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value.(translation.TranslationOutcome)
	return nil
}

func TestNewTranslator_Options(t *testing.T) {
	srv := ollamaServer(t)
	defer srv.Close()

	store := &mapStore{data: map[string]translation.TranslationOutcome{}}
	var wrapped bool
	tr, err := NewTranslator(edgeConfig(srv.URL),
		WithResultCache(store, time.Minute),
		WithWrapper(func(h translation.Handler) translation.Handler {
			wrapped = true
			if _, ok := h.(*translation.CachingHandler); !ok {
				t.Errorf("wrapper should receive the caching handler, got %T", h)
			}
			return h
		}),
	)
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	if !wrapped {
		t.Error("wrapper was not applied")
	}

	if _, err := tr.Handler.Translate(context.Background(), "Hello world", "fr", "en"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(store.data) != 1 {
		t.Errorf("expected one cached result, got %d", len(store.data))
	}
}

func TestNewTranscriber(t *testing.T) {
	edge := NewTranscriber(config.DeploymentConfig{Mode: config.ModeEdge})
	if edge.Name() != "edge-whisper" {
		t.Errorf("expected edge transcriber, got %q", edge.Name())
	}

	cloud := NewTranscriber(config.DeploymentConfig{
		Mode:   config.ModeCloud,
		Speech: config.SpeechBackend{Provider: "generic", APIKey: "demo-key"},
	})
	if cloud.Name() != "cloud-generic" {
		t.Errorf("expected cloud transcriber, got %q", cloud.Name())
	}
}
