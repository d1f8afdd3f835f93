package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Router routes translate requests to per-pair models, detecting the source
// language when the caller does not provide one.
type Router struct {
	detector  Detector
	models    *modelCache
	supported []LanguagePair
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSupportedPairs records the configured pairs reported by SupportedPairs.
// It does not restrict loading; the repository decides what it can serve.
func WithSupportedPairs(pairs []LanguagePair) RouterOption {
	return func(r *Router) {
		r.supported = pairs
	}
}

// NewRouter creates a Router with an empty model cache.
func NewRouter(detector Detector, repo ModelRepository, opts ...RouterOption) (*Router, error) {
	if detector == nil {
		return nil, errors.New("translation router requires a language detector")
	}
	if repo == nil {
		return nil, errors.New("translation router requires a model repository")
	}

	r := &Router{
		detector: detector,
		models:   newModelCache(repo),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Translate translates text into target. An empty source is detected first.
func (r *Router) Translate(ctx context.Context, text, target, source string) (TranslationOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return TranslationOutcome{}, ErrEmptyText
	}

	if source == "" {
		det, err := r.DetectLanguage(ctx, text)
		if err != nil {
			return TranslationOutcome{}, err
		}
		source = det.DetectedLanguage
	}

	if source == target {
		return TranslationOutcome{
			TranslatedText:   text,
			DetectedLanguage: source,
			Confidence:       1.0,
		}, nil
	}

	pair := LanguagePair{Source: source, Target: target}
	model, err := r.models.get(ctx, pair)
	if err != nil {
		var unsupported *UnsupportedLanguagePairError
		if errors.As(err, &unsupported) {
			return TranslationOutcome{}, err
		}
		return TranslationOutcome{}, &UnsupportedLanguagePairError{Source: source, Target: target, Cause: err}
	}

	gen, err := model.Generate(ctx, text)
	if err != nil {
		return TranslationOutcome{}, &TranslationExecutionError{Pair: pair, Cause: err}
	}

	confidence := gen.Score
	if confidence <= 0 || confidence > 1 {
		confidence = PlaceholderConfidence
	}

	return TranslationOutcome{
		TranslatedText:   gen.Text,
		DetectedLanguage: source,
		Confidence:       confidence,
	}, nil
}

// BatchTranslate translates each text in order. The first failure aborts the
// batch.
func (r *Router) BatchTranslate(ctx context.Context, texts []string, target, source string) ([]TranslationOutcome, error) {
	out := make([]TranslationOutcome, 0, len(texts))
	for i, text := range texts {
		res, err := r.Translate(ctx, text, target, source)
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// DetectLanguage identifies the language of text.
func (r *Router) DetectLanguage(ctx context.Context, text string) (DetectionOutcome, error) {
	text = strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text))
	if text == "" {
		return DetectionOutcome{}, ErrEmptyText
	}

	det, err := r.detector.Detect(ctx, text)
	if err != nil {
		return DetectionOutcome{}, &LanguageDetectionError{Cause: err}
	}
	if det.DetectedLanguage == "" {
		return DetectionOutcome{}, &LanguageDetectionError{Cause: errors.New("detector returned no language")}
	}

	slog.Debug("language detected", "language", det.DetectedLanguage, "confidence", det.Confidence)
	return det, nil
}

// LoadedPairs lists the pairs whose models are currently materialized.
func (r *Router) LoadedPairs() []LanguagePair {
	return r.models.pairs()
}

// SupportedPairs returns the configured pairs. Empty means unrestricted.
func (r *Router) SupportedPairs() []LanguagePair {
	return r.supported
}

var _ Handler = (*Router)(nil)
