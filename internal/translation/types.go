package translation

import (
	"context"
	"fmt"
)

// PlaceholderConfidence is reported when the model does not expose a score.
// It is not a measurement.
const PlaceholderConfidence = 0.95

// LanguagePair identifies a dedicated translation model. Codes are compared
// exactly, without case folding or normalisation.
type LanguagePair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (p LanguagePair) String() string {
	return fmt.Sprintf("%s->%s", p.Source, p.Target)
}

// TranslationOutcome is the result of a single translate call.
type TranslationOutcome struct {
	TranslatedText   string  `json:"translated_text"`
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// DetectionOutcome is the result of a language identification call.
type DetectionOutcome struct {
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
}

// Generation is the raw output of a translation model. Score is zero when
// the backend does not report one.
type Generation struct {
	Text  string
	Score float64
}

// Handler is the contract shared by every translation backend.
// An empty source language means it must be detected.
type Handler interface {
	Translate(ctx context.Context, text, target, source string) (TranslationOutcome, error)
	BatchTranslate(ctx context.Context, texts []string, target, source string) ([]TranslationOutcome, error)
	DetectLanguage(ctx context.Context, text string) (DetectionOutcome, error)
}

// Detector identifies the language of a text.
type Detector interface {
	Detect(ctx context.Context, text string) (DetectionOutcome, error)
}

// Model is a loaded model together with its tokenizer. Implementations must
// be safe for concurrent use; they are shared by all requests for a pair.
type Model interface {
	Generate(ctx context.Context, text string) (Generation, error)
}

// ModelRepository materializes models by language pair.
type ModelRepository interface {
	Load(ctx context.Context, pair LanguagePair) (Model, error)
}
