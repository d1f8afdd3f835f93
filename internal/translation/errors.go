package translation

import (
	"errors"
	"fmt"
)

// ErrEmptyText is returned when the input is empty after trimming.
var ErrEmptyText = errors.New("text is empty")

// UnsupportedLanguagePairError reports that no model could be materialized
// for a pair.
type UnsupportedLanguagePairError struct {
	Source string
	Target string
	Cause  error
}

func (e *UnsupportedLanguagePairError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unsupported language pair %s->%s: %v", e.Source, e.Target, e.Cause)
	}
	return fmt.Sprintf("unsupported language pair %s->%s", e.Source, e.Target)
}

func (e *UnsupportedLanguagePairError) Unwrap() error {
	return e.Cause
}

// TranslationExecutionError wraps a failure of a loaded model.
type TranslationExecutionError struct {
	Pair  LanguagePair
	Cause error
}

func (e *TranslationExecutionError) Error() string {
	return fmt.Sprintf("translation %s failed: %v", e.Pair, e.Cause)
}

func (e *TranslationExecutionError) Unwrap() error {
	return e.Cause
}

// LanguageDetectionError wraps a failure of the language identifier.
type LanguageDetectionError struct {
	Cause error
}

func (e *LanguageDetectionError) Error() string {
	return fmt.Sprintf("language detection failed: %v", e.Cause)
}

func (e *LanguageDetectionError) Unwrap() error {
	return e.Cause
}

// IsClientError reports whether err was caused by the request rather than
// the service.
func IsClientError(err error) bool {
	var unsupported *UnsupportedLanguagePairError
	return errors.As(err, &unsupported) || errors.Is(err, ErrEmptyText)
}
