// Package backend provides the cloud and edge implementations of the
// translation model repository and language detector.
package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

var languageNames = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"tr": "Turkish",
	"zh": "Chinese",
}

// LanguageName returns a human readable name for a short code, or the code
// itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// Languages returns the codes with known names, sorted.
func Languages() []string {
	codes := make([]string, 0, len(languageNames))
	for code := range languageNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// allowed reports whether pair is in the set. An empty set allows everything.
func allowed(set map[translation.LanguagePair]bool, pair translation.LanguagePair) bool {
	return len(set) == 0 || set[pair]
}

func pairSet(pairs []translation.LanguagePair) map[translation.LanguagePair]bool {
	set := make(map[translation.LanguagePair]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return set
}

func translationPrompt(pair translation.LanguagePair, jsonOutput bool) string {
	prompt := fmt.Sprintf(`You are a professional translator. Translate the user's text from %s to %s.
- Preserve meaning, tone and formatting (line breaks, punctuation, placeholders such as {name} or %%s).
- Do not add explanations, notes or quotes.`, LanguageName(pair.Source), LanguageName(pair.Target))

	if jsonOutput {
		prompt += `
Return a JSON object with a single key "translation" holding the translated text.
Example: {"translation": "..."}`
	} else {
		prompt += "\nReply with the translated text only."
	}
	return prompt
}

const detectionPrompt = `Identify the language of the user's text.
Return a JSON object with "language" set to the ISO 639-1 code (for example "en", "fr", "zh") and "confidence" set to a number between 0 and 1.
Example: {"language": "en", "confidence": 0.98}`

func parseTranslation(content string) (string, error) {
	var out struct {
		Translation *string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return "", fmt.Errorf("parse translation response: %w", err)
	}
	if out.Translation == nil {
		return "", fmt.Errorf("translation response missing \"translation\" key")
	}
	return *out.Translation, nil
}

func parseDetection(content string) (translation.DetectionOutcome, error) {
	var out struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return translation.DetectionOutcome{}, fmt.Errorf("parse detection response: %w", err)
	}
	lang := strings.ToLower(strings.TrimSpace(out.Language))
	if lang == "" {
		return translation.DetectionOutcome{}, fmt.Errorf("detection response missing language")
	}
	conf := out.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return translation.DetectionOutcome{DetectedLanguage: lang, Confidence: conf}, nil
}
