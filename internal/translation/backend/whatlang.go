package backend

import (
	"context"
	"errors"

	"github.com/abadojack/whatlanggo"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

// WhatlangDetector identifies languages in-process with trigram statistics.
type WhatlangDetector struct{}

func NewWhatlangDetector() *WhatlangDetector {
	return &WhatlangDetector{}
}

func (d *WhatlangDetector) Detect(_ context.Context, text string) (translation.DetectionOutcome, error) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return translation.DetectionOutcome{}, errors.New("language could not be identified")
	}

	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	if code == "" {
		return translation.DetectionOutcome{}, errors.New("language has no ISO code")
	}

	return translation.DetectionOutcome{
		DetectedLanguage: code,
		Confidence:       info.Confidence,
	}, nil
}

var _ translation.Detector = (*WhatlangDetector)(nil)
