// Package speech provides speech-to-text handlers for cloud and edge
// deployments, plus meeting transcription built on top of them.
package speech

import (
	"context"
	"io"
	"math"
)

// DefaultLanguage is used when no language is given, and by edge handlers
// when the requested one is not available.
const DefaultLanguage = "en"

// AudioInput is audio to transcribe, either a file on disk or a reader.
type AudioInput struct {
	FilePath string    `json:"file_path,omitempty"`
	Reader   io.Reader `json:"-"`
	Filename string    `json:"filename,omitempty"` // used with Reader; default "audio.wav"
}

// Segment is a timed piece of a transcription.
type Segment struct {
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcription holds the transcription result.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments,omitempty"`
}

// Transcriber is the interface for speech-to-text backends.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audio AudioInput, language string) (*Transcription, error)
	// TranscribeStream consumes the stream until EOF and transcribes it.
	TranscribeStream(ctx context.Context, stream io.Reader, language string) (*Transcription, error)
	SupportedLanguages() []string
	Name() string
}

// confidenceFromLogprob turns Whisper's average token log probability into
// a [0,1] score.
func confidenceFromLogprob(avg float64) float64 {
	if avg == 0 {
		return 0
	}
	c := math.Exp(avg)
	if c > 1 {
		return 1
	}
	return c
}

func supports(langs []string, lang string) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
