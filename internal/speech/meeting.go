package speech

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// UnknownSpeaker labels segments whose speaker cannot be attributed.
const UnknownSpeaker = "Unknown"

// MeetingTranscript is a transcribed meeting with labelled segments.
type MeetingTranscript struct {
	MeetingID  string    `json:"meetingId"`
	Duration   float64   `json:"duration"`
	Language   string    `json:"language"`
	Transcript []Segment `json:"transcript"`
}

// MeetingTranscriber turns a recording into speaker-labelled segments.
// No diarization model is wired, so segments are attributed only when the
// caller says there is a single speaker.
type MeetingTranscriber struct {
	stt Transcriber
}

func NewMeetingTranscriber(stt Transcriber) *MeetingTranscriber {
	return &MeetingTranscriber{stt: stt}
}

// TranscribeMeeting transcribes a whole recording. numSpeakers is a hint;
// zero means unknown.
func (m *MeetingTranscriber) TranscribeMeeting(ctx context.Context, audio AudioInput, numSpeakers int, language string) (*MeetingTranscript, error) {
	slog.Info("transcribing meeting", "speakers", numSpeakers, "language", language, "backend", m.stt.Name())

	tr, err := m.stt.TranscribeAudio(ctx, audio, language)
	if err != nil {
		return nil, err
	}
	return buildMeeting(tr, numSpeakers), nil
}

// TranscribeMeetingStream transcribes a live stream and delivers segments on
// the returned channel, which is closed when the stream is done. A failure
// is delivered on the error channel.
func (m *MeetingTranscriber) TranscribeMeetingStream(ctx context.Context, stream io.Reader, language string) (<-chan Segment, <-chan error) {
	segments := make(chan Segment, 16)
	errc := make(chan error, 1)

	go func() {
		defer close(segments)
		defer close(errc)

		slog.Info("starting real-time meeting transcription", "language", language)
		tr, err := m.stt.TranscribeStream(ctx, stream, language)
		if err != nil {
			errc <- err
			return
		}

		for _, seg := range buildMeeting(tr, 0).Transcript {
			select {
			case segments <- seg:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return segments, errc
}

func buildMeeting(tr *Transcription, numSpeakers int) *MeetingTranscript {
	speaker := UnknownSpeaker
	if numSpeakers == 1 {
		speaker = "Speaker 1"
	}

	segs := tr.Segments
	if len(segs) == 0 && tr.Text != "" {
		segs = []Segment{{Text: tr.Text, Start: 0, End: tr.Duration}}
	}

	out := make([]Segment, len(segs))
	for i, s := range segs {
		s.Speaker = speaker
		out[i] = s
	}

	return &MeetingTranscript{
		MeetingID:  uuid.NewString(),
		Duration:   tr.Duration,
		Language:   tr.Language,
		Transcript: out,
	}
}
