package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nikhilbhutani/linguagateway/internal/speech"
)

const maxStreamAudio = 50 << 20

var errInvalidSpeakers = errors.New("num_speakers must be a non-negative integer")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type SpeechHandler struct {
	stt      speech.Transcriber
	meetings *speech.MeetingTranscriber
}

func NewSpeechHandler(stt speech.Transcriber) *SpeechHandler {
	return &SpeechHandler{stt: stt, meetings: speech.NewMeetingTranscriber(stt)}
}

// Transcribe accepts a multipart upload with "file" and optional "language".
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	audio, cleanup, ok := audioUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	res, err := h.stt.TranscribeAudio(r.Context(), audio, formValue(r, "language"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *SpeechHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backend":   h.stt.Name(),
		"languages": h.stt.SupportedLanguages(),
	})
}

// Meeting transcribes a recording with optional "num_speakers" and
// "language" form fields.
func (h *SpeechHandler) Meeting(w http.ResponseWriter, r *http.Request) {
	audio, cleanup, ok := audioUpload(w, r)
	if !ok {
		return
	}
	defer cleanup()

	speakers, err := numSpeakers(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.meetings.TranscribeMeeting(r.Context(), audio, speakers, formValue(r, "language"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type streamMessage struct {
	Type    string          `json:"type"` // "segment", "done", "error"
	Segment *speech.Segment `json:"segment,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Stream buffers binary audio frames until the client sends the text frame
// "end", then replies with one message per transcribed segment followed by
// a "done" message.
func (h *SpeechHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	language := r.URL.Query().Get("language")
	conn.SetReadLimit(maxStreamAudio)
	conn.SetReadDeadline(time.Now().Add(120 * time.Second))

	var audio bytes.Buffer
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read error", "error", err)
			}
			return
		}
		if msgType == websocket.TextMessage && string(data) == "end" {
			break
		}
		if msgType != websocket.BinaryMessage {
			conn.WriteJSON(streamMessage{Type: "error", Error: "expected binary audio frames or \"end\""})
			continue
		}
		if audio.Len()+len(data) > maxStreamAudio {
			conn.WriteJSON(streamMessage{Type: "error", Error: "audio stream too large"})
			return
		}
		audio.Write(data)
		conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	}

	slog.Info("streaming transcription", "bytes", audio.Len(), "language", language)

	segments, errc := h.meetings.TranscribeMeetingStream(r.Context(), &audio, language)
	for seg := range segments {
		seg := seg
		if err := conn.WriteJSON(streamMessage{Type: "segment", Segment: &seg}); err != nil {
			slog.Warn("websocket write failed", "error", err)
			return
		}
	}
	if err := <-errc; err != nil {
		conn.WriteJSON(streamMessage{Type: "error", Error: err.Error()})
		return
	}
	conn.WriteJSON(streamMessage{Type: "done"})
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// audioUpload parses a multipart form and returns its "file" part. On
// failure it writes the response and returns false.
func audioUpload(w http.ResponseWriter, r *http.Request) (speech.AudioInput, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return speech.AudioInput{}, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return speech.AudioInput{}, nil, false
	}

	return speech.AudioInput{Reader: file, Filename: header.Filename}, func() { file.Close() }, true
}

func numSpeakers(r *http.Request) (int, error) {
	v := r.FormValue("num_speakers")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidSpeakers
	}
	return n, nil
}
