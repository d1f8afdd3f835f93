package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/linguagateway/internal/jobs"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
	"github.com/nikhilbhutani/linguagateway/pkg/textextract"
)

const maxJSONBody = 1 << 20

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case translation.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, textextract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
