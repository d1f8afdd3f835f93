package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/linguagateway/internal/translation"
	"github.com/nikhilbhutani/linguagateway/internal/translation/backend"
)

// ModelCatalog exposes the state of the model cache.
type ModelCatalog interface {
	LoadedPairs() []translation.LanguagePair
	SupportedPairs() []translation.LanguagePair
}

type TranslationHandler struct {
	svc     translation.Handler
	catalog ModelCatalog
	mode    string
}

func NewTranslationHandler(svc translation.Handler, catalog ModelCatalog, mode string) *TranslationHandler {
	return &TranslationHandler{svc: svc, catalog: catalog, mode: mode}
}

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target_language"`
	Source string `json:"source_language,omitempty"`
}

type batchRequest struct {
	Texts  []string `json:"texts"`
	Target string   `json:"target_language"`
	Source string   `json:"source_language,omitempty"`

	// CallbackURL is only used by the async endpoint.
	CallbackURL string `json:"callback_url,omitempty"`
}

func (h *TranslationHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Target, req.Source = trimCodes(req.Target, req.Source)
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, "target_language required")
		return
	}

	res, err := h.svc.Translate(r.Context(), req.Text, req.Target, req.Source)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TranslationHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateBatch(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.svc.BatchTranslate(r.Context(), req.Texts, req.Target, req.Source)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"translations": res})
}

// trimCodes strips whitespace around language codes so they match cached
// pairs. Case is preserved.
func trimCodes(target, source string) (string, string) {
	return strings.TrimSpace(target), strings.TrimSpace(source)
}

// validateBatch trims the language codes and reports the first problem.
func validateBatch(req *batchRequest) string {
	req.Target, req.Source = trimCodes(req.Target, req.Source)

	switch {
	case len(req.Texts) == 0:
		return "texts required"
	case req.Target == "":
		return "target_language required"
	}
	return ""
}

// Detect identifies the language of the raw request body.
func (h *TranslationHandler) Detect(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.DetectLanguage(r.Context(), string(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TranslationHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"deployment_mode": h.mode,
		"loaded":          pairStrings(h.catalog.LoadedPairs()),
		"supported":       pairStrings(h.catalog.SupportedPairs()),
	})
}

type language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *TranslationHandler) Languages(w http.ResponseWriter, r *http.Request) {
	codes := backend.Languages()
	langs := make([]language, len(codes))
	for i, c := range codes {
		langs[i] = language{Code: c, Name: backend.LanguageName(c)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"languages":       langs,
		"supported_pairs": pairStrings(h.catalog.SupportedPairs()),
	})
}

func pairStrings(pairs []translation.LanguagePair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.String()
	}
	return out
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
