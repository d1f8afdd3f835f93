package handlers

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/nikhilbhutani/linguagateway/internal/document"
)

const maxUpload = 32 << 20

type DocumentHandler struct {
	svc *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Translate accepts a multipart upload with "file", "target_language" and
// an optional "source_language".
func (h *DocumentHandler) Translate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	target := formValue(r, "target_language")
	if target == "" {
		writeError(w, http.StatusBadRequest, "target_language required")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}

	fileType := filepath.Ext(header.Filename)
	if fileType == "" {
		fileType = header.Header.Get("Content-Type")
	}

	res, err := h.svc.Translate(r.Context(), document.Request{
		Filename: header.Filename,
		FileType: fileType,
		Data:     data,
		Target:   target,
		Source:   formValue(r, "source_language"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *DocumentHandler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"types": h.svc.SupportedTypes()})
}
