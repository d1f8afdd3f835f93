package handlers

import (
	"net/http"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/audit"
)

const defaultStatsWindow = 24 * time.Hour

type AdminHandler struct {
	auditSvc *audit.Service
}

func NewAdminHandler(auditSvc *audit.Service) *AdminHandler {
	return &AdminHandler{auditSvc: auditSvc}
}

// Stats summarises translation traffic per language pair. The window starts
// at the RFC 3339 "since" query parameter, or 24 hours ago.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-defaultStatsWindow)
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	summary, err := h.auditSvc.Summary(r.Context(), since)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if summary == nil {
		summary = []audit.PairSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"since": since.UTC().Format(time.RFC3339),
		"pairs": summary,
	})
}
