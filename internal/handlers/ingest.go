package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/opsglass/alertboard/internal/service"
)

// IngestAlert handles POST /alert: one event document per request,
// broadcast to all live subscribers when its event_type is "alert".
// Wrapped in the API key and rate limit middlewares.
func (h *Handler) IngestAlert(w http.ResponseWriter, r *http.Request) {
	limited := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer limited.Close()

	body, err := io.ReadAll(limited)
	if err != nil {
		h.respondError(w, "alert", http.StatusBadRequest, "not an alert")
		return
	}

	if err := h.svc.IngestAlert(r.Context(), body); err != nil {
		if errors.Is(err, service.ErrNotAlert) {
			h.respondError(w, "alert", http.StatusBadRequest, "not an alert")
			return
		}
		h.respondError(w, "alert", http.StatusInternalServerError, err.Error())
		return
	}
	h.respond(w, "alert", http.StatusOK, map[string]bool{"ok": true})
}
