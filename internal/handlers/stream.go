package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
)

// Stream handles GET /stream: a long-lived text/event-stream connection
// carrying one JSON-encoded alert per message. An advisory reconnection
// interval is sent once at connection open so a disconnected client
// knows how soon to retry. The subscriber is removed when the client
// goes away.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, "stream", http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "retry: %d\n\n", h.retryHintMS)
	flusher.Flush()

	sub := h.svc.Broadcaster().Subscribe()
	defer h.svc.Broadcaster().Unsubscribe(sub)

	slog.DebugContext(r.Context(), "stream subscriber connected")

	for {
		select {
		case <-r.Context().Done():
			// Client went away; the deferred unsubscribe frees the slot.
			slog.DebugContext(r.Context(), "stream subscriber disconnected")
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", ev); err != nil {
				// Write failure: the connection is gone; context
				// cancellation will normally follow, but bail out now.
				return
			}
			flusher.Flush()
		}
	}
}
