package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/opsglass/alertboard/internal/models"
	"github.com/opsglass/alertboard/internal/service"
)

// BlockIP handles POST /block-ip. The route is wrapped in the API key
// and rate limit middlewares; by the time this runs the request is
// authenticated and admitted.
func (h *Handler) BlockIP(w http.ResponseWriter, r *http.Request) {
	var req models.BlockRequest
	if err := decodeJSON(http.MaxBytesReader(w, r.Body, maxBodyBytes), &req); err != nil {
		h.respondError(w, "block-ip", http.StatusBadRequest, "invalid ip")
		return
	}

	resp, err := h.svc.BlockIP(r.Context(), req.IP, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrInvalidIP) {
			h.respondError(w, "block-ip", http.StatusBadRequest, "invalid ip")
			return
		}
		slog.ErrorContext(r.Context(), "block upsert failed",
			slog.String("ip", req.IP),
			slog.String("error", err.Error()))
		h.respondError(w, "block-ip", http.StatusInternalServerError, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "ip blocked",
		slog.String("ip", req.IP),
		slog.String("result", resp.Result))
	h.respond(w, "block-ip", http.StatusOK, resp)
}

// Blocked handles GET /blocked, returning every block record newest
// first as a bare JSON array.
func (h *Handler) Blocked(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListBlocked(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "blocklist read failed", slog.String("error", err.Error()))
		h.respondError(w, "blocked", http.StatusInternalServerError, err.Error())
		return
	}
	h.respond(w, "blocked", http.StatusOK, records)
}
