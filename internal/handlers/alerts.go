package handlers

import (
	"log/slog"
	"net/http"

	"github.com/opsglass/alertboard/internal/httputil"
	"github.com/opsglass/alertboard/internal/query"
)

// Alerts handles GET /alerts. Query parameters: q (free text), size
// (1-500, default 50), from (>=0, default 0) and sort as "field:order"
// (default timestamp:desc). Reads are never authenticated or rate
// limited.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortField, sortOrder := query.ParseSort(q.Get("sort"))

	params := query.Params{
		Term:      q.Get("q"),
		SortField: sortField,
		SortOrder: sortOrder,
		From:      httputil.ParseIntParam(q.Get("from"), 0),
		Size:      httputil.ParseIntParam(q.Get("size"), 50),
	}

	resp, err := h.svc.SearchAlerts(r.Context(), params)
	if err != nil {
		slog.ErrorContext(r.Context(), "alert search failed", slog.String("error", err.Error()))
		h.respondError(w, "alerts", http.StatusInternalServerError, err.Error())
		return
	}
	h.respond(w, "alerts", http.StatusOK, resp)
}
