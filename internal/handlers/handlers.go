// Package handlers wires HTTP routes to the dashboard service.
package handlers

import (
	"net/http"

	"github.com/opsglass/alertboard/internal/service"
)

// Handler holds the service and stream settings the routes need.
type Handler struct {
	svc         *service.Service
	retryHintMS int
}

// New creates a Handler instance. retryHintMS is the advisory
// reconnection interval sent to stream subscribers at connection open.
func New(svc *service.Service, retryHintMS int) *Handler {
	if retryHintMS <= 0 {
		retryHintMS = 2000
	}
	return &Handler{svc: svc, retryHintMS: retryHintMS}
}

// Health handles GET /healthz for liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, "healthz", http.StatusOK, h.svc.Health(r.Context()))
}
