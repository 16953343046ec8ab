package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/opsglass/alertboard/internal/httputil"
	"github.com/opsglass/alertboard/internal/metrics"
)

func (h *Handler) respond(w http.ResponseWriter, endpoint string, status int, data interface{}) {
	metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	httputil.WriteJSON(w, status, data)
}

func (h *Handler) respondError(w http.ResponseWriter, endpoint string, status int, message string) {
	metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	httputil.WriteError(w, status, message)
}

// maxBodyBytes caps request bodies on the mutating endpoints at 1 MB.
const maxBodyBytes = 1 << 20

// decodeJSON decodes JSON from a request body.
func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	return json.NewDecoder(body).Decode(dst)
}
