package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kart-io/feishubot/errors"
)

// httpHandler hosts a Dispatcher on net/http
type httpHandler struct {
	dispatcher *Dispatcher
}

// NewHTTPHandler wraps a dispatcher as an http.Handler for mounting on a
// mux, e.g. mux.Handle("/webhook", webhook.NewHTTPHandler(d)).
func NewHTTPHandler(d *Dispatcher) http.Handler {
	return &httpHandler{dispatcher: d}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read error"})
		return
	}

	resp, err := h.dispatcher.Dispatch(r.Context(), body)
	if err != nil {
		status, errBody := errorStatus(err)
		writeJSON(w, status, errBody)
		return
	}

	writeJSON(w, resp.StatusCode, resp.Body)
}

// errorStatus maps a dispatch failure to the status and body written back
// to the vendor. Only payload problems are reported as such; anything else
// stays a plain server failure.
func errorStatus(err error) (int, map[string]string) {
	if errors.IsInvalidEvent(err) {
		return http.StatusBadRequest, map[string]string{"error": "invalid event"}
	}
	return http.StatusInternalServerError, map[string]string{"error": "event dispatch failed"}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
