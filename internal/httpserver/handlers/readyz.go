package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	State    string `json:"state"`
	Articles int    `json:"articles"`
}

// Readyz answers 503 until the store has finished initializing.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if !d.Store.Ready() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{
			Ready:    d.Store.Ready(),
			State:    d.Store.State().String(),
			Articles: d.Store.Count(),
		}, d.Logger)
	}
}
