package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

type namesResponse struct {
	Count int      `json:"count"`
	Items []string `json:"items"`
}

func newNamesResponse(items []string) namesResponse {
	if items == nil {
		items = []string{}
	}
	return namesResponse{Count: len(items), Items: items}
}

// Categories lists the distinct categories, sorted.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newNamesResponse(d.Store.Categories()), d.Logger)
	}
}

// Tags lists the distinct tags, sorted.
func Tags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newNamesResponse(d.Store.Tags()), d.Logger)
	}
}

func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Store.Stats(), d.Logger)
	}
}
