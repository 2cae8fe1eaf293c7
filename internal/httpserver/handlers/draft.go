package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

// GetDraft returns the saved draft, or 204 when the slot is empty.
func GetDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := d.Drafts.Load(r.Context())
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}
		if draft == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, draft, d.Logger)
	}
}

// SaveDraft overwrites the draft slot. Draft fields are never validated.
func SaveDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.Draft
		if err := decodeJSON(w, r, maxArticleBody, &in); err != nil {
			writeError(w, err, d.Logger)
			return
		}

		saved, err := d.Drafts.Save(r.Context(), in)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, saved, d.Logger)
	}
}

func ClearDraft(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Drafts.Clear(r.Context()); err != nil {
			writeError(w, err, d.Logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
