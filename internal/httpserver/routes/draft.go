package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/handlers"
)

// Drafts are autosaved, so they are not rate limited.
func init() { Register(registerDraft, middleware.Timeout(requestTimeout)) }

func registerDraft(r chi.Router, d deps.Deps) {
	r.Get("/api/draft", handlers.GetDraft(d))
	r.Put("/api/draft", handlers.SaveDraft(d))
	r.Delete("/api/draft", handlers.ClearDraft(d))
}
