package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/handlers"
)

func init() { Register(registerTransfer, middleware.Timeout(transferTimeout)) }

func registerTransfer(r chi.Router, d deps.Deps) {
	r.Get("/api/export", handlers.Export(d))
	r.With(writeLimit(d)).Post("/api/import", handlers.Import(d))
}
