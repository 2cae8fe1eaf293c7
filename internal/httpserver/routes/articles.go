package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/handlers"
)

func init() { Register(registerArticles, middleware.Timeout(requestTimeout)) }

func registerArticles(r chi.Router, d deps.Deps) {
	limit := writeLimit(d)

	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", handlers.ListArticles(d))
		r.With(limit).Post("/", handlers.CreateArticle(d))
		r.Get("/recent", handlers.RecentArticles(d))

		r.Get("/{id}", handlers.GetArticle(d))
		r.With(limit).Patch("/{id}", handlers.UpdateArticle(d))
		r.With(limit).Delete("/{id}", handlers.DeleteArticle(d))
	})

	r.Get("/api/categories", handlers.Categories(d))
	r.Get("/api/tags", handlers.Tags(d))
	r.Get("/api/stats", handlers.Stats(d))
}
