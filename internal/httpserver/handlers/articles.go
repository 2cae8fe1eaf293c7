package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

type articlesResponse struct {
	Count    int               `json:"count"`
	Articles []*domain.Article `json:"articles"`
}

func newArticlesResponse(articles []*domain.Article) articlesResponse {
	if articles == nil {
		articles = []*domain.Article{}
	}
	return articlesResponse{Count: len(articles), Articles: articles}
}

// ListArticles returns the collection, optionally narrowed by ?category=.
func ListArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var articles []*domain.Article
		if category := r.URL.Query().Get("category"); category != "" {
			articles = d.Store.ListByCategory(category)
		} else {
			articles = d.Store.List()
		}
		writeJSON(w, http.StatusOK, newArticlesResponse(articles), d.Logger)
	}
}

// RecentArticles returns the newest articles by date.
func RecentArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", content.DefaultRecentLimit)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, newArticlesResponse(d.Store.Recent(limit)), d.Logger)
	}
}

func GetArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		a := d.Store.Get(id)
		if a == nil {
			writeError(w, &domain.NotFoundError{ID: id}, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, a, d.Logger)
	}
}

func CreateArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.ArticleInput
		if err := decodeJSON(w, r, maxArticleBody, &in); err != nil {
			writeError(w, err, d.Logger)
			return
		}

		a, err := d.Store.Create(r.Context(), in)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}

		d.Logger.Info("article created via api",
			logger.String("id", a.ID),
			logger.String("remote_ip", r.RemoteAddr))
		w.Header().Set("Location", "/api/articles/"+a.ID)
		writeJSON(w, http.StatusCreated, a, d.Logger)
	}
}

func UpdateArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.ArticlePatch
		if err := decodeJSON(w, r, maxArticleBody, &patch); err != nil {
			writeError(w, err, d.Logger)
			return
		}

		a, err := d.Store.Update(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}
		writeJSON(w, http.StatusOK, a, d.Logger)
	}
}

func DeleteArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err, d.Logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
