package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/search"
)

type searchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

// Search ranks articles against ?q=. Queries shorter than
// domain.MinQueryLength return an empty result set, not an error.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		limit, err := queryInt(r, "limit", domain.DefaultSearchLimit)
		if err != nil {
			writeError(w, err, d.Logger)
			return
		}

		results := d.Search.Search(query, limit)
		if results == nil {
			results = []search.Result{}
		}

		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.Int("hits", len(results)))

		writeJSON(w, http.StatusOK, searchResponse{
			Query:   query,
			Count:   len(results),
			Results: results,
		}, d.Logger)
	}
}
