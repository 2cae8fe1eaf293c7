package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
)

const cachePingTimeout = 2 * time.Second

type componentStatus struct {
	OK       bool   `json:"ok"`
	Articles *int   `json:"articles,omitempty"`
	Indexed  *int   `json:"indexed,omitempty"`
	Reindex  string `json:"last_reindex,omitempty"`
	State    string `json:"state,omitempty"`
	Backend  string `json:"backend,omitempty"`
	Impact   string `json:"impact,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the status of the store, the search index and the durable cache.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles := d.Store.Count()
		indexed := d.Search.Size()
		lastReindex := "never"
		if t := d.Search.LastIndexed(); !t.IsZero() {
			lastReindex = t.UTC().Format(time.RFC3339)
		}

		components := map[string]componentStatus{
			"store": {
				OK:       d.Store.Ready(),
				Articles: &articles,
				State:    d.Store.State().String(),
			},
			"search": {
				OK:      indexed == articles,
				Indexed: &indexed,
				Reindex: lastReindex,
			},
			"cache": checkCache(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}, d.Logger)
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical" // not serving a collection yet
	}

	// Cache down = edits are kept in memory only and lost on restart
	if cache, exists := components["cache"]; exists && !cache.OK {
		return "degraded"
	}
	if search, exists := components["search"]; exists && !search.OK {
		return "degraded"
	}

	return "operational"
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	if d.CachePing == nil {
		return componentStatus{
			OK:      false,
			Backend: d.CacheBackend,
			Impact:  "persistence-disabled",
			Error:   "cache not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()

	if err := d.CachePing(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.CacheBackend,
			Impact:  "persistence-disabled",
			Error:   err.Error(),
		}
	}

	return componentStatus{
		OK:      true,
		Backend: d.CacheBackend,
		Impact:  "none",
	}
}
