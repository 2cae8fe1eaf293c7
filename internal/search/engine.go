package search

import (
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/index"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// Result is one ranked search hit.
type Result struct {
	Article *domain.Article `json:"article"`
	Score   int             `json:"score"`
}

// Engine ranks free-text queries over a derived index of the collection.
// It never owns articles; Reindex must be called whenever the collection changes.
type Engine struct {
	index  *index.MemoryIndex
	logger logger.Logger
}

// NewEngine creates an engine with an empty index.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		index:  index.NewMemoryIndex(),
		logger: log,
	}
}

// Reindex rebuilds the index from articles.
func (e *Engine) Reindex(articles []*domain.Article) {
	e.index.Rebuild(articles)
	e.logger.Debug("search index rebuilt", logger.Int("count", len(articles)))
}

// Size returns the number of indexed articles.
func (e *Engine) Size() int { return e.index.Count() }

// LastIndexed returns when the index was last rebuilt (zero if never).
func (e *Engine) LastIndexed() time.Time { return e.index.GetLastReload() }

// Search returns up to limit hits for query, best first. Queries shorter
// than domain.MinQueryLength return nothing. limit <= 0 means
// domain.DefaultSearchLimit.
func (e *Engine) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	candidates := domain.RankCandidates(query, e.index.Entries())
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = Result{Article: c.Article.Clone(), Score: c.Score}
	}
	return results
}

// Attach subscribes the engine to every collection event on bus and
// reindexes from snapshot each time. It returns the subscriptions so the
// caller can detach.
func (e *Engine) Attach(bus *events.Bus, snapshot func() []*domain.Article) []events.Subscription {
	subs := make([]events.Subscription, 0, len(events.CollectionEvents))
	for _, name := range events.CollectionEvents {
		subs = append(subs, bus.Subscribe(name, func(events.Event) {
			e.Reindex(snapshot())
		}))
	}
	return subs
}
