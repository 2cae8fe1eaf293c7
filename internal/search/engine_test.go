package search

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/store/memory"
)

func art(id, title, content string) *domain.Article {
	return &domain.Article{ID: id, Title: title, Content: content, Author: "someone", Category: "misc"}
}

func TestSearchRanksTitleAboveContent(t *testing.T) {
	e := NewEngine(logger.Nop())
	e.Reindex([]*domain.Article{
		art("content-hit", "Dogs everywhere", "the cat sat on the mat"),
		art("title-hit", "My Cat Diary", "nothing relevant here"),
		art("miss", "Birds", "nothing"),
	})

	results := e.Search("cat", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "title-hit", results[0].Article.ID)
	assert.Equal(t, domain.ScoreTitleMatch, results[0].Score)
	assert.Equal(t, "content-hit", results[1].Article.ID)
	assert.Equal(t, domain.ScoreContentMatch, results[1].Score)
}

func TestSearchShortQueryIsEmpty(t *testing.T) {
	e := NewEngine(logger.Nop())
	e.Reindex([]*domain.Article{art("a", "x marks the spot", "x")})

	for _, q := range []string{"", "x", " x ", "é"} {
		assert.Empty(t, e.Search(q, 10), "query %q", q)
	}
}

func TestSearchLimitAndStableTies(t *testing.T) {
	e := NewEngine(logger.Nop())
	var articles []*domain.Article
	for i := 0; i < 15; i++ {
		articles = append(articles, art(fmt.Sprintf("a%02d", i), "Golang tips", "body"))
	}
	e.Reindex(articles)

	results := e.Search("golang", 0)
	require.Len(t, results, domain.DefaultSearchLimit)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("a%02d", i), r.Article.ID, "ties keep collection order")
	}

	assert.Len(t, e.Search("golang", 3), 3)
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	e := NewEngine(logger.Nop())
	a := art("a", "Redis Caching", "body")
	a.Tags = []string{"Performance"}
	e.Reindex([]*domain.Article{a})

	results := e.Search("PERFORMANCE", 5)
	require.Len(t, results, 1)
	assert.Equal(t, domain.ScoreTagMatch, results[0].Score)
}

func TestAttachReindexesOnStoreEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus(logger.Nop())
	store := content.NewStore(content.Options{
		Cache:  memory.NewStore(),
		Bus:    bus,
		Logger: logger.Nop(),
	})
	e := NewEngine(logger.Nop())
	subs := e.Attach(bus, store.List)
	assert.Len(t, subs, len(events.CollectionEvents))

	require.NoError(t, store.Initialize(ctx))
	assert.Equal(t, 0, e.Size())

	created, err := store.Create(ctx, domain.ArticleInput{
		Title:    "Searchable penguins",
		Author:   "Ada",
		Category: "Nature",
		Content:  strings.Repeat("Penguins live in the southern hemisphere. ", 2),
	})
	require.NoError(t, err)
	require.Len(t, e.Search("penguins", 0), 1)

	_, err = store.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, e.Search("penguins", 0))

	for _, s := range subs {
		bus.Unsubscribe(s)
	}
	_, err = store.Create(ctx, domain.ArticleInput{
		Title:    "Detached penguins",
		Author:   "Ada",
		Category: "Nature",
		Content:  strings.Repeat("Penguins live in the southern hemisphere. ", 2),
	})
	require.NoError(t, err)
	assert.Empty(t, e.Search("penguins", 0), "detached engine is not reindexed")
}

func TestLastIndexed(t *testing.T) {
	e := NewEngine(nil)
	assert.True(t, e.LastIndexed().IsZero())

	e.Reindex([]*domain.Article{art("a", "Indexed once", "body")})
	assert.False(t, e.LastIndexed().IsZero())
	assert.Equal(t, 1, e.Size())
}
