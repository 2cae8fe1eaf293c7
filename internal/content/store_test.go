package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/store/memory"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

// stubSource counts fetches. When gate is set, Fetch signals started and
// blocks until gate is closed.
type stubSource struct {
	mu       sync.Mutex
	articles []*domain.Article
	err      error
	calls    int
	started  chan struct{}
	gate     chan struct{}
}

func (s *stubSource) Fetch(ctx context.Context) ([]*domain.Article, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.gate != nil {
		s.started <- struct{}{}
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.Article, len(s.articles))
	for i, a := range s.articles {
		out[i] = a.Clone()
	}
	return out, nil
}

func (s *stubSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recorder collects every event emitted on a bus.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func record(bus *events.Bus, names ...string) *recorder {
	r := &recorder{}
	for _, name := range names {
		bus.Subscribe(name, func(e events.Event) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		})
	}
	return r
}

func (r *recorder) Named(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func sampleArticles() []*domain.Article {
	return []*domain.Article{
		article("sample-1", "Welcome to Quill", "News", "2024-01-01"),
	}
}

func article(id, title, category, date string) *domain.Article {
	content := strings.Repeat("Article body text that is long enough. ", 3)
	return &domain.Article{
		ID:        id,
		Title:     title,
		Author:    "Ada",
		Category:  category,
		Content:   content,
		Excerpt:   domain.Excerpt(content),
		Tags:      []string{"go"},
		Date:      date,
		ReadTime:  1,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
}

func validInput(title string) domain.ArticleInput {
	return domain.ArticleInput{
		Title:    title,
		Author:   "Grace Hopper",
		Category: "Engineering",
		Content:  strings.Repeat("c", domain.ContentMinLength),
		Tags:     []string{"go", "cache"},
		Date:     "2024-02-01",
	}
}

type fixture struct {
	store  *Store
	cache  *memory.Store
	source *stubSource
	bus    *events.Bus
}

func newFixture(t *testing.T, src *stubSource) *fixture {
	t.Helper()

	cache := memory.NewStore()
	bus := events.NewBus(logger.Nop())
	ids := 0
	opts := Options{
		Cache:  cache,
		Bus:    bus,
		Logger: logger.Nop(),
		Seed:   sampleArticles,
		Now:    func() time.Time { return fixedNow },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
	}
	if src != nil {
		opts.Source = src
	}
	return &fixture{store: NewStore(opts), cache: cache, source: src, bus: bus}
}

// ready returns an initialized store holding only the sample article.
func ready(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t, &stubSource{})
	require.NoError(t, f.store.Initialize(context.Background()))
	return f
}

func cachedArticles(t *testing.T, f *fixture) []*domain.Article {
	t.Helper()
	var out []*domain.Article
	found, err := f.cache.Get(context.Background(), ArticlesKey, &out)
	require.NoError(t, err)
	require.True(t, found, "articles should be persisted")
	return out
}

// ─────────────────────────────────────────────────────────────────
// Initialization
// ─────────────────────────────────────────────────────────────────

func TestInitializeSeedsSampleWhenEmpty(t *testing.T) {
	f := newFixture(t, &stubSource{})
	rec := record(f.bus, events.ArticlesLoaded)

	assert.Equal(t, Uninitialized, f.store.State())
	require.NoError(t, f.store.Initialize(context.Background()))

	assert.True(t, f.store.Ready())
	assert.Len(t, f.store.List(), 1)
	assert.Len(t, cachedArticles(t, f), 1)

	loaded := rec.Named(events.ArticlesLoaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, events.LoadedDetail{Count: 1, Source: events.SourceSample}, loaded[0].Detail)
}

func TestInitializeRemoteReplacesCache(t *testing.T) {
	src := &stubSource{articles: []*domain.Article{
		article("r1", "Remote one", "News", "2024-01-01"),
		article("r2", "Remote two", "News", "2024-01-02"),
	}}
	f := newFixture(t, src)
	require.NoError(t, f.cache.Set(context.Background(), ArticlesKey, []*domain.Article{
		article("c1", "Cached one", "Old", "2023-01-01"),
	}))
	rec := record(f.bus, events.ArticlesLoaded)

	require.NoError(t, f.store.Initialize(context.Background()))

	assert.Nil(t, f.store.Get("c1"))
	assert.NotNil(t, f.store.Get("r1"))
	assert.Len(t, cachedArticles(t, f), 2, "remote collection should be persisted")
	assert.Equal(t, events.SourceRemote, rec.Named(events.ArticlesLoaded)[0].Detail.(events.LoadedDetail).Source)
}

func TestInitializeFallsBackToCacheOnRemoteFailure(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	f := newFixture(t, src)
	require.NoError(t, f.cache.Set(context.Background(), ArticlesKey, []*domain.Article{
		article("c1", "Cached one", "Old", "2023-01-01"),
	}))
	rec := record(f.bus, events.ArticlesLoaded, events.CMSError)

	require.NoError(t, f.store.Initialize(context.Background()), "remote failure must not surface")

	assert.True(t, f.store.Ready())
	assert.NotNil(t, f.store.Get("c1"))
	assert.Len(t, rec.Named(events.CMSError), 1)
	assert.Equal(t, events.SourceCache, rec.Named(events.ArticlesLoaded)[0].Detail.(events.LoadedDetail).Source)
}

func TestInitializeFallsBackToSampleOnRemoteFailure(t *testing.T) {
	f := newFixture(t, &stubSource{err: errors.New("timeout")})

	require.NoError(t, f.store.Initialize(context.Background()))

	assert.NotNil(t, f.store.Get("sample-1"))
}

func TestInitializeIgnoresCorruptCache(t *testing.T) {
	f := newFixture(t, &stubSource{})
	f.cache.SetRaw(ArticlesKey, []byte("{broken"))

	require.NoError(t, f.store.Initialize(context.Background()))

	assert.NotNil(t, f.store.Get("sample-1"))
}

func TestInitializeConcurrentCallsFetchOnce(t *testing.T) {
	src := &stubSource{
		articles: []*domain.Article{article("r1", "Remote one", "News", "2024-01-01")},
		started:  make(chan struct{}, 2),
		gate:     make(chan struct{}),
	}
	f := newFixture(t, src)
	rec := record(f.bus, events.ArticlesLoaded)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.store.Initialize(context.Background())
		}(i)
	}

	<-src.started
	assert.Equal(t, Loading, f.store.State())
	close(src.gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, src.Calls())
	assert.Len(t, rec.Named(events.ArticlesLoaded), 1)
	assert.Len(t, f.store.List(), 1, "sample must not be added on top of remote")

	require.NoError(t, f.store.Initialize(context.Background()))
	assert.Equal(t, 1, src.Calls(), "initialize is a no-op once ready")
}

func TestInitializeSurvivesAnotherCallersCancellation(t *testing.T) {
	src := &stubSource{
		articles: []*domain.Article{article("r1", "Remote one", "News", "2024-01-01")},
		started:  make(chan struct{}, 2),
		gate:     make(chan struct{}),
	}
	f := newFixture(t, src)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() { errA <- f.store.Initialize(ctxA) }()
	<-src.started

	errB := make(chan error, 1)
	go func() { errB <- f.store.Initialize(context.Background()) }()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	// The live caller runs its own load.
	<-src.started
	close(src.gate)

	require.NoError(t, <-errB)
	assert.True(t, f.store.Ready())
	assert.NotNil(t, f.store.Get("r1"))
	assert.Equal(t, 2, src.Calls())
}

func TestInitializeCancelledIsRetryable(t *testing.T) {
	src := &stubSource{
		articles: []*domain.Article{article("r1", "Remote one", "News", "2024-01-01")},
		started:  make(chan struct{}, 2),
		gate:     make(chan struct{}),
	}
	f := newFixture(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.store.Initialize(ctx) }()

	<-src.started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, Failed, f.store.State())

	close(src.gate)
	require.NoError(t, f.store.Initialize(context.Background()))
	assert.True(t, f.store.Ready())
	assert.NotNil(t, f.store.Get("r1"))
}

func TestRefresh(t *testing.T) {
	src := &stubSource{}
	f := newFixture(t, src)
	require.NoError(t, f.store.Initialize(context.Background()))

	n, err := f.store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NotNil(t, f.store.Get("sample-1"), "empty remote keeps the collection")

	src.mu.Lock()
	src.articles = []*domain.Article{article("r1", "Remote one", "News", "2024-01-01")}
	src.mu.Unlock()

	n, err = f.store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, f.store.Get("r1"))
	assert.Nil(t, f.store.Get("sample-1"))

	src.mu.Lock()
	src.err = &domain.SourceError{Endpoint: "stub", Err: errors.New("down")}
	src.mu.Unlock()

	_, err = f.store.Refresh(context.Background())
	var serr *domain.SourceError
	assert.ErrorAs(t, err, &serr)
	assert.NotNil(t, f.store.Get("r1"))
}

// ─────────────────────────────────────────────────────────────────
// CRUD
// ─────────────────────────────────────────────────────────────────

func TestCreateThenGet(t *testing.T) {
	f := ready(t)
	rec := record(f.bus, events.ArticleCreated)
	in := validInput("Caching articles")

	created, err := f.store.Create(context.Background(), in)
	require.NoError(t, err)

	got := f.store.Get(created.ID)
	require.NotNil(t, got)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Author, got.Author)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.Tags, got.Tags)
	assert.Equal(t, in.Date, got.Date)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, fixedNow, got.UpdatedAt)
	assert.Equal(t, 1, got.ReadTime)
	assert.NotEmpty(t, got.Excerpt)

	assert.Equal(t, created.ID, f.store.List()[0].ID, "new articles are prepended")
	assert.Equal(t, created.ID, cachedArticles(t, f)[0].ID)
	require.Len(t, rec.Named(events.ArticleCreated), 1)
}

func TestCreateDefaultsDateToToday(t *testing.T) {
	f := ready(t)
	in := validInput("Undated article")
	in.Date = ""

	created, err := f.store.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", created.Date)
}

func TestCreateReturnsCopy(t *testing.T) {
	f := ready(t)

	created, err := f.store.Create(context.Background(), validInput("Copy semantics"))
	require.NoError(t, err)
	created.Tags[0] = "mutated"
	created.Title = "mutated"

	got := f.store.Get(created.ID)
	assert.Equal(t, "go", got.Tags[0])
	assert.Equal(t, "Copy semantics", got.Title)
}

func TestCreateValidationBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *domain.ArticleInput)
		wantErr bool
	}{
		{"title 4 chars", func(in *domain.ArticleInput) { in.Title = strings.Repeat("t", 4) }, true},
		{"title 5 chars", func(in *domain.ArticleInput) { in.Title = strings.Repeat("t", 5) }, false},
		{"title 200 chars", func(in *domain.ArticleInput) { in.Title = strings.Repeat("t", 200) }, false},
		{"title 201 chars", func(in *domain.ArticleInput) { in.Title = strings.Repeat("t", 201) }, true},
		{"content 49 chars", func(in *domain.ArticleInput) { in.Content = strings.Repeat("c", 49) }, true},
		{"content 50 chars", func(in *domain.ArticleInput) { in.Content = strings.Repeat("c", 50) }, false},
		{"11 tags", func(in *domain.ArticleInput) { in.Tags = make([]string, 11) }, true},
		{"bad image", func(in *domain.ArticleInput) { in.Image = "https://example.com/file.pdf" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready(t)
			before := f.store.Count()
			in := validInput("Boundary test")
			tt.mutate(&in)

			_, err := f.store.Create(context.Background(), in)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, before+1, f.store.Count())
				return
			}
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, before, f.store.Count())
		})
	}
}

func TestUpdateAndDeleteUnknownID(t *testing.T) {
	f := ready(t)
	title := "Whatever title"

	_, err := f.store.Update(context.Background(), "nope", domain.ArticlePatch{Title: &title})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.ID)

	_, err = f.store.Delete(context.Background(), "nope")
	require.ErrorAs(t, err, &nf)
}

func TestUpdatePartial(t *testing.T) {
	f := ready(t)
	created, err := f.store.Create(context.Background(), validInput("Original title"))
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	f.store.now = func() time.Time { return later }
	rec := record(f.bus, events.ArticleUpdated)

	content := strings.Repeat("word ", 450)
	title := "Updated title"
	updated, err := f.store.Update(context.Background(), created.ID, domain.ArticlePatch{
		Title:   &title,
		Content: &content,
	})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, created.Author, updated.Author)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, 3, updated.ReadTime, "450 words at 200 wpm")
	assert.NotEqual(t, created.Excerpt, updated.Excerpt)

	evts := rec.Named(events.ArticleUpdated)
	require.Len(t, evts, 1)
	detail := evts[0].Detail.(events.UpdatedDetail)
	assert.Equal(t, "Original title", detail.Before.Title)
	assert.Equal(t, title, detail.After.Title)
}

func TestUpdateRejectsEmptyDate(t *testing.T) {
	f := ready(t)
	empty := ""

	_, err := f.store.Update(context.Background(), "sample-1", domain.ArticlePatch{Date: &empty})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "2024-01-01", f.store.Get("sample-1").Date)
}

func TestUpdateValidatesOnlyPresentFields(t *testing.T) {
	f := ready(t)
	created, err := f.store.Create(context.Background(), validInput("Original title"))
	require.NoError(t, err)

	short := "tiny"
	_, err = f.store.Update(context.Background(), created.ID, domain.ArticlePatch{Title: &short})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Violations, 1)
	assert.Equal(t, "Original title", f.store.Get(created.ID).Title)

	author := "Someone Else"
	_, err = f.store.Update(context.Background(), created.ID, domain.ArticlePatch{Author: &author})
	assert.NoError(t, err)
}

func TestDeleteRemovesOrphanCategory(t *testing.T) {
	f := ready(t)
	in := validInput("Lonely category")
	in.Category = "Orphan"
	created, err := f.store.Create(context.Background(), in)
	require.NoError(t, err)
	require.Contains(t, f.store.Categories(), "Orphan")

	rec := record(f.bus, events.ArticleDeleted)
	removed, err := f.store.Delete(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, removed.ID)
	assert.Nil(t, f.store.Get(created.ID))
	assert.NotContains(t, f.store.Categories(), "Orphan")
	assert.Len(t, cachedArticles(t, f), 1)
	assert.Len(t, rec.Named(events.ArticleDeleted), 1)
}

func TestPersistBeforeEmit(t *testing.T) {
	f := ready(t)

	var persisted int
	f.bus.Subscribe(events.ArticleCreated, func(events.Event) {
		persisted = len(cachedArticles(t, f))
	})

	_, err := f.store.Create(context.Background(), validInput("Ordering check"))
	require.NoError(t, err)
	assert.Equal(t, 2, persisted)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	f := ready(t)
	rec := record(f.bus, events.CMSError, events.ArticleCreated)
	f.cache.FailWrites(errors.New("quota exceeded"))

	created, err := f.store.Create(context.Background(), validInput("Survives failure"))
	require.NoError(t, err)

	assert.NotNil(t, f.store.Get(created.ID))
	cmsErrs := rec.Named(events.CMSError)
	require.Len(t, cmsErrs, 1)
	assert.Equal(t, "create", cmsErrs[0].Detail.(events.ErrorDetail).Op)
	assert.Len(t, rec.Named(events.ArticleCreated), 1)
}

func TestConcurrentCreatesDoNotInterleave(t *testing.T) {
	f := ready(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.store.Create(context.Background(), validInput(fmt.Sprintf("Concurrent %02d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 21, f.store.Count())
	assert.Len(t, cachedArticles(t, f), 21)

	seen := make(map[string]bool)
	for _, a := range f.store.List() {
		assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}

// ─────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────

func TestRecentSortsByDate(t *testing.T) {
	f := newFixture(t, &stubSource{articles: []*domain.Article{
		article("a", "January post", "News", "2024-01-01"),
		article("b", "March post", "News", "2024-03-01"),
		article("c", "February post", "News", "2024-02-01"),
	}})
	require.NoError(t, f.store.Initialize(context.Background()))

	recent := f.store.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-03-01", recent[0].Date)
	assert.Equal(t, "2024-02-01", recent[1].Date)

	assert.Len(t, f.store.Recent(0), 3, "default limit covers all three")
	assert.Equal(t, "a", f.store.List()[0].ID, "list keeps insertion order")
}

func TestRecentTiesKeepCollectionOrder(t *testing.T) {
	f := newFixture(t, &stubSource{articles: []*domain.Article{
		article("first", "Same day one", "News", "2024-01-01"),
		article("second", "Same day two", "News", "2024-01-01"),
	}})
	require.NoError(t, f.store.Initialize(context.Background()))

	recent := f.store.Recent(5)
	assert.Equal(t, "first", recent[0].ID)
	assert.Equal(t, "second", recent[1].ID)
}

func TestCategoriesTagsAndListByCategory(t *testing.T) {
	a := article("a", "Alpha post", "Zeta", "2024-01-01")
	a.Tags = []string{"redis", "go"}
	b := article("b", "Beta post", "Alpha", "2024-01-02")
	b.Tags = []string{"go", "cache"}
	f := newFixture(t, &stubSource{articles: []*domain.Article{a, b}})
	require.NoError(t, f.store.Initialize(context.Background()))

	assert.Equal(t, []string{"Alpha", "Zeta"}, f.store.Categories())
	assert.Equal(t, []string{"cache", "go", "redis"}, f.store.Tags())

	zeta := f.store.ListByCategory("Zeta")
	require.Len(t, zeta, 1)
	assert.Equal(t, "a", zeta[0].ID)
	assert.Empty(t, f.store.ListByCategory("Missing"))
}

func TestStats(t *testing.T) {
	f := newFixture(t, &stubSource{articles: []*domain.Article{
		article("a", "Newest insert", "News", "2024-03-01"),
		article("b", "February post", "News", "2024-02-10"),
		article("c", "Old post", "Tips", "2023-01-01"),
	}})
	require.NoError(t, f.store.Initialize(context.Background()))

	stats := f.store.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 1, stats.Tags)
	require.NotNil(t, stats.Latest)
	assert.Equal(t, LatestArticle{Title: "Newest insert", Date: "2024-03-01"}, *stats.Latest)
	assert.Equal(t, map[string]int{"News": 2, "Tips": 1}, stats.ByCategory)
	assert.Equal(t, map[string]int{"March 2024": 1, "February 2024": 1}, stats.ByMonth)
}

func TestStatsIgnoresFutureDates(t *testing.T) {
	f := newFixture(t, &stubSource{articles: []*domain.Article{
		article("a", "Scheduled post", "News", "2025-12-01"),
		article("b", "Today post", "News", "2024-03-15"),
	}})
	require.NoError(t, f.store.Initialize(context.Background()))

	stats := f.store.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, map[string]int{"March 2024": 1}, stats.ByMonth)
}

func TestTaglessArticleKeepsEmptyTagList(t *testing.T) {
	f := newFixture(t, &stubSource{})
	bare := article("bare", "No tags here", "News", "2024-01-01")
	bare.Tags = nil
	require.NoError(t, f.cache.Set(context.Background(), ArticlesKey, []*domain.Article{bare}))
	require.NoError(t, f.store.Initialize(context.Background()))

	got := f.store.Get("bare")
	require.NotNil(t, got)
	assert.NotNil(t, got.Tags)
	assert.NotNil(t, f.store.List()[0].Tags)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":[]`)
	assert.NotContains(t, string(data), `"tags":null`)
}

// ─────────────────────────────────────────────────────────────────
// Export / import
// ─────────────────────────────────────────────────────────────────

func TestExportImportRoundTrip(t *testing.T) {
	f := ready(t)
	for i := 0; i < 3; i++ {
		_, err := f.store.Create(context.Background(), validInput(fmt.Sprintf("Round trip %d", i)))
		require.NoError(t, err)
	}
	before := f.store.List()

	payload := f.store.Export()
	assert.Equal(t, ExportVersion, payload.Version)

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := record(f.bus, events.ArticlesImported)
	n, err := f.store.ImportJSON(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, len(before), n)

	assert.Equal(t, before, f.store.List())
	require.Len(t, rec.Named(events.ArticlesImported), 1)
}

func TestImportIsAllOrNothing(t *testing.T) {
	f := ready(t)
	before := f.store.List()

	batch := make([]*domain.Article, 5)
	for i := range batch {
		batch[i] = article(fmt.Sprintf("imp-%d", i), fmt.Sprintf("Imported %d", i), "News", "2024-01-01")
	}
	batch[2].Title = "bad"

	_, err := f.store.Import(context.Background(), ImportPayload{Articles: batch})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "article 3")

	assert.Equal(t, before, f.store.List())
	assert.Len(t, cachedArticles(t, f), len(before))
}

func TestImportRejectsDuplicateIDs(t *testing.T) {
	f := ready(t)
	batch := []*domain.Article{
		article("same", "First copy", "News", "2024-01-01"),
		article("same", "Second copy", "News", "2024-01-01"),
	}

	_, err := f.store.Import(context.Background(), ImportPayload{Articles: batch})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "duplicate id")
}

func TestImportGeneratedIDsAvoidExplicitOnes(t *testing.T) {
	f := ready(t)
	ids := 0
	f.store.newID = func() string {
		ids++
		return fmt.Sprintf("gen-%d", ids)
	}

	batch := []*domain.Article{
		article("", "Needs an id", "News", "2024-01-01"),
		article("gen-1", "Explicit id", "News", "2024-01-02"),
	}
	n, err := f.store.Import(context.Background(), ImportPayload{Articles: batch})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, "Explicit id", f.store.Get("gen-1").Title)
	assert.Equal(t, "Needs an id", f.store.Get("gen-2").Title)
}

func TestImportFillsMissingFields(t *testing.T) {
	f := ready(t)
	a := article("", "Missing fields", "News", "")
	a.Excerpt = ""
	a.ReadTime = 0
	a.CreatedAt = time.Time{}
	a.UpdatedAt = time.Time{}
	a.Tags = nil

	n, err := f.store.Import(context.Background(), ImportPayload{Articles: []*domain.Article{a}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got := f.store.List()[0]
	assert.NotEmpty(t, got.ID)
	assert.NotEmpty(t, got.Excerpt)
	assert.Equal(t, 1, got.ReadTime)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "2024-03-15", got.Date)
	assert.NotNil(t, got.Tags)
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	f := ready(t)

	_, err := f.store.ImportJSON(context.Background(), []byte("not json"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.store.ImportJSON(context.Background(), []byte(`{"articles": [], "extra": true}`))
	require.ErrorAs(t, err, &verr)
	assert.NotNil(t, f.store.Get("sample-1"))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "articles-export-2024-03-15.json", ExportFileName(fixedNow))
}
