package content

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// Cache keys. One for the collection, one for the draft slot.
const (
	ArticlesKey = "articles"
	DraftKey    = "draft"
)

// Cache is the durable key/value store the content store persists to.
// Get reports found=false with a nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Source returns the canonical article collection.
type Source interface {
	Fetch(ctx context.Context) ([]*domain.Article, error)
}

// State is the initialization state of a Store.
type State int32

const (
	Uninitialized State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Store. Cache and Bus are required.
type Options struct {
	Cache  Cache
	Source Source // nil = cache and sample only
	Bus    *events.Bus
	Logger logger.Logger

	// Seed returns the articles used when neither cache nor remote has any.
	Seed func() []*domain.Article

	Now   func() time.Time
	NewID func() string
}

// Store is the single source of truth for the article collection.
//
// Mutations are serialized by opMu and run mutate -> persist -> emit.
// mu only guards the slice itself so that subscribers can read the store
// while an event is being delivered. Subscribers must not mutate the store
// from inside a handler.
type Store struct {
	cache  Cache
	source Source
	bus    *events.Bus
	logger logger.Logger
	seed   func() []*domain.Article
	now    func() time.Time
	newID  func() string

	opMu sync.Mutex

	mu       sync.RWMutex
	articles []*domain.Article // newest insertion first

	state atomic.Int32
	loads singleflight.Group
}

// NewStore creates an uninitialized store.
func NewStore(opts Options) *Store {
	s := &Store{
		cache:  opts.Cache,
		source: opts.Source,
		bus:    opts.Bus,
		logger: opts.Logger,
		seed:   opts.Seed,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.bus == nil {
		s.bus = events.NewBus(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.seed == nil {
		s.seed = func() []*domain.Article { return nil }
	}
	return s
}

// Bus returns the bus the store emits on.
func (s *Store) Bus() *events.Bus { return s.bus }

// State returns the current initialization state.
func (s *Store) State() State { return State(s.state.Load()) }

// Ready reports whether initialization has completed.
func (s *Store) Ready() bool { return s.State() == Ready }

func (s *Store) setState(st State) { s.state.Store(int32(st)) }

// ─────────────────────────────────────────────────────────────────
// Initialization
// ─────────────────────────────────────────────────────────────────

// Initialize loads the collection: cache first (provisional), then the
// remote source (canonical when non-empty), then the sample. Remote and
// cache failures degrade to the next step and are only logged.
//
// Concurrent callers share one load. Calling it again once Ready is a no-op.
// The only error returned is ctx cancellation, which leaves the store Failed
// and retryable. A caller whose own ctx is still live when a shared load is
// cancelled starts a new load instead of failing.
func (s *Store) Initialize(ctx context.Context) error {
	for {
		if s.Ready() {
			return nil
		}
		_, err, _ := s.loads.Do("init", func() (any, error) {
			if s.Ready() {
				return nil, nil
			}
			return nil, s.load(ctx)
		})
		if err != nil && ctx.Err() == nil && isContextErr(err) {
			s.logger.Debug("shared initialization was cancelled, retrying")
			continue
		}
		return err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Store) load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setState(Loading)
	start := s.now()
	source := ""

	var cached []*domain.Article
	found, err := s.cache.Get(ctx, ArticlesKey, &cached)
	switch {
	case err != nil:
		s.logger.Warn("failed to read cached articles",
			logger.Error(&domain.StorageError{Op: "get", Key: ArticlesKey, Err: err}))
	case found && len(cached) > 0:
		s.setArticles(cached)
		source = events.SourceCache
		s.logger.Info("articles loaded from cache", logger.Int("count", len(cached)))
	}

	if s.source != nil {
		remote, err := s.source.Fetch(ctx)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.setState(Failed)
				s.logger.Warn("initialization interrupted", logger.Error(ctxErr))
				return ctxErr
			}
			s.logger.Warn("remote source unavailable, keeping fallback",
				logger.String("fallback", fallbackName(source)),
				logger.Error(err))
			s.bus.Emit(events.CMSError, events.ErrorDetail{Op: "initialize", Error: err.Error()})
		case len(remote) > 0:
			s.setArticles(remote)
			source = events.SourceRemote
			_ = s.persist(ctx, "initialize")
		default:
			s.logger.Info("remote source returned no articles")
		}
	}

	if source == "" {
		s.setArticles(s.seed())
		source = events.SourceSample
		_ = s.persist(ctx, "initialize")
	}

	count := s.Count()
	s.setState(Ready)
	s.logger.Info("content store ready",
		logger.String("source", source),
		logger.Int("count", count),
		logger.Duration("elapsed", s.now().Sub(start)))
	s.bus.Emit(events.ArticlesLoaded, events.LoadedDetail{Count: count, Source: source})
	return nil
}

func fallbackName(source string) string {
	if source == "" {
		return events.SourceSample
	}
	return source
}

// Refresh re-fetches the remote source. A non-empty result replaces the
// collection, is persisted and emits articlesLoaded. It returns the number
// of articles adopted (0 when the remote had none).
func (s *Store) Refresh(ctx context.Context) (int, error) {
	if err := s.Initialize(ctx); err != nil {
		return 0, err
	}
	if s.source == nil {
		return 0, errors.New("no remote source configured")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	remote, err := s.source.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(remote) == 0 {
		s.logger.Info("remote source returned no articles, keeping collection")
		return 0, nil
	}

	s.setArticles(remote)
	n := s.Count()
	_ = s.persist(ctx, "refresh")
	s.logger.Info("articles refreshed from remote", logger.Int("count", n))
	s.bus.Emit(events.ArticlesLoaded, events.LoadedDetail{Count: n, Source: events.SourceRemote})
	return n, nil
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// Create validates in, prepends a new article and persists the collection.
func (s *Store) Create(ctx context.Context, in domain.ArticleInput) (*domain.Article, error) {
	if err := domain.ValidateInput(in); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().UTC()
	a := &domain.Article{
		ID:        s.uniqueID(),
		Title:     in.Title,
		Author:    in.Author,
		Category:  in.Category,
		Content:   in.Content,
		Excerpt:   in.Excerpt,
		Image:     in.Image,
		Tags:      append([]string{}, in.Tags...),
		Date:      in.Date,
		ReadTime:  domain.ReadTime(in.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.Excerpt == "" {
		a.Excerpt = domain.Excerpt(a.Content)
	}
	if a.Date == "" {
		a.Date = now.Format(domain.DateLayout)
	}

	s.mu.Lock()
	s.articles = append([]*domain.Article{a}, s.articles...)
	s.mu.Unlock()

	_ = s.persist(ctx, "create")
	s.bus.Emit(events.ArticleCreated, events.ArticleDetail{Article: a.Clone()})
	return a.Clone(), nil
}

// Update merges patch into the article id. Only fields present in the
// patch are validated.
func (s *Store) Update(ctx context.Context, id string, patch domain.ArticlePatch) (*domain.Article, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	i := s.indexOf(id)
	var before *domain.Article
	if i >= 0 {
		before = s.articles[i]
	}
	s.mu.RUnlock()
	if before == nil {
		return nil, &domain.NotFoundError{ID: id}
	}

	if err := domain.ValidatePatch(patch); err != nil {
		return nil, err
	}

	after := patch.Apply(before)
	if after.Tags == nil {
		after.Tags = []string{}
	}
	if patch.Content != nil {
		after.ReadTime = domain.ReadTime(after.Content)
		if patch.Excerpt == nil {
			after.Excerpt = domain.Excerpt(after.Content)
		}
	}
	after.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	s.articles[i] = after
	s.mu.Unlock()

	_ = s.persist(ctx, "update")
	s.bus.Emit(events.ArticleUpdated, events.UpdatedDetail{Before: before.Clone(), After: after.Clone()})
	return after.Clone(), nil
}

// Delete removes the article id and returns it.
func (s *Store) Delete(ctx context.Context, id string) (*domain.Article, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, &domain.NotFoundError{ID: id}
	}
	removed := s.articles[i]
	next := make([]*domain.Article, 0, len(s.articles)-1)
	next = append(next, s.articles[:i]...)
	next = append(next, s.articles[i+1:]...)
	s.articles = next
	s.mu.Unlock()

	_ = s.persist(ctx, "delete")
	s.bus.Emit(events.ArticleDeleted, events.ArticleDetail{Article: removed.Clone()})
	return removed.Clone(), nil
}

// persist writes the whole collection to the cache. A failure is logged
// and reported as cmsError; the in-memory change is kept.
func (s *Store) persist(ctx context.Context, op string) error {
	snapshot := s.List()

	// The write must finish before the event is emitted, even if the
	// caller has gone away.
	ctx = context.WithoutCancel(ctx)
	if err := s.cache.Set(ctx, ArticlesKey, snapshot); err != nil {
		serr := &domain.StorageError{Op: "set", Key: ArticlesKey, Err: err}
		s.logger.Error("failed to persist articles",
			logger.String("op", op),
			logger.Int("count", len(snapshot)),
			logger.Error(serr))
		s.bus.Emit(events.CMSError, events.ErrorDetail{Op: op, Error: serr.Error()})
		return serr
	}
	return nil
}

func (s *Store) setArticles(articles []*domain.Article) {
	next := make([]*domain.Article, 0, len(articles))
	for _, a := range articles {
		if a != nil {
			next = append(next, a.Clone())
		}
	}
	s.mu.Lock()
	s.articles = next
	s.mu.Unlock()
}

// uniqueID draws ids until one is unused. Callers hold opMu.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		s.mu.RLock()
		taken := s.indexOf(id) >= 0
		s.mu.RUnlock()
		if !taken {
			return id
		}
	}
}

// indexOf returns the position of id or -1. Callers hold mu.
func (s *Store) indexOf(id string) int {
	for i, a := range s.articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}
