package content

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

// Drafts manages the single draft slot. Drafts are never validated and
// never promoted into the collection automatically.
type Drafts struct {
	mu     sync.Mutex
	cache  Cache
	bus    *events.Bus
	logger logger.Logger
	now    func() time.Time
}

// NewDrafts creates a draft manager sharing the store's cache and bus.
func NewDrafts(cache Cache, bus *events.Bus, log logger.Logger) *Drafts {
	if log == nil {
		log = logger.Nop()
	}
	return &Drafts{
		cache:  cache,
		bus:    bus,
		logger: log,
		now:    time.Now,
	}
}

// Save overwrites the draft slot with d, stamping LastSaved.
func (m *Drafts) Save(ctx context.Context, d domain.Draft) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.LastSaved = m.now().UTC()
	if err := m.cache.Set(ctx, DraftKey, d); err != nil {
		serr := &domain.StorageError{Op: "set", Key: DraftKey, Err: err}
		m.logger.Error("failed to save draft", logger.Error(serr))
		m.emit(events.CMSError, events.ErrorDetail{Op: "saveDraft", Error: serr.Error()})
		return nil, serr
	}

	saved := d
	m.emit(events.DraftSaved, events.DraftDetail{Draft: &saved})
	return &d, nil
}

// Load returns the current draft, or nil when the slot is empty.
func (m *Drafts) Load(ctx context.Context) (*domain.Draft, error) {
	var d domain.Draft
	found, err := m.cache.Get(ctx, DraftKey, &d)
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Key: DraftKey, Err: err}
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

// Exists reports whether a draft is stored.
func (m *Drafts) Exists(ctx context.Context) (bool, error) {
	d, err := m.Load(ctx)
	return d != nil, err
}

// Clear empties the draft slot. Clearing an empty slot is not an error.
func (m *Drafts) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clear(ctx)
}

// ClearIfOlder clears the draft when it was last saved more than maxAge ago.
// It reports whether a draft was cleared.
func (m *Drafts) ClearIfOlder(ctx context.Context, maxAge time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.Load(ctx)
	if err != nil || d == nil {
		return false, err
	}
	if m.now().Sub(d.LastSaved) <= maxAge {
		return false, nil
	}
	if err := m.clear(ctx); err != nil {
		return false, err
	}
	m.logger.Info("stale draft cleared",
		logger.Time("last_saved", d.LastSaved),
		logger.Duration("max_age", maxAge))
	return true, nil
}

func (m *Drafts) clear(ctx context.Context) error {
	if err := m.cache.Remove(ctx, DraftKey); err != nil {
		serr := &domain.StorageError{Op: "remove", Key: DraftKey, Err: err}
		m.logger.Error("failed to clear draft", logger.Error(serr))
		m.emit(events.CMSError, events.ErrorDetail{Op: "clearDraft", Error: serr.Error()})
		return serr
	}
	m.emit(events.DraftCleared, nil)
	return nil
}

func (m *Drafts) emit(name string, detail any) {
	if m.bus != nil {
		m.bus.Emit(name, detail)
	}
}
