package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/domain"
)

// MemoryIndex holds the lowercase search projection of the collection.
// It is derived data: always rebuilt wholesale, never patched.
type MemoryIndex struct {
	mu         sync.RWMutex
	entries    []*domain.SearchIndexEntry          // collection order
	byID       map[string]*domain.SearchIndexEntry // ID -> entry
	lastReload time.Time                           // Timestamp of last rebuild
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		byID: make(map[string]*domain.SearchIndexEntry),
	}
}

// Rebuild replaces every entry with a projection of articles, keeping their order
func (idx *MemoryIndex) Rebuild(articles []*domain.Article) {
	entries := make([]*domain.SearchIndexEntry, 0, len(articles))
	byID := make(map[string]*domain.SearchIndexEntry, len(articles))
	for _, a := range articles {
		if a == nil {
			continue
		}
		entry := domain.NewSearchIndexEntry(a.Clone())
		entries = append(entries, entry)
		byID[a.ID] = entry
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries = entries
	idx.byID = byID
	idx.lastReload = time.Now()
}

// Entries returns the entries in collection order
func (idx *MemoryIndex) Entries() []*domain.SearchIndexEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.SearchIndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Get retrieves the entry of an article by ID
func (idx *MemoryIndex) Get(id string) (*domain.SearchIndexEntry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entry, ok := idx.byID[id]
	return entry, ok
}

// Count returns the number of indexed articles
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.entries)
}

// GetLastReload returns the timestamp of the last rebuild
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
