package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

// Event names emitted by the content store and draft manager.
const (
	ArticlesLoaded   = "articlesLoaded"
	ArticleCreated   = "articleCreated"
	ArticleUpdated   = "articleUpdated"
	ArticleDeleted   = "articleDeleted"
	ArticlesImported = "articlesImported"
	DraftSaved       = "draftSaved"
	DraftCleared     = "draftCleared"
	CMSError         = "cmsError"
)

// CollectionEvents are the events after which the collection may have changed.
var CollectionEvents = []string{
	ArticlesLoaded,
	ArticleCreated,
	ArticleUpdated,
	ArticleDeleted,
	ArticlesImported,
}

// Event is delivered to every subscriber of Name.
type Event struct {
	Name      string    `json:"name"`
	Detail    any       `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives events synchronously on the emitter's goroutine.
type Handler func(Event)

// Subscription identifies one registered handler. Handlers are funcs and not
// comparable, so this handle is what Unsubscribe takes.
type Subscription struct {
	id   int64
	name string
}

// Name returns the event name this subscription listens to.
func (s Subscription) Name() string { return s.name }

type subscriber struct {
	id      int64
	handler Handler
}

// Bus is a synchronous publish/subscribe channel keyed by event name.
// Subscribers run in subscription order; a panicking subscriber is logged
// and does not stop the others. There is no buffering or replay.
type Bus struct {
	mu     sync.RWMutex
	nextID int64
	subs   map[string][]subscriber
	logger logger.Logger
	now    func() time.Time
}

// NewBus creates an empty bus.
func NewBus(log logger.Logger) *Bus {
	return &Bus{
		subs:   make(map[string][]subscriber),
		logger: log,
		now:    time.Now,
	}
}

// Subscribe registers handler for name.
func (b *Bus) Subscribe(name string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[name] = append(b.subs[name], subscriber{id: b.nextID, handler: handler})
	return Subscription{id: b.nextID, name: name}
}

// Unsubscribe removes a subscription. It reports whether it was registered.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.name]
	for i, s := range list {
		if s.id != sub.id {
			continue
		}
		// Copy so in-flight emits keep their snapshot intact.
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(b.subs, sub.name)
		} else {
			b.subs[sub.name] = next
		}
		return true
	}
	return false
}

// Subscribers returns the number of handlers registered for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Emit delivers detail to every current subscriber of name and returns
// the number of handlers that completed without panicking.
func (b *Bus) Emit(name string, detail any) int {
	b.mu.RLock()
	snapshot := b.subs[name]
	b.mu.RUnlock()

	event := Event{Name: name, Detail: detail, Timestamp: b.now().UTC()}
	delivered := 0
	for _, s := range snapshot {
		if err := runSafely(name, s.handler, event); err != nil {
			if b.logger != nil {
				b.logger.Error("event subscriber failed",
					logger.String("event", name),
					logger.Error(err))
			}
			continue
		}
		delivered++
	}
	return delivered
}

// runSafely invokes handler and turns a panic into an error.
func runSafely(scope string, handler Handler, event Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%s: panic recovered: %v", scope, recovered)
		}
	}()
	handler(event)
	return nil
}
