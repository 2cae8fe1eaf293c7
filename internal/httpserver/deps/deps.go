package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/search"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time                // for testing, defaults to time.Now
	AllowedCIDRS      []string                        // IPs allowed to access healthz/readyz/reload endpoints
	AllowedHosts      []string                        // Host headers allowed on /reload
	TrustProxy        bool                            // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins       []string                        // allowed CORS origins ("*" = any)
	WriteBurst        int                             // rate limit burst on mutating endpoints
	WriteRefillPerMin int                             // rate limit refill on mutating endpoints
	CacheBackend      string                          // "redis" | "memory"
	CachePing         func(ctx context.Context) error // durable cache liveness check
	Store             *content.Store                  // article collection
	Drafts            *content.Drafts                 // single draft slot
	Search            *search.Engine                  // full-text search over the collection
	Bus               *events.Bus                     // lifecycle events, streamed on /api/events
	ReloadTrigger     chan struct{}                   // Channel to trigger manual remote reload
	Done              <-chan struct{}                 // closed on shutdown, ends event streams
}

// Now returns the current time using TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
