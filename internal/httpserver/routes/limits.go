package routes

import (
	"time"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/httpserver/mw"
)

const (
	requestTimeout  = 5 * time.Second
	transferTimeout = 30 * time.Second
)

// writeLimit builds the per-client limiter applied to mutating endpoints.
func writeLimit(d deps.Deps) Middleware {
	return mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.WriteBurst,
		RefillPerIPPerMin: d.WriteRefillPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
		Now:               d.TimeNow,
		Logger:            d.Logger,
	})
}
