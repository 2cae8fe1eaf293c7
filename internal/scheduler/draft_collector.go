package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

const (
	// DefaultDraftMaxAge is how long an untouched draft is kept
	DefaultDraftMaxAge = 30 * 24 * time.Hour // 30 days

	// DefaultDraftGCInterval is used when no interval is configured
	DefaultDraftGCInterval = 24 * time.Hour
)

// DraftJanitor clears the draft slot when it is stale.
type DraftJanitor interface {
	ClearIfOlder(ctx context.Context, maxAge time.Duration) (bool, error)
}

// DraftCollector handles cleanup of abandoned drafts
type DraftCollector struct {
	drafts   DraftJanitor
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewDraftCollector creates a new draft collector
func NewDraftCollector(
	drafts DraftJanitor,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *DraftCollector {
	if maxAge == 0 {
		maxAge = DefaultDraftMaxAge
	}
	if interval <= 0 {
		interval = DefaultDraftGCInterval
	}

	return &DraftCollector{
		drafts:   drafts,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs a collection immediately, then periodically
func (dc *DraftCollector) Start(ctx context.Context) {
	if _, err := dc.Collect(ctx); err != nil {
		dc.logger.Warn("initial draft collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(dc.interval)
	dc.started.Store(true)
	go func() {
		defer close(dc.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := dc.Collect(ctx); err != nil {
					dc.logger.Error("draft collection failed",
						logger.Error(err))
				}
			case <-dc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector and waits for it to exit
func (dc *DraftCollector) Stop() {
	dc.stopOnce.Do(func() { close(dc.stopCh) })
	if dc.started.Load() {
		<-dc.done
	}
}

// Collect clears the draft if it has not been saved within maxAge
func (dc *DraftCollector) Collect(ctx context.Context) (bool, error) {
	cleared, err := dc.drafts.ClearIfOlder(ctx, dc.maxAge)
	if err != nil {
		return false, err
	}

	if cleared {
		dc.logger.Info("garbage collected stale draft",
			logger.Duration("max_age", dc.maxAge))
	} else {
		dc.logger.Debug("no draft to garbage collect")
	}
	return cleared, nil
}
