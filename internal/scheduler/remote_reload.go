package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/quill/internal/logger"
)

// Refresher re-fetches the canonical collection.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// RemoteReloader refreshes the store from the remote source on an interval
// and on manual trigger.
type RemoteReloader struct {
	store         Refresher
	logger        logger.Logger
	interval      time.Duration // 0 = manual trigger only
	manualTrigger <-chan struct{}
	stopCh        chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
}

// NewRemoteReloader creates a new remote reloader
func NewRemoteReloader(
	store Refresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *RemoteReloader {
	return &RemoteReloader{
		store:         store,
		logger:        log,
		interval:      interval,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the periodic reload process. The store is expected to be
// initialized already, so no reload happens on start.
func (rr *RemoteReloader) Start(ctx context.Context) {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if rr.interval > 0 {
		ticker = time.NewTicker(rr.interval)
		tick = ticker.C
	}

	rr.started.Store(true)
	go func() {
		defer close(rr.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				rr.reload(ctx)
			case <-rr.manualTrigger:
				rr.logger.Info("manual reload triggered")
				rr.reload(ctx)
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for it to exit
func (rr *RemoteReloader) Stop() {
	rr.stopOnce.Do(func() { close(rr.stopCh) })
	if rr.started.Load() {
		<-rr.done
	}
}

// reload keeps the current collection on failure
func (rr *RemoteReloader) reload(ctx context.Context) {
	n, err := rr.store.Refresh(ctx)
	if err != nil {
		rr.logger.Error("failed to reload articles from remote",
			logger.Error(err))
		return
	}
	if n == 0 {
		rr.logger.Debug("remote returned no articles, collection unchanged")
		return
	}
	rr.logger.Info("articles reloaded from remote",
		logger.Int("count", n))
}
