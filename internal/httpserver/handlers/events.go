package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/quill/internal/events"
	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
)

const (
	eventBuffer       = 64
	keepAliveInterval = 25 * time.Second
)

// StreamedEvents are forwarded to every /api/events client.
var StreamedEvents = append(append([]string{}, events.CollectionEvents...),
	events.DraftSaved,
	events.DraftCleared,
	events.CMSError,
)

// Events streams bus events as Server-Sent Events. The bus delivers
// synchronously, so subscribers only enqueue; a client that falls more than
// eventBuffer events behind loses the overflow.
func Events(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// Streams outlive the server's WriteTimeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			d.Logger.Debug("could not clear write deadline", logger.Error(err))
		}

		queue := make(chan events.Event, eventBuffer)
		subs := make([]events.Subscription, 0, len(StreamedEvents))
		for _, name := range StreamedEvents {
			subs = append(subs, d.Bus.Subscribe(name, func(ev events.Event) {
				select {
				case queue <- ev:
				default:
					d.Logger.Warn("event stream client too slow, dropping event",
						logger.String("event", ev.Name),
						logger.String("remote_ip", r.RemoteAddr))
				}
			}))
		}
		defer func() {
			for _, sub := range subs {
				d.Bus.Unsubscribe(sub)
			}
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			d.Logger.Warn("event stream unsupported by response writer", logger.Error(err))
			return
		}

		d.Logger.Debug("event stream opened", logger.String("remote_ip", r.RemoteAddr))
		defer d.Logger.Debug("event stream closed", logger.String("remote_ip", r.RemoteAddr))

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-d.Done:
				return
			case ev := <-queue:
				if err := writeEvent(w, ev); err != nil {
					d.Logger.Debug("failed to write event", logger.Error(err))
					return
				}
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// streamedEvent is the data line of one SSE message.
type streamedEvent struct {
	Detail    any       `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

func writeEvent(w http.ResponseWriter, ev events.Event) error {
	data, err := json.Marshal(streamedEvent{Detail: ev.Detail, Timestamp: ev.Timestamp})
	if err != nil {
		return fmt.Errorf("failed to marshal %s detail: %w", ev.Name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}
