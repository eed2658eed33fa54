// ABOUTME: In-memory fan-out broadcaster for status changes of one controller
// ABOUTME: Lets SSE handlers observe reconciliation results without polling

package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 16

// statusBroadcaster provides in-memory pub/sub for status changes.
// Subscribers receive every status the controller commits, in order,
// so a front end can mirror the state machine without polling.
type statusBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]chan Status
	logger      *slog.Logger
}

func newStatusBroadcaster(logger *slog.Logger) *statusBroadcaster {
	return &statusBroadcaster{
		subscribers: make(map[string]chan Status),
		logger:      logger,
	}
}

// subscribe registers a subscriber. Returns a channel that receives
// status changes and a subscription ID for later unsubscription. The
// subscription is automatically cleaned up when ctx is cancelled.
func (b *statusBroadcaster) subscribe(ctx context.Context) (<-chan Status, string) {
	subID := uuid.New().String()
	ch := make(chan Status, subscriberBufferSize)

	b.mu.Lock()
	b.subscribers[subID] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(subID)
	}()

	return ch, subID
}

// publish sends a status to all subscribers. Non-blocking: the status
// is dropped for subscribers whose channels are full.
func (b *statusBroadcaster) publish(status Status) {
	b.mu.RLock()
	targets := make([]chan Status, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- status:
		default:
			b.logger.Debug("dropped status change for slow subscriber", "status", status.String())
		}
	}
}

// unsubscribe removes a subscription and closes its channel.
func (b *statusBroadcaster) unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subscribers[subID]
	if !ok {
		return
	}
	delete(b.subscribers, subID)
	close(ch)
}

// closeAll closes all subscriber channels.
func (b *statusBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subID, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, subID)
	}
}
