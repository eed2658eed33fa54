// ABOUTME: Tests for the status change broadcaster
// ABOUTME: Covers fan-out, slow subscriber drops, and context-driven cleanup

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := newStatusBroadcaster(testLogger())
	ctx := context.Background()

	ch1, _ := b.subscribe(ctx)
	ch2, _ := b.subscribe(ctx)

	b.publish(StatusConnecting)
	b.publish(StatusConnected)

	for _, ch := range []<-chan Status{ch1, ch2} {
		assert.Equal(t, StatusConnecting, <-ch)
		assert.Equal(t, StatusConnected, <-ch)
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := newStatusBroadcaster(testLogger())

	ch, _ := b.subscribe(context.Background())

	// Overflow the buffer; publish must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufferSize+10; i++ {
			b.publish(StatusConnecting)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffered statuses are still readable
	assert.Equal(t, StatusConnecting, <-ch)
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := newStatusBroadcaster(testLogger())

	ch, subID := b.subscribe(context.Background())
	b.unsubscribe(subID)

	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe is harmless
	b.unsubscribe(subID)
}

func TestBroadcaster_ContextCancelCleansUp(t *testing.T) {
	b := newStatusBroadcaster(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.subscribe(ctx)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestBroadcaster_CloseAll(t *testing.T) {
	b := newStatusBroadcaster(testLogger())
	ctx := context.Background()

	ch1, _ := b.subscribe(ctx)
	ch2, _ := b.subscribe(ctx)
	b.closeAll()

	_, open := <-ch1
	require.False(t, open)
	_, open = <-ch2
	require.False(t, open)

	// Publishing after closeAll is a no-op
	b.publish(StatusConnected)
}
