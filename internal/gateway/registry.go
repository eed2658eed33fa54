// ABOUTME: Registry of per-scope session controllers with idle eviction
// ABOUTME: Creates controllers lazily and runs their reconciliation loops

package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/wallet-gateway/internal/session"
	"github.com/2389/wallet-gateway/internal/store"
	"github.com/2389/wallet-gateway/internal/wallet"
)

// controllerEntry tracks a running controller and its watch loop.
type controllerEntry struct {
	controller *session.Controller
	cancel     context.CancelFunc
	lastAccess time.Time
}

// controllerRegistry manages one session controller per scope. Each
// controller's reconciliation loop runs on a context derived from the
// registry's base context; controllers idle past the TTL are evicted.
type controllerRegistry struct {
	mu      sync.Mutex
	entries map[string]*controllerEntry

	baseCtx  context.Context
	provider wallet.Provider
	store    store.Store
	opts     session.Options
	ttl      time.Duration
	logger   *slog.Logger
	done     chan struct{}
}

// newControllerRegistry creates a registry. baseCtx bounds the lifetime
// of every controller loop; ttl bounds how long an untouched scope
// keeps a live controller (its snapshot survives independently in the
// store). ttl of zero disables eviction.
func newControllerRegistry(baseCtx context.Context, provider wallet.Provider, snapStore store.Store, opts session.Options, ttl time.Duration, logger *slog.Logger) *controllerRegistry {
	r := &controllerRegistry{
		entries:  make(map[string]*controllerEntry),
		baseCtx:  baseCtx,
		provider: provider,
		store:    snapStore,
		opts:     opts,
		ttl:      ttl,
		logger:   logger.With("component", "registry"),
		done:     make(chan struct{}),
	}
	if ttl > 0 {
		go r.evictLoop()
	}
	return r
}

// get returns the controller for the scope, creating and starting it if
// needed. Creation restores the scope's mirrored snapshot.
func (r *controllerRegistry) get(ctx context.Context, scope string) (*session.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.entries[scope]; ok {
		entry.lastAccess = time.Now()
		return entry.controller, nil
	}

	ctrl, err := session.New(ctx, session.Config{
		Provider: r.provider,
		Store:    r.store,
		Scope:    scope,
		Logger:   r.logger,
		Options:  r.opts,
	})
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(r.baseCtx)
	go ctrl.Run(runCtx)

	r.entries[scope] = &controllerEntry{
		controller: ctrl,
		cancel:     cancel,
		lastAccess: time.Now(),
	}
	r.logger.Debug("controller started", "scope", scope)
	return ctrl, nil
}

// evictLoop periodically stops controllers whose scope has been idle
// past the TTL.
func (r *controllerRegistry) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

// evictIdle removes controllers idle past the TTL.
func (r *controllerRegistry) evictIdle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.ttl)
	for scope, entry := range r.entries {
		if entry.lastAccess.Before(cutoff) {
			entry.cancel()
			entry.controller.Close()
			delete(r.entries, scope)
			r.logger.Debug("controller evicted", "scope", scope)
		}
	}
}

// close stops the eviction loop and all controllers.
func (r *controllerRegistry) close() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for scope, entry := range r.entries {
		entry.cancel()
		entry.controller.Close()
		delete(r.entries, scope)
	}
}
