// ABOUTME: Controller owning the connection state machine for one scope
// ABOUTME: Reconciles displayed status with provider flags and mirrors snapshots to storage

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/2389/wallet-gateway/internal/store"
	"github.com/2389/wallet-gateway/internal/wallet"
)

// Controller errors
var (
	// ErrConnectInFlight means a connect attempt from this controller is already outstanding
	ErrConnectInFlight = errors.New("connect already in flight")
)

// Options control optional controller behavior.
type Options struct {
	// Mirror enables writing session snapshots to the store so the
	// scope survives a reload without re-authenticating.
	Mirror bool

	// ClearOnLogout deletes the stored snapshot on explicit logout.
	// When false, the mirror outlives logout and the scope stays
	// restorable until the snapshot expires.
	ClearOnLogout bool

	// ConnectTimeout bounds a connect attempt. Zero means the attempt
	// runs until the provider resolves or rejects it.
	ConnectTimeout time.Duration
}

// Config carries the controller's dependencies. The provider is an
// explicit parameter rather than ambient state, so a controller can
// only ever exist inside a provider's initialization boundary.
type Config struct {
	Provider wallet.Provider
	Store    store.Store
	Scope    string
	Logger   *slog.Logger
	Options  Options
}

// Controller owns the displayed connection status for one scope. It
// drives the Idle/Connecting/Connected machine from the provider's
// observable flags, keeps a transient local overlay for its own connect
// attempts, and mirrors a minimal session snapshot for refresh survival.
type Controller struct {
	provider wallet.Provider
	store    store.Store
	scope    string
	logger   *slog.Logger
	opts     Options

	mu       sync.Mutex
	status   Status
	intent   Intent
	snapshot *Snapshot
	gen      uint64

	broadcaster *statusBroadcaster
}

// New creates a controller for the scope and restores any mirrored
// snapshot. A well-formed snapshot makes the initial status Connected
// without invoking the provider; malformed or missing stored data is
// treated as no snapshot.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Scope == "" {
		return nil, errors.New("scope is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session", "scope", cfg.Scope)

	c := &Controller{
		provider:    cfg.Provider,
		store:       cfg.Store,
		scope:       cfg.Scope,
		logger:      logger,
		opts:        cfg.Options,
		broadcaster: newStatusBroadcaster(logger),
	}

	if cfg.Options.Mirror {
		c.snapshot = c.restore(ctx)
	}
	c.status = Reconcile(StatusIdle, cfg.Provider.Flags(), IntentNone, c.snapshot != nil)

	return c, nil
}

// restore loads the mirrored snapshot, tolerating both absence and
// malformed data.
func (c *Controller) restore(ctx context.Context) *Snapshot {
	raw, err := c.store.LoadSnapshot(ctx, c.scope)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		c.logger.Warn("loading stored snapshot failed", "error", err)
		return nil
	}
	snap := ParseSnapshot(raw)
	if snap == nil {
		c.logger.Warn("ignoring malformed stored snapshot")
		return nil
	}
	c.logger.Debug("restored session snapshot", "address", snap.Address)
	return snap
}

// Run watches the provider's flags and re-runs reconciliation
// synchronously on every change notification, whether the change came
// from this controller's own calls or from an external cause. It blocks
// until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	ch, subID := c.provider.Watch(ctx)
	defer c.provider.Unwatch(subID)

	// Catch anything that changed between construction and subscription
	c.apply(ctx, c.provider.Flags())

	for {
		select {
		case <-ctx.Done():
			return
		case flags, ok := <-ch:
			if !ok {
				return
			}
			c.apply(ctx, flags)
		}
	}
}

// Login triggers a connect attempt. The displayed status moves to
// Connecting immediately; the final status is committed by
// reconciliation once the provider resolves or rejects. Returns nil if
// already connected and ErrConnectInFlight if this controller already
// has an attempt outstanding.
//
// A rejected connect resets the status (no snapshot is written and no
// retry is attempted); the error is returned for the caller's
// diagnostics.
func (c *Controller) Login(ctx context.Context) error {
	c.mu.Lock()
	if c.status == StatusConnected {
		c.mu.Unlock()
		return nil
	}
	if c.intent == IntentConnecting {
		c.mu.Unlock()
		return ErrConnectInFlight
	}
	c.intent = IntentConnecting
	c.gen++
	gen := c.gen
	c.commitLocked(ctx, c.provider.Flags())
	c.mu.Unlock()

	if c.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.ConnectTimeout)
		defer cancel()
	}

	err := c.provider.Connect(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// Superseded by a logout or a newer attempt while we were
		// waiting; this continuation must not mutate state.
		return err
	}
	c.intent = IntentNone
	if err != nil {
		c.logger.Error("wallet connect failed", "error", err)
	}
	c.commitLocked(ctx, c.provider.Flags())
	return err
}

// Logout disconnects and unconditionally resets the displayed status to
// Idle. Disconnect is not modeled as fallible: the view must never stay
// stuck in the connected state because the provider misbehaved. Calling
// Logout while already idle is a harmless no-op. Always returns nil.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	c.intent = IntentNone
	c.snapshot = nil
	c.mu.Unlock()

	if err := c.provider.Disconnect(ctx); err != nil {
		c.logger.Warn("wallet disconnect failed", "error", err)
	}

	if c.opts.Mirror && c.opts.ClearOnLogout {
		if err := c.store.DeleteSnapshot(ctx, c.scope); err != nil {
			c.logger.Warn("clearing stored snapshot failed", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusIdle {
		c.status = StatusIdle
		c.logger.Debug("status changed", "status", StatusIdle.String())
		c.broadcaster.publish(StatusIdle)
	}
	return nil
}

// Status returns the current displayed status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// DisplayIdentity resolves the identity string for the connected view
// via the fixed fallback chain.
func (c *Controller) DisplayIdentity() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ResolveDisplayIdentity(c.snapshot, c.provider.Identity())
}

// Scope returns the controller's scope key.
func (c *Controller) Scope() string {
	return c.scope
}

// Subscribe registers for status change notifications. The subscription
// is cleaned up when ctx is cancelled.
func (c *Controller) Subscribe(ctx context.Context) (<-chan Status, string) {
	return c.broadcaster.subscribe(ctx)
}

// Close shuts down the controller's subscriber channels.
func (c *Controller) Close() {
	c.broadcaster.closeAll()
}

// apply commits a reconciliation pass for the observed flags.
func (c *Controller) apply(ctx context.Context, flags wallet.Flags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commitLocked(ctx, flags)
}

// commitLocked reconciles the displayed status against the observed
// flags and publishes the result if it changed. Whenever the provider
// reports connected, the session mirror is refreshed. Must be called
// with mu held.
func (c *Controller) commitLocked(ctx context.Context, flags wallet.Flags) {
	if flags.Connected {
		c.mirrorLocked(ctx)
	}
	next := Reconcile(c.status, flags, c.intent, c.snapshot != nil)
	if next == c.status {
		return
	}
	c.status = next
	c.logger.Debug("status changed", "status", next.String())
	c.broadcaster.publish(next)
}

// mirrorLocked writes a fresh snapshot from a single identity read,
// overwriting any prior one. Nothing is written while the provider has
// no identity to mirror. Must be called with mu held.
func (c *Controller) mirrorLocked(ctx context.Context) {
	if !c.opts.Mirror {
		return
	}
	snap := snapshotFromIdentity(c.provider.Identity())
	if snap == nil {
		return
	}
	raw, err := snap.Encode()
	if err != nil {
		c.logger.Warn("encoding snapshot failed", "error", err)
		return
	}
	if err := c.store.SaveSnapshot(ctx, c.scope, raw); err != nil {
		c.logger.Warn("mirroring snapshot failed", "error", err)
		return
	}
	c.snapshot = snap
}
