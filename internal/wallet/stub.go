// ABOUTME: In-memory stub implementation of the wallet Provider interface
// ABOUTME: Used for dev serving and tests; supports scripted failures and external flag injection

package wallet

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// watchBufferSize is the channel buffer for each flag watcher.
const watchBufferSize = 16

// stubPublicKey implements PublicKey over a plain string.
type stubPublicKey string

func (k stubPublicKey) String() string { return string(k) }

// NewPublicKey returns a PublicKey whose string form is s.
// Intended for stub wiring and tests.
func NewPublicKey(s string) PublicKey { return stubPublicKey(s) }

// StubProvider is an in-memory Provider. It simulates the external SDK:
// Connect takes a configurable amount of time and can be scripted to fail,
// and connection state can be flipped externally to model sessions
// expiring outside this process.
type StubProvider struct {
	mu       sync.Mutex
	flags    Flags
	identity *Identity
	watchers map[string]chan Flags

	latency  time.Duration
	nextErr  error
	connects int
	logger   *slog.Logger
}

// NewStubProvider creates a stub provider. Pass nil logger for default.
// latency is how long Connect blocks before resolving; zero means immediate.
func NewStubProvider(latency time.Duration, logger *slog.Logger) *StubProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubProvider{
		watchers: make(map[string]chan Flags),
		latency:  latency,
		logger:   logger.With("component", "wallet-stub"),
	}
}

// FailNextConnect scripts the next Connect call to reject with err.
func (p *StubProvider) FailNextConnect(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextErr = err
}

// SetIdentity sets the identity the provider reports while connected.
// If set before Connect, it is used instead of a generated identity.
// Passing nil reverts to a generated identity on the next connect.
func (p *StubProvider) SetIdentity(id *Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = id
}

// SetConnected flips the connected flag from outside any Connect call,
// modeling an external cause such as the session expiring elsewhere.
func (p *StubProvider) SetConnected(connected bool) {
	p.mu.Lock()
	p.flags.Connected = connected
	p.flags.Connecting = false
	if !connected {
		p.identity = nil
	} else if p.identity == nil {
		p.identity = generateIdentity()
	}
	flags := p.flags
	p.mu.Unlock()
	p.notify(flags)
}

// ConnectCalls returns how many times Connect has been invoked.
func (p *StubProvider) ConnectCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connects
}

// Connect implements Provider. It raises the connecting flag, waits for
// the configured latency, then either rejects with a scripted error or
// establishes a session and assigns an identity.
func (p *StubProvider) Connect(ctx context.Context) error {
	p.mu.Lock()
	p.connects++
	if p.flags.Connected {
		p.mu.Unlock()
		return nil
	}
	p.flags.Connecting = true
	flags := p.flags
	latency := p.latency
	p.mu.Unlock()
	p.notify(flags)

	if latency > 0 {
		select {
		case <-ctx.Done():
			p.settleConnect(ctx.Err())
			return ctx.Err()
		case <-time.After(latency):
		}
	} else if err := ctx.Err(); err != nil {
		p.settleConnect(err)
		return err
	}

	p.mu.Lock()
	err := p.nextErr
	p.nextErr = nil
	p.mu.Unlock()

	p.settleConnect(err)
	return err
}

// settleConnect finalizes a connect attempt, updating flags and identity.
func (p *StubProvider) settleConnect(err error) {
	p.mu.Lock()
	p.flags.Connecting = false
	if err == nil {
		p.flags.Connected = true
		if p.identity == nil {
			p.identity = generateIdentity()
		}
	} else {
		p.logger.Debug("stub connect failed", "error", err)
	}
	flags := p.flags
	p.mu.Unlock()
	p.notify(flags)
}

// Disconnect implements Provider. It always succeeds.
func (p *StubProvider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	p.flags = Flags{}
	p.identity = nil
	flags := p.flags
	p.mu.Unlock()
	p.notify(flags)
	return nil
}

// Flags implements Provider.
func (p *StubProvider) Flags() Flags {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flags
}

// Identity implements Provider. Returns nil unless connected.
func (p *StubProvider) Identity() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.flags.Connected {
		return nil
	}
	return p.identity
}

// Watch implements Provider.
func (p *StubProvider) Watch(ctx context.Context) (<-chan Flags, string) {
	subID := uuid.New().String()
	ch := make(chan Flags, watchBufferSize)

	p.mu.Lock()
	p.watchers[subID] = ch
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.Unwatch(subID)
	}()

	return ch, subID
}

// Unwatch implements Provider.
func (p *StubProvider) Unwatch(subID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.watchers[subID]
	if !ok {
		return
	}
	delete(p.watchers, subID)
	close(ch)
}

// notify fans a flag change out to all watchers. Non-blocking: changes
// are dropped for watchers whose channels are full.
func (p *StubProvider) notify(flags Flags) {
	p.mu.Lock()
	targets := make([]chan Flags, 0, len(p.watchers))
	for _, ch := range p.watchers {
		targets = append(targets, ch)
	}
	p.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- flags:
		default:
			p.logger.Debug("dropped flag change for slow watcher")
		}
	}
}

// generateIdentity produces a random wallet identity in the shape the
// external SDK would assign.
func generateIdentity() *Identity {
	addr := "0x" + strings.ReplaceAll(uuid.New().String(), "-", "")
	return &Identity{
		Address:   addr,
		PublicKey: stubPublicKey(addr),
	}
}
