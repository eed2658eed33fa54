// ABOUTME: Provider interface and types for the external passkey wallet capability
// ABOUTME: Defines the narrow boundary the session controller depends on

package wallet

import (
	"context"
	"errors"
)

// Provider errors
var (
	// ErrConnectCancelled means the user dismissed the device authentication prompt
	ErrConnectCancelled = errors.New("connect cancelled by user")

	// ErrUnsupported means the host environment cannot perform passkey authentication
	ErrUnsupported = errors.New("passkey authentication not supported")
)

// Flags is the observable connection flag pair a provider exposes.
// Connected is true iff the provider holds a valid authenticated session.
// Connecting is true while an authentication attempt is in flight,
// regardless of who triggered it.
type Flags struct {
	Connected  bool
	Connecting bool
}

// PublicKey is an opaque public-key representation. The only operation
// this component needs is its string form for display.
type PublicKey interface {
	String() string
}

// Identity is the externally assigned wallet identity for a connected
// session. The address is an opaque printable token with no internal
// structure assumed; it may be empty while the provider is still
// populating its wallet object after a reconnect.
type Identity struct {
	Address   string
	PublicKey PublicKey
}

// Provider is the wallet capability boundary. Implementations wrap an
// external passkey wallet SDK; this repository ships only the stub.
// All methods must be safe for concurrent use.
type Provider interface {
	// Connect resolves when device-local authentication succeeds and a
	// wallet identity becomes available. It rejects on user cancellation,
	// unsupported environment, or provider-side failure.
	Connect(ctx context.Context) error

	// Disconnect clears the provider session. Callers treat it as
	// always eventually resolving; an error is advisory only.
	Disconnect(ctx context.Context) error

	// Flags returns the current connection flag pair.
	Flags() Flags

	// Identity returns the wallet identity, or nil when no session is held.
	Identity() *Identity

	// Watch registers for flag change notifications. Every change to the
	// flag pair is delivered on the returned channel. The subscription is
	// cleaned up when ctx is cancelled; the returned ID can be passed to
	// Unwatch for earlier removal.
	Watch(ctx context.Context) (<-chan Flags, string)

	// Unwatch removes a subscription and closes its channel.
	Unwatch(subID string)
}
