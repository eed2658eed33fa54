// ABOUTME: Pure reconciliation reducer mapping provider flags to displayed status
// ABOUTME: The provider's connected flag always wins over local transient state

package session

import "github.com/2389/wallet-gateway/internal/wallet"

// Reconcile computes the displayed status from the provider's current
// flag pair, the controller's local intent, and whether a restored
// snapshot is present. It is a pure function; the current status is
// accepted for symmetry with reducer conventions but the result depends
// only on the latest observation:
//
//   - provider reports connected: Connected, regardless of any local
//     transient state and regardless of what caused the change
//   - a restored snapshot is present: Connected, so a reloaded tab does
//     not bounce through the call-to-action screen while the provider
//     repopulates
//   - an authentication attempt is in flight (provider flag or local
//     intent): Connecting
//   - otherwise: Idle
func Reconcile(current Status, flags wallet.Flags, intent Intent, restored bool) Status {
	switch {
	case flags.Connected:
		return StatusConnected
	case restored:
		return StatusConnected
	case flags.Connecting || intent == IntentConnecting:
		return StatusConnecting
	default:
		return StatusIdle
	}
}
