// Package session implements the wallet connection view state machine.
//
// # State machine
//
// Each scope (one browser tab) gets a Controller owning a three-state
// machine: Idle, Connecting, Connected. Login moves Idle to Connecting
// by issuing one provider connect request; the move to Connected is
// never made by the connect call itself but by reconciliation against
// the provider's observable flags, so it happens regardless of which
// path flipped the flag. A rejected connect resets to Idle with no
// retry. Logout disconnects and unconditionally resets to Idle.
//
// # Reconciliation
//
// Reconcile is a pure reducer from (current, provider flags, local
// intent, restored-snapshot presence) to the displayed status. The
// controller re-runs it synchronously on every provider flag change,
// so the displayed state can never diverge from the true connection
// state for longer than one notification. The local Connecting intent
// is a transient overlay, never a source of truth.
//
// # Session mirroring
//
// When the provider reports connected and has an identity, the
// controller captures both identity fields in one read and writes them
// as a Snapshot to scoped storage. On construction the controller
// restores the snapshot, treating a well-formed record as equivalent
// to Connected so a reloaded tab skips the connect flow. Malformed
// stored data is treated as absent, never as an error.
//
// # Identity display
//
// ResolveDisplayIdentity tries, in fixed order: snapshot address, live
// wallet address, live public key string, then a placeholder. The
// snapshot outranks live data to avoid flicker while the provider
// repopulates its wallet object after a reload.
package session
