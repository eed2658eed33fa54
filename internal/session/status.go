// ABOUTME: Status and Intent types for the wallet connection state machine
// ABOUTME: Status is the displayed state; Intent is the local transient overlay

package session

// Status is the displayed connection state for one scope.
type Status int

// Connection states. StatusIdle is the initial state; there is no
// terminal state, the machine is long-lived for the scope's lifetime.
const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
)

// String returns the wire/display form of the status.
func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "idle"
	}
}

// Intent is the controller's local overlay on top of the provider's
// flags. It records that this controller has a connect attempt in
// flight; it is never a source of truth for the displayed state, the
// provider's flags always win during reconciliation.
type Intent int

// Local intents.
const (
	IntentNone Intent = iota
	IntentConnecting
)
