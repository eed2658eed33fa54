// ABOUTME: Tests for the pure reconciliation reducer
// ABOUTME: Covers flag precedence, restored snapshots, and the local intent overlay

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/wallet-gateway/internal/wallet"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		flags    wallet.Flags
		intent   Intent
		restored bool
		want     Status
	}{
		{
			name: "idle by default",
			want: StatusIdle,
		},
		{
			name:  "connected flag wins",
			flags: wallet.Flags{Connected: true},
			want:  StatusConnected,
		},
		{
			name:    "connected flag wins over local intent",
			current: StatusConnecting,
			flags:   wallet.Flags{Connected: true},
			intent:  IntentConnecting,
			want:    StatusConnected,
		},
		{
			name:   "connected flag wins even while provider still reports connecting",
			flags:  wallet.Flags{Connected: true, Connecting: true},
			intent: IntentConnecting,
			want:   StatusConnected,
		},
		{
			name:     "restored snapshot reads as connected",
			restored: true,
			want:     StatusConnected,
		},
		{
			name:     "restored snapshot outranks provider connecting",
			flags:    wallet.Flags{Connecting: true},
			restored: true,
			want:     StatusConnected,
		},
		{
			name:  "provider connecting shows connecting",
			flags: wallet.Flags{Connecting: true},
			want:  StatusConnecting,
		},
		{
			name:   "local intent shows connecting before provider flag flips",
			intent: IntentConnecting,
			want:   StatusConnecting,
		},
		{
			name:    "disconnected with no snapshot forces idle",
			current: StatusConnected,
			want:    StatusIdle,
		},
		{
			name:    "disconnected after failed attempt returns to idle",
			current: StatusConnecting,
			want:    StatusIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.current, tt.flags, tt.intent, tt.restored)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The reducer depends only on the latest observation: for any pair of
// current states, the same inputs must yield the same result.
func TestReconcile_HistoryIndependent(t *testing.T) {
	inputs := []struct {
		flags    wallet.Flags
		intent   Intent
		restored bool
	}{
		{wallet.Flags{}, IntentNone, false},
		{wallet.Flags{Connected: true}, IntentNone, false},
		{wallet.Flags{Connecting: true}, IntentConnecting, false},
		{wallet.Flags{}, IntentConnecting, true},
	}
	states := []Status{StatusIdle, StatusConnecting, StatusConnected}

	for _, in := range inputs {
		for _, a := range states {
			for _, b := range states {
				assert.Equal(t,
					Reconcile(a, in.flags, in.intent, in.restored),
					Reconcile(b, in.flags, in.intent, in.restored))
			}
		}
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
}
