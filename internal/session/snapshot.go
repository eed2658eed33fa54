// ABOUTME: Session snapshot record mirrored to scoped storage for refresh survival
// ABOUTME: Malformed stored data always parses to absent, never to an error

package session

import (
	"encoding/json"

	"github.com/2389/wallet-gateway/internal/wallet"
)

// Snapshot is the minimal session record mirrored to storage so a
// reloaded tab can show the connected view without re-authenticating.
// Both fields are captured from a single identity read; a snapshot is
// never partially written.
type Snapshot struct {
	Address string `json:"address,omitempty"`
	PubKey  string `json:"pubkey,omitempty"`
}

// Encode returns the snapshot's stored form.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// ParseSnapshot decodes stored snapshot bytes. Malformed data and
// snapshots carrying no identity at all are both treated as absent
// (nil); a parse fault is never propagated.
func ParseSnapshot(raw []byte) *Snapshot {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	if snap.Address == "" && snap.PubKey == "" {
		return nil
	}
	return &snap
}

// snapshotFromIdentity captures a snapshot from one read of the wallet
// identity. Returns nil if there is nothing worth mirroring yet.
func snapshotFromIdentity(id *wallet.Identity) *Snapshot {
	if id == nil {
		return nil
	}
	snap := &Snapshot{Address: id.Address}
	if id.PublicKey != nil {
		snap.PubKey = id.PublicKey.String()
	}
	if snap.Address == "" && snap.PubKey == "" {
		return nil
	}
	return snap
}
