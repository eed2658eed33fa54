// ABOUTME: Display identity resolution with a fixed-priority fallback chain
// ABOUTME: Snapshot data wins over live data to avoid flicker after a reload

package session

import "github.com/2389/wallet-gateway/internal/wallet"

// PlaceholderIdentity is displayed when no identity source has a value yet.
const PlaceholderIdentity = "Loading..."

// ResolveDisplayIdentity picks the identity string for a connected view.
// Sources are tried in fixed order until one yields a value: the
// snapshot's address, the live identity's address, the live public
// key's string form, then the placeholder. Exactly one source wins;
// values are never merged. Snapshot data deliberately outranks live
// data: after a reload the provider repopulates its wallet object
// asynchronously, and preferring the mirror avoids a visible flicker
// between the placeholder and the real address.
func ResolveDisplayIdentity(snap *Snapshot, id *wallet.Identity) string {
	if snap != nil && snap.Address != "" {
		return snap.Address
	}
	if id != nil {
		if id.Address != "" {
			return id.Address
		}
		if id.PublicKey != nil {
			if s := id.PublicKey.String(); s != "" {
				return s
			}
		}
	}
	return PlaceholderIdentity
}
