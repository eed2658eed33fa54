// ABOUTME: Tests for the display identity fallback chain
// ABOUTME: Verifies the fixed source priority and the placeholder fallback

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/wallet-gateway/internal/wallet"
)

func TestResolveDisplayIdentity_FallbackOrder(t *testing.T) {
	snap := &Snapshot{Address: "A1", PubKey: "P1"}
	live := &wallet.Identity{Address: "A2", PublicKey: wallet.NewPublicKey("A3")}

	// Snapshot address wins over everything
	assert.Equal(t, "A1", ResolveDisplayIdentity(snap, live))

	// Without a snapshot, the live address wins
	assert.Equal(t, "A2", ResolveDisplayIdentity(nil, live))

	// Without a live address, the public key string wins
	noAddr := &wallet.Identity{PublicKey: wallet.NewPublicKey("A3")}
	assert.Equal(t, "A3", ResolveDisplayIdentity(nil, noAddr))

	// With no source at all, the placeholder is shown
	assert.Equal(t, PlaceholderIdentity, ResolveDisplayIdentity(nil, nil))
}

func TestResolveDisplayIdentity_SkipsEmptySources(t *testing.T) {
	// A snapshot without an address does not win the chain
	snap := &Snapshot{PubKey: "P1"}
	live := &wallet.Identity{Address: "A2"}
	assert.Equal(t, "A2", ResolveDisplayIdentity(snap, live))

	// An identity with neither address nor key falls through
	assert.Equal(t, PlaceholderIdentity, ResolveDisplayIdentity(nil, &wallet.Identity{}))

	// An empty public key string falls through too
	empty := &wallet.Identity{PublicKey: wallet.NewPublicKey("")}
	assert.Equal(t, PlaceholderIdentity, ResolveDisplayIdentity(nil, empty))
}

func TestResolveDisplayIdentity_NeverMerges(t *testing.T) {
	snap := &Snapshot{Address: "A1"}
	live := &wallet.Identity{Address: "A2", PublicKey: wallet.NewPublicKey("A3")}

	got := ResolveDisplayIdentity(snap, live)
	assert.Equal(t, "A1", got)
	assert.NotContains(t, got, "A2")
	assert.NotContains(t, got, "A3")
}
