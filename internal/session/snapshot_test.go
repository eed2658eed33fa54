// ABOUTME: Tests for snapshot encoding, parsing, and identity capture
// ABOUTME: Malformed stored data must always read as absent, never error

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/wallet-gateway/internal/wallet"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	snap := &Snapshot{Address: "0xabc", PubKey: "pk-123"}

	raw, err := snap.Encode()
	require.NoError(t, err)

	got := ParseSnapshot(raw)
	require.NotNil(t, got)
	assert.Equal(t, "0xabc", got.Address)
	assert.Equal(t, "pk-123", got.PubKey)
}

func TestParseSnapshot_Malformed(t *testing.T) {
	assert.Nil(t, ParseSnapshot([]byte("not json")))
	assert.Nil(t, ParseSnapshot([]byte("")))
	assert.Nil(t, ParseSnapshot([]byte(`{"address": 42}`)))
}

func TestParseSnapshot_EmptyRecord(t *testing.T) {
	// A record carrying no identity is as good as absent
	assert.Nil(t, ParseSnapshot([]byte(`{}`)))
	assert.Nil(t, ParseSnapshot([]byte(`{"address": "", "pubkey": ""}`)))
}

func TestParseSnapshot_PartialRecord(t *testing.T) {
	got := ParseSnapshot([]byte(`{"address": "0xabc"}`))
	require.NotNil(t, got)
	assert.Equal(t, "0xabc", got.Address)
	assert.Empty(t, got.PubKey)
}

func TestSnapshotFromIdentity(t *testing.T) {
	id := &wallet.Identity{Address: "0xabc", PublicKey: wallet.NewPublicKey("pk-123")}

	snap := snapshotFromIdentity(id)
	require.NotNil(t, snap)
	assert.Equal(t, "0xabc", snap.Address)
	assert.Equal(t, "pk-123", snap.PubKey)
}

func TestSnapshotFromIdentity_NothingToMirror(t *testing.T) {
	assert.Nil(t, snapshotFromIdentity(nil))
	assert.Nil(t, snapshotFromIdentity(&wallet.Identity{}))
	assert.Nil(t, snapshotFromIdentity(&wallet.Identity{PublicKey: wallet.NewPublicKey("")}))
}
