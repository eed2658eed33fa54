// Package store persists session snapshots for the wallet gateway.
//
// A snapshot is the minimal record a browsing context needs to survive
// a page reload without re-running passkey authentication. Snapshots
// are keyed by scope (one scope per tab), written as a full atomic
// replace, and treated as opaque bytes at this layer.
//
// Two implementations are provided:
//
//   - SQLiteStore: durable, scope-keyed rows with a background TTL
//     sweep bounding snapshot lifetime (modernc.org/sqlite, WAL mode)
//   - MemoryStore: process-local map for tests and dev serving
package store
