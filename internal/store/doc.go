// Package store persists Return-to-Play protocols.
//
// Two implementations share one contract:
//
//   - Store: SQLite-backed, WAL mode, single writer. The durable store
//     used by the CLI.
//   - MemStore: an in-memory mirror with identical semantics, used by
//     tests and the scenario harness.
//
// The contract is optimistic concurrency. Every mutation is applied as
// a read-modify-write: the caller reads a snapshot, runs a pure engine
// operation on it, then calls PutIfVersion with the version it read.
// If the stored version moved in the meantime the write is rejected
// with ConcurrentModificationError and nothing changes; at most one
// mutation succeeds for a given starting version.
//
// stage_history and alerts rows are append-only. PutIfVersion inserts
// rows the snapshot added and updates acknowledged flags; it never
// deletes or rewrites an existing audit row.
package store
