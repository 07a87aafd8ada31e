// Package protocol defines the Return-to-Play protocol aggregate and the
// typed values shared by the engine, store, and callers.
//
// A Protocol tracks one athlete's graduated recovery after a head injury:
// the current stage, when it began, an append-only stage history, raised
// alerts, and the optimistic-concurrency version counter.
//
// INVARIANTS:
//   - CurrentStage never skips forward: advancement visits stage indices
//     in strictly increasing order until "cleared".
//   - StageHistory is append-only; entries are never mutated or reordered.
//   - Alerts are append-only except for the Acknowledged flag, which is
//     the only field ever mutated in place.
//   - Version increases by exactly one on every successful mutation.
//
// All failures are typed error values (see errors.go); no operation in
// this module uses errors for normal control flow.
package protocol
