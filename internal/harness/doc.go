// Package harness runs declarative protocol scenarios for conformance
// testing.
//
// A scenario is a YAML file describing one protocol's life: creation
// parameters, then an ordered list of steps (clock ticks, advancement
// attempts, symptom checks, resets, acknowledgements), each with its
// expected outcome. The harness executes the steps against the real
// engine wired to an in-memory store, a manual clock, and a capture
// sink, and records a trace of what happened.
//
// Traces serialize to canonical JSON and are compared against golden
// files with goldie:
//
//	go test ./internal/harness -update
//
// regenerates the golden files after an intentional behavior change.
//
// Determinism: the manual clock only moves on explicit tick steps, the
// protocol ID is fixed, and trace serialization is canonical, so the
// same scenario always produces identical bytes.
package harness
