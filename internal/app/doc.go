// Package app wires the pure protocol engine to a store and a
// notification sink.
//
// ProtocolService runs the read-modify-write loop around the engine:
// read a snapshot, run the pure operation, apply the result with an
// optimistic version guard, forward the emitted events.
// A lost version race is retried transparently with fresh state, a
// bounded number of times; every other failure is returned as-is.
package app
