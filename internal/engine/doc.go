// Package engine implements the Return-to-Play protocol operations.
//
// Every operation is a pure function over (snapshot, clock time, inputs):
// it returns a new Protocol plus the events the mutation emits, or a
// typed failure, and never performs I/O. The input snapshot is cloned
// before any change, so a failed operation leaves the caller's copy
// byte-for-byte intact.
//
// Concurrency is handled entirely at the store boundary: callers apply
// each returned snapshot with an optimistic read-modify-write against
// the version they read (see internal/store and internal/app). The
// engine itself has no suspension points and nothing to lock.
//
// Time comes from the injectable Clock, never from time.Now() directly.
// Eligibility is computed from real timestamps, so tests advance a
// manual clock instead of waiting on wall-clock delays.
package engine
