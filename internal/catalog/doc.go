// Package catalog holds the static six-stage definition table.
//
// The catalog is authored in CUE (stages.cue, embedded) and compiled
// once at process start. CUE constraints enforce the structural rules
// up front: exactly six stages with contiguous orders, non-negative
// minimum durations, non-empty labels. The compiled table is immutable;
// every accessor returns copies.
//
// The terminal pseudo-stage "cleared" has no catalog entry. It appears
// only as the successor of stage_6.
package catalog
