// Package dataset implements the tabular core of the pipeline: the Table
// value type, the yearly extract Loader, the deterministic Cleaner and
// dataset profiling.
//
// The Loader and Cleaner are pure with respect to their inputs: they return
// new tables and never mutate what they are given, so the Cleaner satisfies
// clean(clean(x)) == clean(x).
package dataset
