// Package operations orchestrates the analysis pipeline as sequential steps
// (load, clean, features, train) with per-step state and progress broadcast
// to dashboard clients.
package operations
