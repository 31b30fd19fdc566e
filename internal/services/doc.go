// Package services implements the application services behind the HTTP
// handlers: dataset discovery and profiling, the analysis pipeline with
// exports, the model lifecycle (train, predict, artifact swap) and health.
package services
