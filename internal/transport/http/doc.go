// Package http wires the application services to chi routes: dataset
// discovery and upload, the analysis pipeline with exports, model training
// and prediction, and health probes. Errors render as the structured API
// error envelope.
package http
