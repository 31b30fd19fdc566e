// Package ml implements the accident severity classifier: label encoding,
// feature standardization, stratified splitting, random forest and gradient
// boosting ensembles, evaluation metrics, and atomic artifact persistence.
//
// All randomized steps are seeded, so a fixed seed reproduces the same split,
// the same trees, and the same predictions.
package ml
