// Package stats provides the hypothesis tests and descriptive statistics
// behind the analysis reports: Pearson correlation, Welch t-test, one-way
// ANOVA, chi-square independence, temporal trend classification, frequency
// tables and outlier detection.
package stats
