// Package insights turns a cleaned accident dataset into a plain-text report
// of findings: totals, temporal evolution, geographic concentration, leading
// causes, severity shares and timing patterns.
package insights
