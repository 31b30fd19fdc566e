// Package exporter writes analysis results to disk as CSV reports, with
// UTF-8 BOM for Excel compatibility and a streaming mode for large tables,
// and as Excel workbooks with one sheet per result family.
package exporter
