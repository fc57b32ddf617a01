// Package model defines the records produced by processing SVG files.
//
// This package contains the following main types:
//   - Outcome: the result of processing one file, clean or rejected
//   - Summary: counts and outcomes of a batch, rendered by the report package
//   - Severity: how dangerous a rejection reason is
//
// Outcomes are serializable to JSON for reports and are stored in the audit
// database.
package model
