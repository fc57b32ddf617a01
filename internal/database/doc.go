// Package database provides the SQLite audit log of processed SVG files.
//
// Every upload and every batch file produces one row: who sent it, what
// policy was applied, the outcome and reason, sizes and SHA3-256 digests.
// The history command and the upload API read it back.
//
// The pure-Go modernc.org/sqlite driver is used, so no cgo is needed.
package database
