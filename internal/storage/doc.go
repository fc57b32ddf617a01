// Package storage persists uploaded SVG files.
//
// An upload is staged first, exactly as received, under a random ID. After
// sanitization the host either commits the clean bytes, which replaces the
// staged file with a content-addressed object, or discards the staged file.
// Original bytes never become a committed object.
package storage
