// Package host holds the decisions the upload host makes around the
// sanitizer: who may upload SVG files, how large they may be, and whether
// SVG is accepted at all.
//
// Every type here is an immutable value built from configuration and
// passed in at call time. The sanitizer itself knows nothing about
// principals or limits.
package host
