// Package main provides the entry point for the easysvg CLI.
//
// easysvg sanitizes untrusted SVG files. It rewrites each file through an
// allow-list, verifies the result, and refuses anything it cannot make
// safe. The same engine backs a batch mode for files on disk and an HTTP
// upload API.
//
// Usage:
//
//	easysvg sanitize [flags] FILE|DIR...
//	easysvg check FILE|DIR...
//	easysvg serve
//
// See --help for all available options.
package main

// main is the entry point for easysvg.
func main() {
	Execute()
}
