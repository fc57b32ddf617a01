// Package server exposes SVG uploads over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/v1/mimes             media types the host accepts
//	POST /api/v1/uploads           sanitize and store a multipart upload
//	POST /api/v1/sanitize          sanitize a request body and return it
//	GET  /api/v1/files/*key        serve a stored clean file
//
// Upload and sanitize routes require a bearer token known to the
// configured host.Directory.
package server
